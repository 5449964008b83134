package mailer

import (
	"fmt"
	"strconv"

	"github.com/tradutema/delivery/internal/entity"
	"github.com/tradutema/delivery/internal/placeholder"
	"github.com/tradutema/delivery/internal/status"
)

const envelopeHeader = `<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background:#f4f4f4;font-family:Arial,Helvetica,sans-serif;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0">
<tr><td align="center" style="padding:24px;">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:6px;overflow:hidden;">
<tr><td style="background:#1a3e5c;padding:20px 32px;">
<span style="color:#ffffff;font-size:22px;font-weight:bold;">Tradutema</span>
</td></tr>
<tr><td style="padding:32px;color:#333333;font-size:14px;line-height:1.6;">
`

const envelopeFooter = `
</td></tr>
<tr><td style="background:#f0f0f0;padding:20px 32px;color:#888888;font-size:11px;line-height:1.5;">
<p>Tradutema — Traducciones juradas y profesionales.</p>
<p>Este mensaje y sus adjuntos son confidenciales y se dirigen exclusivamente a su destinatario.
Si lo ha recibido por error, comuníquelo al remitente y elimínelo. Sus datos se tratan conforme
a nuestra política de privacidad y a la normativa vigente de protección de datos.</p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`

// Envelope envuelve un cuerpo ya renderizado en el sobre HTML de marca
// (cabecera, pie y texto legal fijos).
func Envelope(body string) string {
	return envelopeHeader + body + envelopeFooter
}

// RenderTemplate sustituye los marcadores en asunto y cuerpo y devuelve el
// cuerpo ya envuelto en el sobre de marca.
func RenderTemplate(subject, body string, values map[string]string) (string, string) {
	return placeholder.Render(subject, values), Envelope(placeholder.Render(body, values))
}

// PlaceholderValues compone el mapa fijo de marcadores disponible para toda
// plantilla de correo del CRM.
func PlaceholderValues(order entity.Order, meta entity.OrderMeta, provider *entity.Provider, links map[entity.SubfolderKey]string, uploadURL string) map[string]string {
	shippingType := "Digital"
	paperAddress := ""
	if meta.PaperShipping {
		shippingType = "Papel"
		paperAddress = order.ShippingAddress
		if paperAddress == "" {
			paperAddress = order.BillingAddress
		}
	}

	realDelivery := ""
	if meta.RealPDFDelivery != nil {
		realDelivery = meta.RealPDFDelivery.Format("02/01/2006 15:04")
	}

	pages := ""
	if meta.Pages > 0 {
		pages = strconv.Itoa(meta.Pages)
	}

	values := map[string]string{
		"pedido_id":              strconv.Itoa(order.ID),
		"referencia":             meta.Reference,
		"cliente_nombre":         order.CustomerName,
		"cliente_email":          order.CustomerEmail,
		"total":                  fmt.Sprintf("%.2f €", order.Total),
		"nota_cliente":           order.CustomerNote,
		"comentario_interno":     meta.InternalComment,
		"comentario_linguistico": meta.LinguistComment,
		"estado":                 status.Label(meta.Status),
		"fecha_prevista_entrega": status.DisplayDate(meta.ScheduledDate),
		"hora_prevista_entrega":  meta.ScheduledTime,
		"fecha_real_entrega":     realDelivery,
		"tipo_envio":             shippingType,
		"direccion_envio_papel":  paperAddress,
		"idioma_origen":          meta.SourceLanguage,
		"idioma_destino":         meta.TargetLanguage,
		"num_paginas":            pages,
		"enlace_origen":          links[entity.SubfolderSource],
		"enlace_trabajo":         links[entity.SubfolderWork],
		"enlace_traduccion":      links[entity.SubfolderTranslation],
		"enlace_cliente":         links[entity.SubfolderToClient],
		"enlace_subida":          uploadURL,
	}

	if provider != nil {
		values["proveedor_nombre"] = provider.Name
		values["proveedor_email"] = provider.Email
		values["proveedor_telefono"] = provider.Phone
	}

	return values
}
