package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
	"go.uber.org/zap"
)

type MessageSender interface {
	Send(recipients []string, subject, htmlBody string, headers map[string]string, attachments []string) error
}

type TemplateStore interface {
	FindActiveByStatus(ctx context.Context, s entity.OperationalStatus) (entity.EmailTemplate, error)
}

type TokenIssuer interface {
	Issue(ctx context.Context, orderID int) (string, error)
}

type Validator interface {
	Var(ctx context.Context, field any, tag string) error
}

// Notifications compone y envía los correos del flujo de entrega. Busca una
// plantilla configurada para el estado de destino y, si no hay ninguna, usa
// la incorporada.
type Notifications struct {
	sender    MessageSender
	templates TemplateStore
	tokens    TokenIssuer
	validator Validator
	admin     string
	siteURL   string
	panelURL  string
	log       *zap.Logger
}

func NewNotifications(
	sender MessageSender,
	templates TemplateStore,
	tokens TokenIssuer,
	validator Validator,
	admin, siteURL, panelURL string,
	log *zap.Logger,
) *Notifications {
	return &Notifications{
		sender:    sender,
		templates: templates,
		tokens:    tokens,
		validator: validator,
		admin:     admin,
		siteURL:   siteURL,
		panelURL:  panelURL,
		log:       log,
	}
}

var defaultTemplates = map[entity.OperationalStatus]entity.EmailTemplate{
	entity.StatusTranslated: {
		Subject: "Pedido {{pedido_id}}: traducción completada",
		BodyHTML: `<p>El proveedor {{proveedor_nombre}} ha confirmado la traducción del pedido
<strong>{{pedido_id}}</strong> ({{idioma_origen}} &gt; {{idioma_destino}}).</p>
<p>Puede revisarlo en el panel de gestión: <a href="{{enlace_panel}}">{{enlace_panel}}</a></p>`,
	},
	entity.StatusDelivered: {
		Subject: "Su traducción del pedido {{pedido_id}} está lista",
		BodyHTML: `<p>Estimado/a {{cliente_nombre}}:</p>
<p>Su traducción ({{idioma_origen}} &gt; {{idioma_destino}}) ya está disponible. Puede
descargarla desde la siguiente carpeta compartida:</p>
<p><a href="{{enlace_cliente}}">{{enlace_cliente}}</a></p>
<p>Gracias por confiar en Tradutema.</p>`,
	},
	entity.StatusAwaitingClientValidation: {
		Subject: "Su traducción del pedido {{pedido_id}} está lista para su validación",
		BodyHTML: `<p>Estimado/a {{cliente_nombre}}:</p>
<p>Su traducción ({{idioma_origen}} &gt; {{idioma_destino}}) está disponible para su revisión:</p>
<p><a href="{{enlace_cliente}}">{{enlace_cliente}}</a></p>
<p>Una vez validada, recibirá la copia en papel en la dirección facilitada
({{direccion_envio_papel}}).</p>`,
	},
}

// NotifyInternalCompletion avisa al administrador del sitio de que un
// proveedor interno ha confirmado la traducción. No hay archivos ni carpetas
// en este camino: el correo enlaza al panel de gestión.
func (n *Notifications) NotifyInternalCompletion(ctx context.Context, order entity.Order, meta entity.OrderMeta, provider *entity.Provider) (entity.EmailReceipt, error) {
	tpl := n.template(ctx, entity.StatusTranslated)
	values := PlaceholderValues(order, meta, provider, nil, n.uploadLink(ctx, order.ID, tpl))
	values["enlace_panel"] = fmt.Sprintf("%s/wp-admin/admin.php?page=tradutema-crm&order=%d", strings.TrimRight(n.panelURL, "/"), order.ID)

	recipients := n.withExtraRecipients(ctx, []string{n.admin}, tpl.Recipients)

	return n.send(recipients, tpl, values)
}

// NotifyClientDelivery avisa al cliente y al administrador de que la
// traducción está disponible en la carpeta compartida.
func (n *Notifications) NotifyClientDelivery(ctx context.Context, order entity.Order, meta entity.OrderMeta, provider *entity.Provider, links map[entity.SubfolderKey]string) (entity.EmailReceipt, error) {
	tpl := n.template(ctx, meta.Status)
	values := PlaceholderValues(order, meta, provider, links, n.uploadLink(ctx, order.ID, tpl))

	recipients := []string{}
	if order.CustomerEmail != "" {
		recipients = append(recipients, order.CustomerEmail)
	}
	recipients = append(recipients, n.admin)
	recipients = n.withExtraRecipients(ctx, recipients, tpl.Recipients)

	return n.send(recipients, tpl, values)
}

func (n *Notifications) send(recipients []string, tpl entity.EmailTemplate, values map[string]string) (entity.EmailReceipt, error) {
	subject, body := RenderTemplate(tpl.Subject, tpl.BodyHTML, values)
	if err := n.sender.Send(recipients, subject, body, nil, nil); err != nil {
		return entity.EmailReceipt{}, err
	}

	return entity.EmailReceipt{Recipients: recipients, Subject: subject}, nil
}

// template devuelve la plantilla configurada para el estado o la incorporada.
func (n *Notifications) template(ctx context.Context, s entity.OperationalStatus) entity.EmailTemplate {
	tpl, err := n.templates.FindActiveByStatus(ctx, s)
	if err == nil {
		return tpl
	}
	if !errors.Is(err, inerr.ErrTemplateNotFound) {
		n.log.Warn("fallo al leer la plantilla de correo", zap.String("estado", string(s)), zap.Error(err))
	}

	return defaultTemplates[s]
}

// uploadLink genera un enlace de subida nuevo solo si la plantilla lo usa;
// cada enlace emitido es un token de un solo uso y no conviene gastarlos.
func (n *Notifications) uploadLink(ctx context.Context, orderID int, tpl entity.EmailTemplate) string {
	if !strings.Contains(tpl.BodyHTML, "enlace_subida") && !strings.Contains(tpl.Subject, "enlace_subida") {
		return ""
	}

	token, err := n.tokens.Issue(ctx, orderID)
	if err != nil {
		n.log.Warn("no se pudo emitir el enlace de subida", zap.Int("pedido", orderID), zap.Error(err))

		return ""
	}

	return fmt.Sprintf("%s/?token=%s", strings.TrimRight(n.siteURL, "/"), token)
}

// withExtraRecipients añade los destinatarios extra configurados en la
// plantilla, descartando duplicados y direcciones no válidas.
func (n *Notifications) withExtraRecipients(ctx context.Context, recipients []string, extra string) []string {
	seen := map[string]struct{}{}
	for _, r := range recipients {
		seen[strings.ToLower(r)] = struct{}{}
	}

	for _, addr := range strings.FieldsFunc(extra, func(r rune) bool { return r == ',' || r == ';' }) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if err := n.validator.Var(ctx, addr, "email"); err != nil {
			n.log.Warn("destinatario de plantilla descartado", zap.String("direccion", addr))

			continue
		}
		if _, ok := seen[strings.ToLower(addr)]; ok {
			continue
		}

		seen[strings.ToLower(addr)] = struct{}{}
		recipients = append(recipients, addr)
	}

	return recipients
}
