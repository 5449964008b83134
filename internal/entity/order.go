package entity

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Order es la instantánea de solo lectura del pedido comercial. El registro
// pertenece a la tienda; este servicio nunca lo crea ni lo borra.
type Order struct {
	ID              int
	CustomerName    string
	CustomerEmail   string
	BillingAddress  string
	ShippingAddress string
	ShippingMethod  string
	CustomerNote    string
	Total           float64
	Items           []LineItem
	Folders         map[SubfolderKey]FolderRef
}

// LineItem es una línea del pedido con sus atributos libres, tal y como los
// guarda la tienda (etiqueta → valor).
type LineItem struct {
	Name       string
	Attributes map[string]string
}

// Attribute busca un atributo de línea por una lista de etiquetas sinónimas.
// La comparación ignora mayúsculas y tildes; gana la primera coincidencia.
func (o Order) Attribute(labels ...string) string {
	folded := make([]string, len(labels))
	for i, l := range labels {
		folded[i] = foldLabel(l)
	}

	for _, item := range o.Items {
		for attr, value := range item.Attributes {
			key := foldLabel(attr)
			for _, l := range folded {
				if key == l && strings.TrimSpace(value) != "" {
					return strings.TrimSpace(value)
				}
			}
		}
	}

	return ""
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldLabel(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.TrimSpace(folded))
}

// OperationalStatus es el estado operacional interno del pedido, independiente
// del estado de pago de la tienda.
type OperationalStatus string

const (
	StatusReceived                 OperationalStatus = "recibido"
	StatusAwaitingAppraisal        OperationalStatus = "en_espera_tasacion"
	StatusAssignedInProgress       OperationalStatus = "asignado_en_curso"
	StatusTranslated               OperationalStatus = "traducido"
	StatusAwaitingClientValidation OperationalStatus = "en_espera_validacion_cliente"
	StatusDelivered                OperationalStatus = "entregado"
)

// OrderMeta es la bolsa de metadatos operacionales del pedido, propiedad de
// este servicio (tabla order_meta).
type OrderMeta struct {
	OrderID         int
	ProviderID      *int
	InternalComment string
	LinguistComment string
	Reference       string
	Origin          string
	PaperShipping   bool
	ScheduledDate   string
	ScheduledTime   string
	RealPDFDelivery *time.Time
	SourceLanguage  string
	TargetLanguage  string
	Pages           int
	Rate            float64
	Status          OperationalStatus
}

// Orígenes de pedido admitidos.
const (
	OriginWooCommerce = "woocommerce"
	OriginQuote       = "cotizacion"
	OriginManual      = "manual"
)
