package status

import (
	"strings"
	"time"

	"github.com/tradutema/delivery/internal/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labels = map[entity.OperationalStatus]string{
	entity.StatusReceived:                 "01-Recibido.",
	entity.StatusAwaitingAppraisal:        "02-En espera de tasación.",
	entity.StatusAssignedInProgress:       "03-Asignado y en curso.",
	entity.StatusTranslated:               "04-Traducido.",
	entity.StatusAwaitingClientValidation: "05-En espera validación cliente.",
	entity.StatusDelivered:                "06-Entregado.",
}

// synonyms recoge claves heredadas de versiones anteriores del CRM.
var synonyms = map[string]entity.OperationalStatus{
	"nuevo":              entity.StatusReceived,
	"pendiente":          entity.StatusReceived,
	"tasacion":           entity.StatusAwaitingAppraisal,
	"en_tasacion":        entity.StatusAwaitingAppraisal,
	"asignado":           entity.StatusAssignedInProgress,
	"en_curso":           entity.StatusAssignedInProgress,
	"completado":         entity.StatusTranslated,
	"validacion_cliente": entity.StatusAwaitingClientValidation,
	"en_validacion":      entity.StatusAwaitingClientValidation,
	"enviado":            entity.StatusDelivered,
	"finalizado":         entity.StatusDelivered,
}

// Normalize reduce cualquier entrada a una de las seis claves canónicas.
// Una clave desconocida devuelve entity.StatusReceived: es la red de
// seguridad del flujo, no un caso de error.
func Normalize(raw string) entity.OperationalStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := labels[entity.OperationalStatus(key)]; ok {
		return entity.OperationalStatus(key)
	}

	if s, ok := synonyms[key]; ok {
		return s
	}

	return entity.StatusReceived
}

// Label devuelve la etiqueta legible de un estado. Para claves fuera del
// catálogo devuelve la propia clave en formato título.
func Label(s entity.OperationalStatus) string {
	if l, ok := labels[s]; ok {
		return l
	}

	return cases.Title(language.Spanish).String(strings.ReplaceAll(string(s), "_", " "))
}

// FieldChange describe el cambio de un campo de metadatos para el registro
// de actividad.
type FieldChange struct {
	Field    string `json:"campo"`
	Label    string `json:"etiqueta"`
	Previous string `json:"anterior"`
	Current  string `json:"actual"`
}

// ProviderNameResolver traduce un id de proveedor a su nombre comercial.
type ProviderNameResolver func(id int) string

// DescribeChanges compara el conjunto fijo de campos de metadatos y emite una
// entrada por cada campo cuyo valor normalizado difiere, con los valores ya
// formateados para mostrar.
func DescribeChanges(before, after entity.OrderMeta, resolve ProviderNameResolver) []FieldChange {
	fields := []struct {
		field  string
		label  string
		format func(entity.OrderMeta) string
	}{
		{"estado_operacional", "Estado operacional", func(m entity.OrderMeta) string { return Label(m.Status) }},
		{"proveedor_id", "Proveedor", func(m entity.OrderMeta) string { return providerName(m.ProviderID, resolve) }},
		{"referencia", "Referencia", func(m entity.OrderMeta) string { return strings.TrimSpace(m.Reference) }},
		{"comentario_interno", "Comentario interno", func(m entity.OrderMeta) string { return strings.TrimSpace(m.InternalComment) }},
		{"comentario_linguistico", "Comentario lingüístico", func(m entity.OrderMeta) string { return strings.TrimSpace(m.LinguistComment) }},
		{"envio_papel", "Envío en papel", func(m entity.OrderMeta) string { return yesNo(m.PaperShipping) }},
		{"fecha_prevista_entrega", "Fecha prevista de entrega", func(m entity.OrderMeta) string { return DisplayDate(m.ScheduledDate) }},
		{"hora_prevista_entrega", "Hora prevista de entrega", func(m entity.OrderMeta) string { return strings.TrimSpace(m.ScheduledTime) }},
		{"fecha_real_entrega_pdf", "Fecha real de entrega (PDF)", func(m entity.OrderMeta) string { return displayTimestamp(m.RealPDFDelivery) }},
	}

	var changes []FieldChange
	for _, f := range fields {
		prev, cur := f.format(before), f.format(after)
		if prev == cur {
			continue
		}

		changes = append(changes, FieldChange{
			Field:    f.field,
			Label:    f.label,
			Previous: prev,
			Current:  cur,
		})
	}

	return changes
}

// DisplayDate formatea una fecha almacenada (AAAA-MM-DD) para mostrar.
// Devuelve cadena vacía si la entrada está vacía o no es una fecha.
func DisplayDate(stored string) string {
	if strings.TrimSpace(stored) == "" {
		return ""
	}

	t, err := time.Parse("2006-01-02", strings.TrimSpace(stored))
	if err != nil {
		return ""
	}

	return t.Format("02/01/2006")
}

func displayTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format("02/01/2006 15:04")
}

func providerName(id *int, resolve ProviderNameResolver) string {
	if id == nil {
		return "—"
	}

	if resolve != nil {
		if name := resolve(*id); name != "" {
			return name
		}
	}

	return "—"
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}

	return "No"
}
