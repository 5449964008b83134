package entity

import "strings"

// Provider es un proveedor de traducción. Los internos completan los pedidos
// en plantilla y no suben archivos a través del enlace de entrega.
type Provider struct {
	ID            int
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Internal      bool
	PickupAddress string
	LanguagePairs []LanguagePair
}

// LanguagePair es un par (idioma origen, idioma destino) soportado.
type LanguagePair struct {
	Source string
	Target string
}

// Supports indica si el proveedor cubre el par de idiomas del pedido.
// La comparación ignora mayúsculas.
func (p Provider) Supports(source, target string) bool {
	for _, pair := range p.LanguagePairs {
		if strings.EqualFold(pair.Source, source) && strings.EqualFold(pair.Target, target) {
			return true
		}
	}

	return false
}
