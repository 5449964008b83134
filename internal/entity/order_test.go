package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_Attribute(t *testing.T) {
	order := Order{
		Items: []LineItem{
			{
				Name: "Traducción jurada",
				Attributes: map[string]string{
					"Método de entrega": "Papel",
					"Idioma de origen":  "es",
				},
			},
			{
				Name: "Copia adicional",
				Attributes: map[string]string{
					"Preferencia de entrega": "  digital  ",
				},
			},
		},
	}

	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{
			name:   "coincidencia exacta",
			labels: []string{"Método de entrega"},
			want:   "Papel",
		},
		{
			name:   "la comparación ignora tildes",
			labels: []string{"metodo de entrega"},
			want:   "Papel",
		},
		{
			name:   "la comparación ignora mayúsculas",
			labels: []string{"IDIOMA DE ORIGEN"},
			want:   "es",
		},
		{
			name:   "gana el primer sinónimo que coincide",
			labels: []string{"forma de entrega", "preferencia de entrega"},
			want:   "digital",
		},
		{
			name:   "etiqueta inexistente",
			labels: []string{"color"},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, order.Attribute(tt.labels...))
		})
	}
}

func TestFolderRef_Empty(t *testing.T) {
	assert.True(t, FolderRef{}.Empty())
	assert.False(t, FolderRef{ID: "1AbC"}.Empty())
	assert.False(t, FolderRef{URL: "https://drive.google.com/drive/folders/1AbC"}.Empty())
}
