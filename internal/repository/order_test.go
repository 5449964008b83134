package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
)

func TestOrder_Find(t *testing.T) {
	var (
		ctx            = context.Background()
		orderID        = 482
		missingOrderID = 999
		query          = `
SELECT id, customer_name, customer_email, billing_address, shipping_address,
       shipping_method, customer_note, total, items, drive_folders
FROM orders
WHERE id = $1
	`
		items   = `[{"name":"Traducción jurada","attributes":{"Idioma de origen":"es"}}]`
		folders = `{"01-Source":"1AbCsrc","04-ToClient":{"id":"1AbCcli","webViewLink":"https://drive.google.com/drive/folders/1AbCcli"}}`
		columns = []string{
			"id", "customer_name", "customer_email", "billing_address", "shipping_address",
			"shipping_method", "customer_note", "total", "items", "drive_folders",
		}
	)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	r := NewOrder(db)

	mock.ExpectQuery(query).
		WithArgs(orderID).
		WillReturnRows(
			sqlmock.NewRows(columns).
				AddRow(orderID, "María López", "maria@example.com", "Calle Mayor 1", "Calle Mayor 1",
					"Envío urgente", "", 120.5, items, folders),
		)
	mock.ExpectQuery(query).
		WithArgs(missingOrderID).
		WillReturnRows(sqlmock.NewRows(columns))

	order, err := r.Find(ctx, orderID)
	require.NoError(t, err, "lectura correcta de la instantánea del pedido")
	assert.Equal(t, "María López", order.CustomerName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Traducción jurada", order.Items[0].Name)
	assert.Equal(t, entity.FolderRef{ID: "1AbCsrc"}, order.Folders[entity.SubfolderSource])
	assert.Equal(
		t,
		entity.FolderRef{ID: "1AbCcli", URL: "https://drive.google.com/drive/folders/1AbCcli"},
		order.Folders[entity.SubfolderToClient],
	)

	_, err = r.Find(ctx, missingOrderID)
	assert.ErrorIs(t, err, inerr.ErrOrderNotFound, "pedido inexistente")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrder_Meta(t *testing.T) {
	var (
		ctx        = context.Background()
		orderID    = 482
		newOrderID = 500
		providerID = 3
		delivered  = time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)
		query      = `
SELECT proveedor_id, comentario_interno, comentario_linguistico, referencia,
       origen_pedido, envio_papel, fecha_prevista_entrega, hora_prevista_entrega,
       fecha_real_entrega_pdf, idioma_origen, idioma_destino, num_paginas,
       tarifa_aplicada, estado_operacional
FROM order_meta
WHERE order_id = $1
	`
		columns = []string{
			"proveedor_id", "comentario_interno", "comentario_linguistico", "referencia",
			"origen_pedido", "envio_papel", "fecha_prevista_entrega", "hora_prevista_entrega",
			"fecha_real_entrega_pdf", "idioma_origen", "idioma_destino", "num_paginas",
			"tarifa_aplicada", "estado_operacional",
		}
	)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	r := NewOrder(db)

	mock.ExpectQuery(query).
		WithArgs(orderID).
		WillReturnRows(
			sqlmock.NewRows(columns).
				AddRow(providerID, "nota interna", "", "REF-482", "manual", true,
					"2024-05-20", "12:00", delivered, "es", "en", 4, 25.5, "en_curso"),
		)
	mock.ExpectQuery(query).
		WithArgs(newOrderID).
		WillReturnRows(sqlmock.NewRows(columns))

	meta, err := r.Meta(ctx, orderID)
	require.NoError(t, err, "lectura correcta de metadatos")
	require.NotNil(t, meta.ProviderID)
	assert.Equal(t, providerID, *meta.ProviderID)
	assert.Equal(t, entity.OriginManual, meta.Origin)
	assert.True(t, meta.PaperShipping)
	assert.Equal(t, "2024-05-20", meta.ScheduledDate)
	assert.Equal(t, entity.StatusAssignedInProgress, meta.Status, "la clave heredada se normaliza al leer")

	meta, err = r.Meta(ctx, newOrderID)
	require.NoError(t, err, "un pedido sin fila de metadatos devuelve los valores por defecto")
	assert.Equal(t, newOrderID, meta.OrderID)
	assert.Equal(t, entity.OriginWooCommerce, meta.Origin)
	assert.Equal(t, entity.StatusReceived, meta.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrder_SaveMeta(t *testing.T) {
	var (
		ctx        = context.Background()
		providerID = 3
		meta       = entity.OrderMeta{
			OrderID:         482,
			ProviderID:      &providerID,
			InternalComment: "nota",
			Reference:       "REF-482",
			Origin:          entity.OriginWooCommerce,
			PaperShipping:   false,
			ScheduledDate:   "2024-05-20",
			SourceLanguage:  "es",
			TargetLanguage:  "en",
			Pages:           4,
			Rate:            25.5,
			Status:          entity.StatusTranslated,
		}
		query = `
INSERT INTO order_meta (order_id, proveedor_id, comentario_interno, comentario_linguistico,
                        referencia, origen_pedido, envio_papel, fecha_prevista_entrega,
                        hora_prevista_entrega, fecha_real_entrega_pdf, idioma_origen,
                        idioma_destino, num_paginas, tarifa_aplicada, estado_operacional)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, $13, $14, $15)
ON CONFLICT (order_id) DO UPDATE SET proveedor_id           = excluded.proveedor_id,
                                     comentario_interno     = excluded.comentario_interno,
                                     comentario_linguistico = excluded.comentario_linguistico,
                                     referencia             = excluded.referencia,
                                     origen_pedido          = excluded.origen_pedido,
                                     envio_papel            = excluded.envio_papel,
                                     fecha_prevista_entrega = excluded.fecha_prevista_entrega,
                                     hora_prevista_entrega  = excluded.hora_prevista_entrega,
                                     fecha_real_entrega_pdf = excluded.fecha_real_entrega_pdf,
                                     idioma_origen          = excluded.idioma_origen,
                                     idioma_destino         = excluded.idioma_destino,
                                     num_paginas            = excluded.num_paginas,
                                     tarifa_aplicada        = excluded.tarifa_aplicada,
                                     estado_operacional     = excluded.estado_operacional,
                                     updated_at             = now()
	`
	)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	r := NewOrder(db)

	mock.ExpectExec(query).
		WithArgs(
			meta.OrderID, providerID, meta.InternalComment, meta.LinguistComment,
			meta.Reference, meta.Origin, meta.PaperShipping, meta.ScheduledDate,
			meta.ScheduledTime, nil, meta.SourceLanguage, meta.TargetLanguage,
			meta.Pages, meta.Rate, string(meta.Status),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, r.SaveMeta(ctx, meta), "escritura correcta de metadatos")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseFolders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[entity.SubfolderKey]entity.FolderRef
	}{
		{
			name: "cadena suelta con id",
			raw:  `{"02-Work":"1AbCwork"}`,
			want: map[entity.SubfolderKey]entity.FolderRef{
				entity.SubfolderWork: {ID: "1AbCwork"},
			},
		},
		{
			name: "cadena suelta con url",
			raw:  `{"02-Work":"https://drive.google.com/drive/folders/1AbCwork"}`,
			want: map[entity.SubfolderKey]entity.FolderRef{
				entity.SubfolderWork: {URL: "https://drive.google.com/drive/folders/1AbCwork"},
			},
		},
		{
			name: "objeto con id y webViewLink",
			raw:  `{"04-ToClient":{"id":"1AbCcli","webViewLink":"https://drive.google.com/drive/folders/1AbCcli"}}`,
			want: map[entity.SubfolderKey]entity.FolderRef{
				entity.SubfolderToClient: {ID: "1AbCcli", URL: "https://drive.google.com/drive/folders/1AbCcli"},
			},
		},
		{
			name: "objeto con link heredado",
			raw:  `{"03-Translation":{"link":"https://drive.google.com/drive/folders/1AbCtr"}}`,
			want: map[entity.SubfolderKey]entity.FolderRef{
				entity.SubfolderTranslation: {URL: "https://drive.google.com/drive/folders/1AbCtr"},
			},
		},
		{
			name: "entradas vacías se descartan",
			raw:  `{"01-Source":"","02-Work":{}}`,
			want: map[entity.SubfolderKey]entity.FolderRef{},
		},
		{
			name: "json inválido devuelve mapa vacío",
			raw:  `no es json`,
			want: map[entity.SubfolderKey]entity.FolderRef{},
		},
		{
			name: "cadena vacía devuelve mapa vacío",
			raw:  "",
			want: map[entity.SubfolderKey]entity.FolderRef{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFolders(tt.raw))
		})
	}
}
