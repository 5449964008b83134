package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
	"github.com/tradutema/delivery/internal/status"
)

type Order struct {
	db *sql.DB
}

func NewOrder(db *sql.DB) *Order {
	return &Order{db: db}
}

// Find lee la instantánea del pedido comercial. Si el pedido no existe
// devuelve errors.ErrOrderNotFound.
func (r *Order) Find(ctx context.Context, id int) (entity.Order, error) {
	var (
		order   entity.Order
		items   sql.NullString
		folders sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, customer_name, customer_email, billing_address, shipping_address,
       shipping_method, customer_note, total, items, drive_folders
FROM orders
WHERE id = $1
	`, id).Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.BillingAddress,
		&order.ShippingAddress,
		&order.ShippingMethod,
		&order.CustomerNote,
		&order.Total,
		&items,
		&folders,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Order{}, inerr.ErrOrderNotFound
	}
	if err != nil {
		return entity.Order{}, err
	}

	if items.Valid && items.String != "" {
		if err := json.Unmarshal([]byte(items.String), &order.Items); err != nil {
			return entity.Order{}, err
		}
	}

	order.Folders = parseFolders(folders.String)

	return order, nil
}

// Meta lee la bolsa de metadatos operacionales del pedido. Si aún no existe
// fila devuelve los valores por defecto: origen woocommerce y estado recibido.
func (r *Order) Meta(ctx context.Context, orderID int) (entity.OrderMeta, error) {
	var (
		meta       = entity.OrderMeta{OrderID: orderID}
		providerID sql.NullInt64
		scheduled  sql.NullString
		hour       sql.NullString
		realPDF    sql.NullTime
		pages      sql.NullInt64
		rate       sql.NullFloat64
		rawStatus  string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT proveedor_id, comentario_interno, comentario_linguistico, referencia,
       origen_pedido, envio_papel, fecha_prevista_entrega, hora_prevista_entrega,
       fecha_real_entrega_pdf, idioma_origen, idioma_destino, num_paginas,
       tarifa_aplicada, estado_operacional
FROM order_meta
WHERE order_id = $1
	`, orderID).Scan(
		&providerID,
		&meta.InternalComment,
		&meta.LinguistComment,
		&meta.Reference,
		&meta.Origin,
		&meta.PaperShipping,
		&scheduled,
		&hour,
		&realPDF,
		&meta.SourceLanguage,
		&meta.TargetLanguage,
		&pages,
		&rate,
		&rawStatus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		meta.Origin = entity.OriginWooCommerce
		meta.Status = entity.StatusReceived

		return meta, nil
	}
	if err != nil {
		return entity.OrderMeta{}, err
	}

	if providerID.Valid {
		id := int(providerID.Int64)
		meta.ProviderID = &id
	}
	if scheduled.Valid {
		meta.ScheduledDate = scheduled.String
	}
	if hour.Valid {
		meta.ScheduledTime = hour.String
	}
	if realPDF.Valid {
		meta.RealPDFDelivery = &realPDF.Time
	}
	if pages.Valid {
		meta.Pages = int(pages.Int64)
	}
	if rate.Valid {
		meta.Rate = rate.Float64
	}

	meta.Status = status.Normalize(rawStatus)

	return meta, nil
}

// SaveMeta crea o actualiza la fila de metadatos del pedido.
func (r *Order) SaveMeta(ctx context.Context, meta entity.OrderMeta) error {
	var providerID any
	if meta.ProviderID != nil {
		providerID = *meta.ProviderID
	}

	var realPDF any
	if meta.RealPDFDelivery != nil {
		realPDF = *meta.RealPDFDelivery
	}

	_, err := r.db.ExecContext(ctx, `
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
	`,
		meta.OrderID,
		providerID,
		meta.InternalComment,
		meta.LinguistComment,
		meta.Reference,
		meta.Origin,
		meta.PaperShipping,
		meta.ScheduledDate,
		meta.ScheduledTime,
		realPDF,
		meta.SourceLanguage,
		meta.TargetLanguage,
		meta.Pages,
		meta.Rate,
		string(meta.Status),
	)

	return err
}

// parseFolders normaliza el mapa de subcarpetas guardado por el integrador de
// Drive. Históricamente cada entrada pudo ser un id suelto, una url suelta o
// un objeto con campos id/url/link/webViewLink; toda esa variedad se reduce
// aquí a entity.FolderRef.
func parseFolders(raw string) map[entity.SubfolderKey]entity.FolderRef {
	folders := map[entity.SubfolderKey]entity.FolderRef{}
	if strings.TrimSpace(raw) == "" {
		return folders
	}

	var stored map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return folders
	}

	for key, value := range stored {
		ref := parseFolderRef(value)
		if !ref.Empty() {
			folders[entity.SubfolderKey(key)] = ref
		}
	}

	return folders
}

func parseFolderRef(raw json.RawMessage) entity.FolderRef {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		plain = strings.TrimSpace(plain)
		if plain == "" {
			return entity.FolderRef{}
		}
		if strings.Contains(plain, "://") {
			return entity.FolderRef{URL: plain}
		}

		return entity.FolderRef{ID: plain}
	}

	var shaped struct {
		ID          string `json:"id"`
		URL         string `json:"url"`
		Link        string `json:"link"`
		WebViewLink string `json:"webViewLink"`
	}
	if err := json.Unmarshal(raw, &shaped); err != nil {
		return entity.FolderRef{}
	}

	url := shaped.URL
	if url == "" {
		url = shaped.Link
	}
	if url == "" {
		url = shaped.WebViewLink
	}

	return entity.FolderRef{ID: strings.TrimSpace(shaped.ID), URL: strings.TrimSpace(url)}
}
