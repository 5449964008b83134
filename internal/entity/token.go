package entity

import "time"

// UploadToken es la credencial opaca de un solo uso que da acceso a una única
// redención del flujo de entrega de un pedido. Una vez Used = true cualquier
// intento posterior de redención debe rechazarse.
type UploadToken struct {
	Token     string
	OrderID   int
	CreatedAt time.Time
	Used      bool
	UsedAt    *time.Time
	Files     []string
}
