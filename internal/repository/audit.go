package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/tradutema/delivery/internal/entity"
)

type Audit struct {
	db *sql.DB
}

func NewAudit(db *sql.DB) *Audit {
	return &Audit{db: db}
}

// Append añade un evento al registro de actividad. El registro es de solo
// adición y seguro ante escritores concurrentes.
func (r *Audit) Append(ctx context.Context, event entity.AuditEvent) error {
	var payload any
	if event.Payload != nil {
		encoded, err := json.Marshal(event.Payload)
		if err != nil {
			return err
		}

		payload = string(encoded)
	}

	var userID any
	if event.UserID != nil {
		userID = *event.UserID
	}

	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO audit_log (order_id, user_id, tipo, detalle, payload) VALUES ($1, $2, $3, $4, $5)",
		event.OrderID,
		userID,
		string(event.Type),
		event.Detail,
		payload,
	)

	return err
}
