package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
)

type Template struct {
	db *sql.DB
}

func NewTemplate(db *sql.DB) *Template {
	return &Template{db: db}
}

// FindActiveByStatus devuelve la plantilla activa más reciente asociada a un
// estado operacional. Si no hay ninguna configurada devuelve
// errors.ErrTemplateNotFound y el remitente usará la plantilla incorporada.
func (r *Template) FindActiveByStatus(ctx context.Context, s entity.OperationalStatus) (entity.EmailTemplate, error) {
	tpl := entity.EmailTemplate{Active: true, Status: s}
	err := r.db.QueryRowContext(ctx, `
SELECT id, nombre, asunto, destinatarios, cuerpo_html
FROM email_templates
WHERE activo AND estado_operacional = $1
ORDER BY updated_at DESC
LIMIT 1
	`, string(s)).Scan(&tpl.ID, &tpl.Name, &tpl.Subject, &tpl.Recipients, &tpl.BodyHTML)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.EmailTemplate{}, inerr.ErrTemplateNotFound
	}
	if err != nil {
		return entity.EmailTemplate{}, err
	}

	return tpl, nil
}
