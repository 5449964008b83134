package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
)

func TestTemplate_FindActiveByStatus(t *testing.T) {
	var (
		ctx   = context.Background()
		query = `
SELECT id, nombre, asunto, destinatarios, cuerpo_html
FROM email_templates
WHERE activo AND estado_operacional = $1
ORDER BY updated_at DESC
LIMIT 1
	`
		columns = []string{"id", "nombre", "asunto", "destinatarios", "cuerpo_html"}
	)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	r := NewTemplate(db)

	mock.ExpectQuery(query).
		WithArgs("entregado").
		WillReturnRows(
			sqlmock.NewRows(columns).
				AddRow(5, "Entrega final", "Pedido {{pedido_id}} entregado", "copia@example.com",
					"<p>Su traducción: {{enlace_cliente}}</p>"),
		)
	mock.ExpectQuery(query).
		WithArgs("traducido").
		WillReturnRows(sqlmock.NewRows(columns))

	tpl, err := r.FindActiveByStatus(ctx, entity.StatusDelivered)
	require.NoError(t, err, "búsqueda correcta de plantilla")
	assert.Equal(t, "Entrega final", tpl.Name)
	assert.Equal(t, entity.StatusDelivered, tpl.Status)
	assert.True(t, tpl.Active)

	_, err = r.FindActiveByStatus(ctx, entity.StatusTranslated)
	assert.ErrorIs(t, err, inerr.ErrTemplateNotFound, "sin plantilla configurada para el estado")

	assert.NoError(t, mock.ExpectationsWereMet())
}
