package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
)

type Provider struct {
	db *sql.DB
}

func NewProvider(db *sql.DB) *Provider {
	return &Provider{db: db}
}

// Find devuelve un proveedor por id. Si no existe devuelve
// errors.ErrProviderNotFound.
func (r *Provider) Find(ctx context.Context, id int) (entity.Provider, error) {
	var (
		provider entity.Provider
		pairs    sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, nombre_comercial, persona_contacto, email, telefono, interno,
       direccion_recogida, pares_idiomas
FROM providers
WHERE id = $1
	`, id).Scan(
		&provider.ID,
		&provider.Name,
		&provider.ContactPerson,
		&provider.Email,
		&provider.Phone,
		&provider.Internal,
		&provider.PickupAddress,
		&pairs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Provider{}, inerr.ErrProviderNotFound
	}
	if err != nil {
		return entity.Provider{}, err
	}

	provider.LanguagePairs = parseLanguagePairs(pairs)

	return provider, nil
}

// FindAll devuelve todos los proveedores dados de alta.
func (r *Provider) FindAll(ctx context.Context) (providers []entity.Provider, err error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, nombre_comercial, persona_contacto, email, telefono, interno,
       direccion_recogida, pares_idiomas
FROM providers
ORDER BY nombre_comercial
	`)
	if err != nil {
		return nil, err
	}

	defer func(rows *sql.Rows) {
		err = rows.Close()
	}(rows)

	for rows.Next() {
		var (
			provider entity.Provider
			pairs    sql.NullString
		)
		if err := rows.Scan(
			&provider.ID,
			&provider.Name,
			&provider.ContactPerson,
			&provider.Email,
			&provider.Phone,
			&provider.Internal,
			&provider.PickupAddress,
			&pairs,
		); err != nil {
			continue
		}

		provider.LanguagePairs = parseLanguagePairs(pairs)
		providers = append(providers, provider)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return providers, err
}

// parseLanguagePairs lee la columna pares_idiomas, un array JSON de pares
// [origen, destino]. Los elementos incompletos se descartan.
func parseLanguagePairs(raw sql.NullString) []entity.LanguagePair {
	if !raw.Valid || raw.String == "" {
		return nil
	}

	var stored [][]string
	if err := json.Unmarshal([]byte(raw.String), &stored); err != nil {
		return nil
	}

	var pairs []entity.LanguagePair
	for _, p := range stored {
		if len(p) < 2 || p[0] == "" || p[1] == "" {
			continue
		}

		pairs = append(pairs, entity.LanguagePair{Source: p[0], Target: p[1]})
	}

	return pairs
}
