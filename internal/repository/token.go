package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tradutema/delivery/internal/entity"
	inerr "github.com/tradutema/delivery/internal/errors"
	"github.com/tradutema/delivery/internal/security"
)

const (
	tokenLength   = 48
	issueAttempts = 5
)

type Token struct {
	db *sql.DB
}

func NewToken(db *sql.DB) *Token {
	return &Token{db: db}
}

// Issue genera un token aleatorio de un solo uso para el pedido y lo
// persiste. Ante una colisión de clave reintenta la generación hasta 5 veces;
// si todas colisionan o la escritura falla devuelve errors.ErrTokenIssuanceFailed.
func (r *Token) Issue(ctx context.Context, orderID int) (string, error) {
	for attempt := 0; attempt < issueAttempts; attempt++ {
		token, err := security.RandomString(tokenLength)
		if err != nil {
			return "", fmt.Errorf("%w: %v", inerr.ErrTokenIssuanceFailed, err)
		}

		_, err = r.db.ExecContext(ctx, "INSERT INTO upload_tokens (token, order_id) VALUES ($1, $2)", token, orderID)
		if err == nil {
			return token, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			continue
		}

		return "", fmt.Errorf("%w: %v", inerr.ErrTokenIssuanceFailed, err)
	}

	return "", inerr.ErrTokenIssuanceFailed
}

// Find resuelve un token a su registro. Un token vacío, malformado o
// desconocido devuelve errors.ErrTokenInvalid.
func (r *Token) Find(ctx context.Context, token string) (entity.UploadToken, error) {
	if len(token) < 32 {
		return entity.UploadToken{}, inerr.ErrTokenInvalid
	}

	var (
		record entity.UploadToken
		usedAt sql.NullTime
		files  sql.NullString
	)
	err := r.db.QueryRowContext(
		ctx,
		"SELECT token, order_id, created_at, used, used_at, files FROM upload_tokens WHERE token = $1",
		token,
	).Scan(&record.Token, &record.OrderID, &record.CreatedAt, &record.Used, &usedAt, &files)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.UploadToken{}, inerr.ErrTokenInvalid
	}
	if err != nil {
		return entity.UploadToken{}, err
	}

	if usedAt.Valid {
		record.UsedAt = &usedAt.Time
	}
	if files.Valid && files.String != "" {
		if err := json.Unmarshal([]byte(files.String), &record.Files); err != nil {
			return entity.UploadToken{}, err
		}
	}

	return record, nil
}

// Consume marca el token como usado y guarda la lista de archivos subidos.
// Es una escritura condicional sobre used = false: si otro proceso consumió
// el token primero devuelve errors.ErrTokenAlreadyUsed, lo que garantiza la
// redención como máximo una vez incluso ante envíos duplicados.
func (r *Token) Consume(ctx context.Context, token string, files []string) error {
	if files == nil {
		files = []string{}
	}

	payload, err := json.Marshal(files)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(
		ctx,
		"UPDATE upload_tokens SET used = true, used_at = now(), files = $2 WHERE token = $1 AND used = false",
		token,
		string(payload),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inerr.ErrTokenAlreadyUsed
	}

	return nil
}

// History devuelve los tokens emitidos para un pedido, del más antiguo al
// más reciente.
func (r *Token) History(ctx context.Context, orderID int) (tokens []entity.UploadToken, err error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT token, order_id, created_at, used, used_at, files FROM upload_tokens WHERE order_id = $1 ORDER BY created_at",
		orderID,
	)
	if err != nil {
		return nil, err
	}

	defer func(rows *sql.Rows) {
		err = rows.Close()
	}(rows)

	for rows.Next() {
		var (
			record entity.UploadToken
			usedAt sql.NullTime
			files  sql.NullString
		)
		if err := rows.Scan(&record.Token, &record.OrderID, &record.CreatedAt, &record.Used, &usedAt, &files); err != nil {
			continue
		}

		if usedAt.Valid {
			record.UsedAt = &usedAt.Time
		}
		if files.Valid && files.String != "" {
			_ = json.Unmarshal([]byte(files.String), &record.Files)
		}

		tokens = append(tokens, record)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tokens, err
}
