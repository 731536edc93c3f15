package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateResetTicket guarda el hash de un token de reset con su vencimiento.
// El token en claro nunca toca la DB.
func (s *Store) CreateResetTicket(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO password_reset_ticket (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), userID, tokenHash, expiresAt.UTC())
	return err
}

// ConsumeResetTicket marca el ticket como usado y devuelve el user_id, todo
// en un solo UPDATE. Un segundo intento con el mismo token no matchea el
// WHERE y devuelve ErrNotFound: ahí está la garantía de un solo uso.
func (s *Store) ConsumeResetTicket(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.pool.QueryRow(ctx, `
		UPDATE password_reset_ticket
		SET used_at = now()
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()
		RETURNING user_id`, tokenHash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// PurgeResetTickets limpia vencidos y usados viejos. Pensado para correr
// periódicamente desde main.
func (s *Store) PurgeResetTickets(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM password_reset_ticket
		WHERE expires_at < now() - $1::interval OR used_at < now() - $1::interval`,
		olderThan.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
