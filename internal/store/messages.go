package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContactMessage llega por el form público del sitio.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

const msgCols = `id, name, email, subject, message, read, created_at`

func scanMessage(row pgx.Row) (*ContactMessage, error) {
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Read, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *ContactMessage) (*ContactMessage, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO contact_message (id, name, email, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+msgCols,
		uuid.NewString(), strings.TrimSpace(m.Name), strings.TrimSpace(m.Email),
		strings.TrimSpace(m.Subject), m.Message)
	return scanMessage(row)
}

// ListMessages devuelve los más nuevos primero.
func (s *Store) ListMessages(ctx context.Context) ([]*ContactMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+msgCols+` FROM contact_message ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*ContactMessage, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetMessage(ctx context.Context, id string) (*ContactMessage, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+msgCols+` FROM contact_message WHERE id = $1`, id)
	return scanMessage(row)
}

func (s *Store) SetMessageRead(ctx context.Context, id string, read bool) (*ContactMessage, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE contact_message SET read = $2 WHERE id = $1
		RETURNING `+msgCols, id, read)
	return scanMessage(row)
}

func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contact_message WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
