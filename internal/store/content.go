package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContentEntry es una pieza de contenido del sitio. El tipo (resource) sale
// del registry; el cuerpo vive en payload como JSONB.
type ContentEntry struct {
	ID        string          `json:"id"`
	Resource  string          `json:"resource"`
	Slug      string          `json:"slug,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const entryCols = `id, resource, COALESCE(slug, ''), payload, COALESCE(created_by::text, ''), created_at, updated_at`

func scanEntry(row pgx.Row) (*ContentEntry, error) {
	var e ContentEntry
	err := row.Scan(&e.ID, &e.Resource, &e.Slug, &e.Payload, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListEntries(ctx context.Context, resource string) ([]*ContentEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryCols+` FROM content_entry
		WHERE resource = $1
		ORDER BY created_at, id`, resource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*ContentEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, resource, id string) (*ContentEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+entryCols+` FROM content_entry
		WHERE resource = $1 AND id = $2`, resource, id)
	return scanEntry(row)
}

// GetSingleton devuelve la única entrada del recurso (la más vieja si por
// error hay más de una).
func (s *Store) GetSingleton(ctx context.Context, resource string) (*ContentEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+entryCols+` FROM content_entry
		WHERE resource = $1
		ORDER BY created_at, id
		LIMIT 1`, resource)
	return scanEntry(row)
}

func (s *Store) CreateEntry(ctx context.Context, resource, slug string, payload json.RawMessage, createdBy string) (*ContentEntry, error) {
	var slugArg, byArg any
	if slug != "" {
		slugArg = slug
	}
	if createdBy != "" {
		byArg = createdBy
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO content_entry (id, resource, slug, payload, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+entryCols,
		uuid.NewString(), resource, slugArg, payload, byArg)
	e, err := scanEntry(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return e, err
}

func (s *Store) UpdateEntry(ctx context.Context, resource, id, slug string, payload json.RawMessage) (*ContentEntry, error) {
	var slugArg any
	if slug != "" {
		slugArg = slug
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE content_entry
		SET slug = COALESCE($3::text, slug), payload = $4, updated_at = now()
		WHERE resource = $1 AND id = $2
		RETURNING `+entryCols,
		resource, id, slugArg, payload)
	e, err := scanEntry(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return e, err
}

// UpsertSingleton crea o pisa la única entrada del recurso.
func (s *Store) UpsertSingleton(ctx context.Context, resource string, payload json.RawMessage, by string) (*ContentEntry, error) {
	existing, err := s.GetSingleton(ctx, resource)
	if errors.Is(err, ErrNotFound) {
		return s.CreateEntry(ctx, resource, "", payload, by)
	}
	if err != nil {
		return nil, err
	}
	return s.UpdateEntry(ctx, resource, existing.ID, "", payload)
}

func (s *Store) DeleteEntry(ctx context.Context, resource, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM content_entry WHERE resource = $1 AND id = $2`, resource, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
