package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityEntry es una línea del log de actividad que ve el panel.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) AppendActivity(ctx context.Context, e *ActivityEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_log (id, actor, action, target, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), e.Actor, e.Action, e.Target, e.Detail)
	return err
}

// RecentActivity devuelve las últimas n entradas, más nuevas primero.
func (s *Store) RecentActivity(ctx context.Context, n int) ([]*ActivityEntry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, actor, action, target, COALESCE(detail, ''), created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*ActivityEntry, 0, n)
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Target, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
