package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User es la fila completa de app_user. PasswordHash nunca sale por la API.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
	Protected    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userCols = `id, username, email, password_hash, role, first_name, last_name, protected, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Protected, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByUsername matchea case-insensitive, igual que el login.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE lower(username) = lower($1)`, username)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userCols+` FROM app_user ORDER BY lower(username)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateUser inserta y devuelve la fila final. Username y email únicos.
func (s *Store) CreateUser(ctx context.Context, u *User) (*User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "viewer"
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO app_user (id, username, email, password_hash, role, first_name, last_name, protected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userCols,
		u.ID, strings.TrimSpace(u.Username), strings.TrimSpace(u.Email),
		u.PasswordHash, u.Role, u.FirstName, u.LastName, u.Protected)
	created, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return created, err
}

// UpdateUser pisa los campos editables (no el hash ni protected).
func (s *Store) UpdateUser(ctx context.Context, id string, username, email, firstName, lastName string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE app_user
		SET username = $2, email = $3, first_name = $4, last_name = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userCols,
		id, strings.TrimSpace(username), strings.TrimSpace(email), firstName, lastName)
	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return u, err
}

func (s *Store) UpdateUserRole(ctx context.Context, id, role string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE app_user SET role = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userCols, id, role)
	return scanUser(row)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE app_user SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser no borra usuarios protegidos (el admin de bootstrap).
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM app_user WHERE id = $1 AND NOT protected`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkUserProtected prende el flag que blinda al admin de bootstrap.
func (s *Store) MarkUserProtected(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE app_user SET protected = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UsernameTaken sirve para el check en vivo del form de alta.
func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE lower(username) = lower($1))`,
		username).Scan(&exists)
	return exists, err
}
