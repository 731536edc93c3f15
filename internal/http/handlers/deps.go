package handlers

import (
	"time"

	"github.com/dropDatabas3/corpsite/internal/audit"
	"github.com/dropDatabas3/corpsite/internal/auth"
	"github.com/dropDatabas3/corpsite/internal/store"
)

// Deps agrupa lo que usan los handlers. Se arma una vez en el router.
type Deps struct {
	Auth  *auth.Service
	Store *store.Store
	Audit *audit.Recorder
}

// userView es el usuario como sale por la API: sin hash.
type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Protected bool      `json:"protected"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewUser(u *store.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Protected: u.Protected,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
