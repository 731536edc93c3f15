package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/corpsite/internal/auth"
	"github.com/dropDatabas3/corpsite/internal/authz"
	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/store"
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

func actorName(r *http.Request) string {
	if p := httpx.PrincipalFrom(r.Context()); p != nil {
		return p.Username
	}
	return ""
}

func writeUserErr(w http.ResponseWriter, r *http.Request, err error) {
	var weak *auth.WeakPasswordError
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "usuario inexistente", httpx.CodeNotFound)
	case errors.Is(err, store.ErrDuplicate):
		httpx.WriteError(w, http.StatusConflict, "duplicate", "username o email ya en uso", httpx.CodeDuplicate)
	case errors.As(err, &weak):
		httpx.WriteError(w, http.StatusBadRequest, "weak_password",
			"la contraseña no cumple la política: "+weak.Policy.Describe(weak.Reasons), httpx.CodeWeakPassword)
	default:
		logger.From(r.Context()).Error("operación de usuarios falló", logger.Err(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
	}
}

// NewUsersListHandler: GET /api/users
func NewUsersListHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := d.Store.ListUsers(r.Context())
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		out := make([]userView, 0, len(users))
		for _, u := range users {
			out = append(out, viewUser(u))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewUsersCreateHandler: POST /api/users
func NewUsersCreateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		if !usernameRE.MatchString(req.Username) {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error",
				"username inválido: 3-20 caracteres, letras, números y guión bajo", httpx.CodeValidation)
			return
		}
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "email inválido", httpx.CodeValidation)
			return
		}
		role := req.Role
		if role == "" {
			role = string(authz.RoleViewer)
		}
		if !authz.Role(role).Valid() {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "rol desconocido", httpx.CodeValidation)
			return
		}

		hash, err := d.Auth.HashPassword(req.Password)
		if err != nil {
			writeUserErr(w, r, err)
			return
		}

		u, err := d.Store.CreateUser(r.Context(), &store.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         role,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		})
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actorName(r), "user_created", "user:"+u.ID, u.Username)
		httpx.WriteJSON(w, http.StatusCreated, viewUser(u))
	}
}

// NewUsersGetHandler: GET /api/users/{id}
func NewUsersGetHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := d.Store.GetUserByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, viewUser(u))
	}
}

type updateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"` // opcional
}

// NewUsersUpdateHandler: PUT /api/users/{id}
func NewUsersUpdateHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateUserRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Username != "" && !usernameRE.MatchString(strings.TrimSpace(req.Username)) {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error",
				"username inválido: 3-20 caracteres, letras, números y guión bajo", httpx.CodeValidation)
			return
		}

		current, err := d.Store.GetUserByID(r.Context(), id)
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		if req.Username == "" {
			req.Username = current.Username
		}
		if req.Email == "" {
			req.Email = current.Email
		}

		u, err := d.Store.UpdateUser(r.Context(), id, req.Username, req.Email, req.FirstName, req.LastName)
		if err != nil {
			writeUserErr(w, r, err)
			return
		}

		if req.Password != "" {
			if err := d.Auth.SetPassword(r.Context(), id, req.Password); err != nil {
				writeUserErr(w, r, err)
				return
			}
		}

		d.Audit.Record(r.Context(), actorName(r), "user_updated", "user:"+u.ID, u.Username)
		httpx.WriteJSON(w, http.StatusOK, viewUser(u))
	}
}

// NewUsersDeleteHandler: DELETE /api/users/{id}. El admin de bootstrap está
// protegido y no se puede borrar.
func NewUsersDeleteHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		u, err := d.Store.GetUserByID(r.Context(), id)
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		if u.Protected {
			httpx.WriteError(w, http.StatusForbidden, "protected_user", "este usuario no se puede eliminar", httpx.CodeProtectedUser)
			return
		}
		if err := d.Store.DeleteUser(r.Context(), id); err != nil {
			writeUserErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actorName(r), "user_deleted", "user:"+id, u.Username)
		w.WriteHeader(http.StatusNoContent)
	}
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// NewUsersRoleHandler: PATCH /api/users/{id}/role. Al protegido tampoco se
// le baja el rol.
func NewUsersRoleHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateRoleRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if !authz.Role(req.Role).Valid() {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "rol desconocido", httpx.CodeValidation)
			return
		}

		current, err := d.Store.GetUserByID(r.Context(), id)
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		if current.Protected && req.Role != string(authz.RoleAdmin) {
			httpx.WriteError(w, http.StatusForbidden, "protected_user", "este usuario no puede perder el rol admin", httpx.CodeProtectedUser)
			return
		}

		u, err := d.Store.UpdateUserRole(r.Context(), id, req.Role)
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		d.Audit.Record(r.Context(), actorName(r), "role_changed", "user:"+u.ID, u.Username+" -> "+req.Role)
		httpx.WriteJSON(w, http.StatusOK, viewUser(u))
	}
}

// NewUsernameCheckHandler: GET /api/users/check-username?username=juan
// Para el form de alta del panel.
func NewUsernameCheckHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if !usernameRE.MatchString(username) {
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"available": false, "valid": false})
			return
		}
		taken, err := d.Store.UsernameTaken(r.Context(), username)
		if err != nil {
			writeUserErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"available": !taken, "valid": true})
	}
}
