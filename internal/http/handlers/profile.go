package handlers

import (
	"errors"
	"net/http"

	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/store"
)

// NewProfileHandler: GET /api/auth/profile. Relee de DB para devolver el
// estado vigente, no lo que diga el token.
func NewProfileHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := httpx.PrincipalFrom(r.Context())
		u, err := d.Store.GetUserByID(r.Context(), p.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// token válido pero el usuario ya no existe
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "usuario inexistente", httpx.CodeUnauthorized)
				return
			}
			logger.From(r.Context()).Error("profile falló", logger.Err(err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, viewUser(u))
	}
}
