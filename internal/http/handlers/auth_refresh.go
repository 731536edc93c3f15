package handlers

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/corpsite/internal/auth"
	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// NewRefreshHandler: POST /api/auth/refresh. Emite un par nuevo; el refresh
// viejo sigue siendo válido hasta que venza (tokens stateless).
func NewRefreshHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "falta refresh_token", httpx.CodeValidation)
			return
		}

		pair, u, err := d.Auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				httpx.CountAuthFailure("bad_token")
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "refresh token inválido o vencido", httpx.CodeBadToken)
				return
			}
			logger.From(r.Context()).Error("refresh falló", logger.Err(err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, tokenResp(pair, viewUser(u)))
	}
}
