package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/corpsite/internal/auth"
	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
)

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// NewResetRequestHandler: POST /api/auth/password-reset. Contesta 200 pase
// lo que pase: la existencia de una cuenta no se filtra por acá.
func NewResetRequestHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "falta email", httpx.CodeValidation)
			return
		}

		debugLink := d.Auth.RequestReset(r.Context(), req.Email)

		resp := map[string]any{
			"detail": "si el mail existe, vas a recibir instrucciones para restablecer tu contraseña",
		}
		if debugLink != "" {
			// sólo dev: Load() fuerza esto apagado en prod
			resp["debug_reset_link"] = debugLink
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

// NewResetConfirmHandler: POST /api/auth/password-reset/confirm. El token
// sirve una sola vez; reusarlo da el mismo error que uno inventado.
func NewResetConfirmHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetConfirmRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Token == "" || req.Password == "" {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "faltan token o password", httpx.CodeValidation)
			return
		}

		err := d.Auth.ConfirmReset(r.Context(), req.Token, req.Password)
		if err == nil {
			httpx.WriteJSON(w, http.StatusOK, map[string]string{"detail": "contraseña actualizada"})
			return
		}

		var weak *auth.WeakPasswordError
		switch {
		case errors.As(err, &weak):
			httpx.WriteError(w, http.StatusBadRequest, "weak_password",
				"la contraseña no cumple la política: "+weak.Policy.Describe(weak.Reasons), httpx.CodeWeakPassword)
		case errors.Is(err, auth.ErrInvalidToken):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_token", "token inválido, vencido o ya usado", httpx.CodeBadToken)
		default:
			logger.From(r.Context()).Error("reset confirm falló", logger.Err(err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
		}
	}
}
