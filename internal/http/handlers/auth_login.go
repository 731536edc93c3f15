package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/corpsite/internal/auth"
	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken      string   `json:"access_token"`
	RefreshToken     string   `json:"refresh_token"`
	TokenType        string   `json:"token_type"` // "Bearer"
	ExpiresIn        int64    `json:"expires_in"` // segundos del access
	RefreshExpiresIn int64    `json:"refresh_expires_in"`
	User             userView `json:"user"`
}

func tokenResp(pair *auth.TokenPair, u userView) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.Access,
		RefreshToken:     pair.Refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(time.Until(pair.AccessExpires).Seconds()),
		RefreshExpiresIn: int64(time.Until(pair.RefreshExpires).Seconds()),
		User:             u,
	}
}

// NewLoginHandler: POST /api/auth/login
func NewLoginHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Username == "" || req.Password == "" {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "faltan username o password", httpx.CodeValidation)
			return
		}

		pair, u, err := d.Auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				// misma respuesta exista o no el usuario
				httpx.CountAuthFailure("bad_credentials")
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "usuario o contraseña incorrectos", httpx.CodeBadCredentials)
				return
			}
			logger.From(r.Context()).Error("login falló", logger.Err(err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, tokenResp(pair, viewUser(u)))
	}
}
