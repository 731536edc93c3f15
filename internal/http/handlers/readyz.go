package handlers

import (
	"context"
	"net/http"

	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
)

// NewHealthzHandler: liveness pelado, no toca dependencias.
func NewHealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// NewReadyzHandler: readiness real. Chequea DB, hace un self-check de firma
// y, si hay redis, también lo pinggea.
func NewReadyzHandler(d Deps, issuer *jwt.Issuer, checkRedis func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.Ping(r.Context()); err != nil {
			logger.From(r.Context()).Error("readyz: db no disponible", logger.Err(err))
			httpx.WriteError(w, http.StatusServiceUnavailable, "db_unavailable", "database unavailable", httpx.CodeInternal)
			return
		}

		// self-check EdDSA: firmar y verificar un token efímero
		signed, _, err := issuer.IssueAccess("selfcheck", "selfcheck", "viewer")
		if err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "sign_failed", "no se pudo firmar self-check", httpx.CodeInternal)
			return
		}
		claims, err := issuer.Parse(signed, jwt.UseAccess)
		if err != nil || claims.Subject != "selfcheck" {
			httpx.WriteError(w, http.StatusServiceUnavailable, "verify_failed", "self-check: verificación falló", httpx.CodeInternal)
			return
		}

		if checkRedis != nil {
			if err := checkRedis(r.Context()); err != nil {
				logger.From(r.Context()).Error("readyz: redis no disponible", logger.Err(err))
				httpx.WriteError(w, http.StatusServiceUnavailable, "redis_unavailable", "redis unavailable", httpx.CodeInternal)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
