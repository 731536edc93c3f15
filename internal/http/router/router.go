// Package router arma el árbol de rutas del servicio.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/corpsite/internal/audit"
	"github.com/dropDatabas3/corpsite/internal/auth"
	"github.com/dropDatabas3/corpsite/internal/authz"
	"github.com/dropDatabas3/corpsite/internal/content"
	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/http/handlers"
	"github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/rate"
	"github.com/dropDatabas3/corpsite/internal/store"
)

// Deps son las dependencias del router completo.
type Deps struct {
	Auth  *auth.Service
	Store *store.Store
	Audit *audit.Recorder

	Issuer     *jwt.Issuer
	CheckRedis func(ctx context.Context) error // nil si no hay redis

	LoginLimiter  rate.Limiter
	ForgotLimiter rate.Limiter

	CORSAllowedOrigins []string
	Metrics            http.Handler
}

// New construye el handler raíz con toda la cadena de middlewares.
func New(d Deps) http.Handler {
	h := handlers.Deps{Auth: d.Auth, Store: d.Store, Audit: d.Audit}

	r := chi.NewRouter()

	// infra
	r.Get("/healthz", handlers.NewHealthzHandler())
	r.Get("/readyz", handlers.NewReadyzHandler(h, d.Issuer, d.CheckRedis))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	authOpt := httpx.WithAuthOptional(d.Auth)
	authReq := httpx.WithAuthRequired(d.Auth)
	adminOnly := httpx.RequireRole(authz.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		// auth
		r.Group(func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.Use(httpx.WithRateLimit(d.LoginLimiter))
			}
			r.Post("/auth/login", handlers.NewLoginHandler(h))
		})
		r.Post("/auth/refresh", handlers.NewRefreshHandler(h))
		r.Group(func(r chi.Router) {
			if d.ForgotLimiter != nil {
				r.Use(httpx.WithRateLimit(d.ForgotLimiter))
			}
			r.Post("/auth/password-reset", handlers.NewResetRequestHandler(h))
		})
		r.Post("/auth/password-reset/confirm", handlers.NewResetConfirmHandler(h))
		r.With(authReq, httpx.WithPolicy(authz.ScopeProtected)).Get("/auth/profile", handlers.NewProfileHandler(h))

		// contacto: alta pública, gestión admin
		r.Post("/contact", handlers.NewContactCreateHandler(h))
		r.Route("/contact-messages", func(r chi.Router) {
			r.Use(authReq, adminOnly)
			r.Get("/", handlers.NewMessagesListHandler(h))
			r.Post("/{id}/read", handlers.NewMessagesReadHandler(h, true))
			r.Post("/{id}/unread", handlers.NewMessagesReadHandler(h, false))
			r.Delete("/{id}", handlers.NewMessagesDeleteHandler(h))
		})

		// gestión de usuarios: admin siempre
		r.Route("/users", func(r chi.Router) {
			r.Use(authReq, adminOnly)
			r.Get("/", handlers.NewUsersListHandler(h))
			r.Post("/", handlers.NewUsersCreateHandler(h))
			r.Get("/check-username", handlers.NewUsernameCheckHandler(h))
			r.Get("/{id}", handlers.NewUsersGetHandler(h))
			r.Put("/{id}", handlers.NewUsersUpdateHandler(h))
			r.Delete("/{id}", handlers.NewUsersDeleteHandler(h))
			r.Patch("/{id}/role", handlers.NewUsersRoleHandler(h))
		})

		r.With(authReq, adminOnly).Get("/activity", handlers.NewActivityHandler(h))

		// contenido genérico: el evaluador decide por método + scope
		r.Route("/{resource}", func(r chi.Router) {
			r.Use(authOpt, contentPolicy)
			r.Get("/", handlers.NewContentListHandler(h))
			r.Post("/", handlers.NewContentCreateHandler(h))
			r.Get("/{id}", handlers.NewContentGetHandler(h))
			r.Put("/{id}", handlers.NewContentUpdateHandler(h))
			// PATCH = reemplazo completo: el panel siempre manda el
			// objeto entero, no hay merge parcial
			r.Patch("/{id}", handlers.NewContentUpdateHandler(h))
			r.Delete("/{id}", handlers.NewContentDeleteHandler(h))
		})
	})

	// cadena externa, de afuera hacia adentro
	return httpx.Chain(r,
		httpx.WithRequestID,
		httpx.WithRecover,
		httpx.WithSecurityHeaders,
		httpx.WithCORS(d.CORSAllowedOrigins),
		httpx.WithMetrics,
		httpx.WithAccessLog,
	)
}

// contentPolicy resuelve el scope del recurso de la URL y corre el
// evaluador. Va después del auth opcional, así ya hay identidad.
func contentPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := content.Lookup(chi.URLParam(r, "resource"))
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "recurso desconocido", httpx.CodeNotFound)
			return
		}
		scope := authz.ScopePublic
		if res.AdminOnly {
			scope = authz.ScopeAdmin
		}
		id := httpx.IdentityFrom(r.Context())
		if authz.Allow(id, r.Method, scope) {
			next.ServeHTTP(w, r)
			return
		}
		httpx.CountAuthFailure("forbidden")
		if !id.Authenticated {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "se requiere sesión", httpx.CodeUnauthorized)
			return
		}
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "rol insuficiente", httpx.CodeForbidden)
	})
}
