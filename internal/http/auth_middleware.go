package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/corpsite/internal/auth"
	"github.com/dropDatabas3/corpsite/internal/authz"
	"github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
)

type principalKey struct{}

// PrincipalFrom devuelve las claims del access token, o nil si el request
// es anónimo.
func PrincipalFrom(ctx context.Context) *jwt.Claims {
	v, _ := ctx.Value(principalKey{}).(*jwt.Claims)
	return v
}

// IdentityFrom traduce el principal (o su ausencia) a la identidad que
// entiende el evaluador de acceso.
func IdentityFrom(ctx context.Context) authz.Identity {
	p := PrincipalFrom(ctx)
	if p == nil {
		return authz.Anonymous
	}
	return authz.Identity{Authenticated: true, Role: authz.Role(p.Role)}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithAuthOptional valida el Bearer si viene. Un token inválido corta con
// 401 aunque la ruta admita anónimos: mandaste credencial, tiene que ser
// buena. Sin header, el request sigue como anónimo.
func WithAuthOptional(svc *auth.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := svc.Authenticate(r.Context(), tok)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "token inválido o vencido", CodeUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), principalKey{}, claims)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(claims.Subject), logger.Role(claims.Role)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithAuthRequired exige sesión.
func WithAuthRequired(svc *auth.Service) Middleware {
	optional := WithAuthOptional(svc)
	return func(next http.Handler) http.Handler {
		return optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFrom(r.Context()) == nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "token inválido o ausente", CodeUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// WithPolicy corre el evaluador de acceso para el scope dado, con el método
// del request. Va después de WithAuthOptional/Required.
func WithPolicy(scope authz.Scope) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFrom(r.Context())
			if authz.Allow(id, r.Method, scope) {
				next.ServeHTTP(w, r)
				return
			}
			if !id.Authenticated {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "se requiere sesión", CodeUnauthorized)
				return
			}
			WriteError(w, http.StatusForbidden, "forbidden", "rol insuficiente", CodeForbidden)
		})
	}
}

// RequireRole corta si el rol no llega al mínimo. Para superficies que no
// dependen del método (ej: gestión de usuarios = admin siempre).
func RequireRole(min authz.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFrom(r.Context())
			if !id.Authenticated {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "se requiere sesión", CodeUnauthorized)
				return
			}
			if !id.Role.AtLeast(min) {
				WriteError(w, http.StatusForbidden, "forbidden", "rol insuficiente", CodeForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
