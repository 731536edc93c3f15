package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/corpsite/internal/auth"
	"github.com/dropDatabas3/corpsite/internal/authz"
	"github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/security/password"
	"github.com/dropDatabas3/corpsite/internal/store"
)

type staticUsers struct {
	users map[string]*store.User
}

func (s *staticUsers) lookup(match func(*store.User) bool) (*store.User, error) {
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *staticUsers) GetUserByID(_ context.Context, id string) (*store.User, error) {
	return s.lookup(func(u *store.User) bool { return u.ID == id })
}

func (s *staticUsers) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	return s.lookup(func(u *store.User) bool { return strings.EqualFold(u.Username, username) })
}

func (s *staticUsers) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	return s.lookup(func(u *store.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *staticUsers) UpdateUserPassword(_ context.Context, id, hash string) error {
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// newAuthFixture arma un service real con usuarios en memoria y devuelve un
// access token válido por rol.
func newAuthFixture(t *testing.T) (*auth.Service, map[string]string) {
	t.Helper()

	keys, err := jwt.LoadOrCreate(filepath.Join(t.TempDir(), "jwt.key"))
	require.NoError(t, err)
	issuer := jwt.NewIssuer("corpsite", keys, 15*time.Minute, time.Hour)

	hasher := password.NewHasher(password.Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	hash, err := hasher.Hash("Clave123")
	require.NoError(t, err)

	users := &staticUsers{users: map[string]*store.User{
		"u-admin":  {ID: "u-admin", Username: "root", Email: "root@x", PasswordHash: hash, Role: "admin"},
		"u-editor": {ID: "u-editor", Username: "edi", Email: "edi@x", PasswordHash: hash, Role: "editor"},
		"u-viewer": {ID: "u-viewer", Username: "vio", Email: "vio@x", PasswordHash: hash, Role: "viewer"},
	}}

	svc := auth.NewService(auth.Options{
		Users:  users,
		Hasher: hasher,
		Policy: password.Policy{MinLength: 8},
		Issuer: issuer,
	})

	tokens := map[string]string{}
	for _, username := range []string{"root", "edi", "vio"} {
		pair, u, err := svc.Login(context.Background(), username, "Clave123")
		require.NoError(t, err)
		tokens[u.Role] = pair.Access
	}
	return svc, tokens
}

func do(h http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestWithAuthOptional(t *testing.T) {
	svc, tokens := newAuthFixture(t)

	var seen *jwt.Claims
	h := WithAuthOptional(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("sin token sigue anónimo", func(t *testing.T) {
		seen = nil
		rec := do(h, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, seen)
	})

	t.Run("token válido deja el principal en el contexto", func(t *testing.T) {
		seen = nil
		rec := do(h, http.MethodGet, "/", tokens["editor"])
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.Equal(t, "u-editor", seen.Subject)
		require.Equal(t, "editor", seen.Role)
	})

	t.Run("token basura corta con 401 aunque la ruta admita anónimos", func(t *testing.T) {
		seen = nil
		rec := do(h, http.MethodGet, "/", "no.es.un.jwt")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Nil(t, seen)
	})
}

func TestWithAuthRequired(t *testing.T) {
	svc, tokens := newAuthFixture(t)
	h := WithAuthRequired(svc)(okHandler())

	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/", "").Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/", tokens["viewer"]).Code)
}

func TestWithPolicy(t *testing.T) {
	svc, tokens := newAuthFixture(t)
	h := Chain(okHandler(), WithAuthOptional(svc), WithPolicy(authz.ScopePublic))

	// anónimo: lectura sí, escritura 401
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/", "").Code)

	// viewer: lectura sí, escritura 403
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/", tokens["viewer"]).Code)
	require.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/", tokens["viewer"]).Code)

	// editor: escribe pero no borra
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/", tokens["editor"]).Code)
	require.Equal(t, http.StatusForbidden, do(h, http.MethodDelete, "/", tokens["editor"]).Code)

	// admin: todo
	require.Equal(t, http.StatusOK, do(h, http.MethodDelete, "/", tokens["admin"]).Code)

	adminOnly := Chain(okHandler(), WithAuthOptional(svc), WithPolicy(authz.ScopeAdmin))
	require.Equal(t, http.StatusForbidden, do(adminOnly, http.MethodGet, "/", tokens["editor"]).Code)
	require.Equal(t, http.StatusOK, do(adminOnly, http.MethodGet, "/", tokens["admin"]).Code)
}

func TestRequireRole(t *testing.T) {
	svc, tokens := newAuthFixture(t)
	h := Chain(okHandler(), WithAuthOptional(svc), RequireRole(authz.RoleAdmin))

	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/", "").Code)
	require.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/", tokens["editor"]).Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/", tokens["admin"]).Code)
}
