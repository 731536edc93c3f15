package router

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
	"github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/rate"
	"github.com/dropDatabas3/corpsite/internal/security/password"
	"github.com/dropDatabas3/corpsite/internal/store"
)

type memUsers struct {
	users map[string]*store.User
}

func (m *memUsers) find(match func(*store.User) bool) (*store.User, error) {
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*store.User, error) {
	return m.find(func(u *store.User) bool { return u.ID == id })
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	return m.find(func(u *store.User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	return m.find(func(u *store.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memUsers) UpdateUserPassword(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// newRouterFixture levanta el router completo sin base: alcanza para probar
// ruteo, auth y el evaluador de acceso por recurso.
func newRouterFixture(t *testing.T) (http.Handler, map[string]string) {
	t.Helper()

	keys, err := jwt.LoadOrCreate(filepath.Join(t.TempDir(), "jwt.key"))
	require.NoError(t, err)
	issuer := jwt.NewIssuer("corpsite", keys, 15*time.Minute, time.Hour)

	hasher := password.NewHasher(password.Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	hash, err := hasher.Hash("Clave123")
	require.NoError(t, err)

	users := &memUsers{users: map[string]*store.User{
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

	h := New(Deps{
		Auth:          svc,
		Issuer:        issuer,
		LoginLimiter:  rate.Noop{},
		ForgotLimiter: rate.Noop{},
	})

	tokens := map[string]string{}
	for _, username := range []string{"root", "edi", "vio"} {
		pair, u, err := svc.Login(context.Background(), username, "Clave123")
		require.NoError(t, err)
		tokens[u.Role] = pair.Access
	}
	return h, tokens
}

func hit(h http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestHealthz(t *testing.T) {
	h, _ := newRouterFixture(t)
	rec := hit(h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestContentRoutes_UnknownResource(t *testing.T) {
	h, tokens := newRouterFixture(t)
	rec := hit(h, http.MethodGet, "/api/no-existe", tokens["admin"])
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentRoutes_WriteNeedsSession(t *testing.T) {
	h, _ := newRouterFixture(t)
	rec := hit(h, http.MethodPost, "/api/news", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContentRoutes_EditorCannotDelete(t *testing.T) {
	h, tokens := newRouterFixture(t)
	rec := hit(h, http.MethodDelete, "/api/news/11111111-2222-3333-4444-555555555555", tokens["editor"])
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestContentRoutes_ViewerCannotWrite(t *testing.T) {
	h, tokens := newRouterFixture(t)
	rec := hit(h, http.MethodPost, "/api/news", tokens["viewer"])
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSiteSettings_AdminOnly(t *testing.T) {
	h, tokens := newRouterFixture(t)

	// ni lectura para un editor
	rec := hit(h, http.MethodGet, "/api/site-settings", tokens["editor"])
	require.Equal(t, http.StatusForbidden, rec.Code)

	// anónimo: 401, no 403
	rec = hit(h, http.MethodGet, "/api/site-settings", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsersSurface_RequiresAdmin(t *testing.T) {
	h, tokens := newRouterFixture(t)

	require.Equal(t, http.StatusUnauthorized, hit(h, http.MethodGet, "/api/users", "").Code)
	require.Equal(t, http.StatusForbidden, hit(h, http.MethodGet, "/api/users", tokens["editor"]).Code)
}

func TestActivity_RequiresAdmin(t *testing.T) {
	h, tokens := newRouterFixture(t)
	require.Equal(t, http.StatusForbidden, hit(h, http.MethodGet, "/api/activity", tokens["viewer"]).Code)
}

func TestProfile_RequiresSession(t *testing.T) {
	h, _ := newRouterFixture(t)
	require.Equal(t, http.StatusUnauthorized, hit(h, http.MethodGet, "/api/auth/profile", "").Code)
}
