package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/corpsite/internal/email"
	"github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/security/password"
	"github.com/dropDatabas3/corpsite/internal/security/token"
	"github.com/dropDatabas3/corpsite/internal/store"
)

// ---- fakes ----

type fakeUsers struct {
	byID map[string]*store.User
}

func (f *fakeUsers) find(match func(*store.User) bool) (*store.User, error) {
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*store.User, error) {
	return f.find(func(u *store.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	return f.find(func(u *store.User) bool { return strings.EqualFold(u.Username, username) })
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, emailAddr string) (*store.User, error) {
	return f.find(func(u *store.User) bool { return strings.EqualFold(u.Email, emailAddr) })
}

func (f *fakeUsers) UpdateUserPassword(_ context.Context, id, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeTicket struct {
	userID  string
	expires time.Time
	used    bool
}

type fakeTickets struct {
	byHash map[string]*fakeTicket
}

func (f *fakeTickets) CreateResetTicket(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.byHash[tokenHash] = &fakeTicket{userID: userID, expires: expiresAt}
	return nil
}

func (f *fakeTickets) ConsumeResetTicket(_ context.Context, tokenHash string) (string, error) {
	tk, ok := f.byHash[tokenHash]
	if !ok || tk.used || time.Now().After(tk.expires) {
		return "", store.ErrNotFound
	}
	tk.used = true
	return tk.userID, nil
}

type fakeSender struct {
	to, subject, html, text string
	sent                    int
}

func (f *fakeSender) Send(to, subject, htmlBody, textBody string) error {
	f.to, f.subject, f.html, f.text = to, subject, htmlBody, textBody
	f.sent++
	return nil
}

// ---- wiring ----

var testHasher = password.NewHasher(password.Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})

func newTestService(t *testing.T) (*Service, *fakeUsers, *fakeTickets, *fakeSender) {
	t.Helper()

	keys, err := jwt.LoadOrCreate(filepath.Join(t.TempDir(), "jwt.key"))
	require.NoError(t, err)
	issuer := jwt.NewIssuer("corpsite", keys, 15*time.Minute, time.Hour)

	hash, err := testHasher.Hash("Correcta1")
	require.NoError(t, err)

	users := &fakeUsers{byID: map[string]*store.User{
		"u1": {ID: "u1", Username: "juana", Email: "juana@example.com", PasswordHash: hash, Role: "editor"},
	}}
	tickets := &fakeTickets{byHash: map[string]*fakeTicket{}}
	sender := &fakeSender{}

	tpl, err := email.LoadTemplates("")
	require.NoError(t, err)

	svc := NewService(Options{
		Users:     users,
		Tickets:   tickets,
		Hasher:    testHasher,
		Policy:    password.Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true},
		Issuer:    issuer,
		Sender:    sender,
		Templates: tpl,
		BaseURL:   "https://panel.example.com",
		ResetTTL:  time.Hour,
	})
	return svc, users, tickets, sender
}

// ---- login / refresh ----

func TestLogin_OK(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	pair, u, err := svc.Login(context.Background(), "juana", "Correcta1")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := svc.Authenticate(context.Background(), pair.Access)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "editor", claims.Role)
}

func TestLogin_UniformError(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	// contraseña mal y usuario inexistente: exactamente el mismo error
	_, _, errBadPass := svc.Login(context.Background(), "juana", "Incorrecta1")
	_, _, errNoUser := svc.Login(context.Background(), "nadie", "Incorrecta1")

	require.ErrorIs(t, errBadPass, ErrInvalidCredentials)
	require.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	require.Equal(t, errBadPass.Error(), errNoUser.Error())
}

func TestLogin_CaseInsensitiveUsername(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, u, err := svc.Login(context.Background(), "JUANA", "Correcta1")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
}

func TestRefresh_OK(t *testing.T) {
	svc, users, _, _ := newTestService(t)

	pair, _, err := svc.Login(context.Background(), "juana", "Correcta1")
	require.NoError(t, err)

	// el cambio de rol pega en el próximo refresh
	users.byID["u1"].Role = "admin"

	next, u, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	require.Equal(t, "admin", u.Role)

	claims, err := svc.Authenticate(context.Background(), next.Access)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	pair, _, err := svc.Login(context.Background(), "juana", "Correcta1")
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), pair.Access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_DeletedUser(t *testing.T) {
	svc, users, _, _ := newTestService(t)

	pair, _, err := svc.Login(context.Background(), "juana", "Correcta1")
	require.NoError(t, err)

	delete(users.byID, "u1")

	_, _, err = svc.Refresh(context.Background(), pair.Refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	pair, _, err := svc.Login(context.Background(), "juana", "Correcta1")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), pair.Refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// ---- reset ----

func TestRequestReset_UnknownEmailSilent(t *testing.T) {
	svc, _, tickets, sender := newTestService(t)

	link := svc.RequestReset(context.Background(), "nadie@example.com")
	require.Empty(t, link)
	require.Empty(t, tickets.byHash)
	require.Zero(t, sender.sent)
}

func TestRequestReset_SendsMailAndStoresHash(t *testing.T) {
	svc, _, tickets, sender := newTestService(t)
	svc.EchoResetLinks = true

	link := svc.RequestReset(context.Background(), "juana@example.com")
	require.NotEmpty(t, link)
	require.True(t, strings.HasPrefix(link, "https://panel.example.com/reset-password?token="))

	require.Equal(t, 1, sender.sent)
	require.Equal(t, "juana@example.com", sender.to)
	require.Contains(t, sender.text, link)

	// en el "storage" queda el hash, nunca el token en claro
	plain := strings.TrimPrefix(link, "https://panel.example.com/reset-password?token=")
	_, hasPlain := tickets.byHash[plain]
	require.False(t, hasPlain)
	_, hasHash := tickets.byHash[token.Hash(plain)]
	require.True(t, hasHash)
}

func TestConfirmReset_SingleUse(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	svc.EchoResetLinks = true

	link := svc.RequestReset(context.Background(), "juana@example.com")
	plain := strings.TrimPrefix(link, "https://panel.example.com/reset-password?token=")

	require.NoError(t, svc.ConfirmReset(context.Background(), plain, "NuevaClave9"))
	require.True(t, testHasher.Verify("NuevaClave9", users.byID["u1"].PasswordHash))

	// replay: el mismo token no vuelve a servir
	err := svc.ConfirmReset(context.Background(), plain, "OtraClave99")
	require.ErrorIs(t, err, ErrInvalidToken)
	require.True(t, testHasher.Verify("NuevaClave9", users.byID["u1"].PasswordHash))
}

func TestConfirmReset_WeakPasswordKeepsTicket(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	svc.EchoResetLinks = true

	link := svc.RequestReset(context.Background(), "juana@example.com")
	plain := strings.TrimPrefix(link, "https://panel.example.com/reset-password?token=")

	var weak *WeakPasswordError
	err := svc.ConfirmReset(context.Background(), plain, "corta")
	require.ErrorAs(t, err, &weak)
	require.Contains(t, weak.Reasons, "too_short")

	// el rechazo por política no quemó el token
	require.NoError(t, svc.ConfirmReset(context.Background(), plain, "NuevaClave9"))
}

func TestConfirmReset_Expired(t *testing.T) {
	svc, _, tickets, _ := newTestService(t)
	svc.EchoResetLinks = true

	link := svc.RequestReset(context.Background(), "juana@example.com")
	plain := strings.TrimPrefix(link, "https://panel.example.com/reset-password?token=")

	for _, tk := range tickets.byHash {
		tk.expires = time.Now().Add(-time.Minute)
	}

	err := svc.ConfirmReset(context.Background(), plain, "NuevaClave9")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmReset_MadeUpToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	err := svc.ConfirmReset(context.Background(), "token-inventado", "NuevaClave9")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// ---- password helpers ----

func TestSetPassword_EnforcesPolicy(t *testing.T) {
	svc, users, _, _ := newTestService(t)

	var weak *WeakPasswordError
	err := svc.SetPassword(context.Background(), "u1", "debil")
	require.ErrorAs(t, err, &weak)

	require.NoError(t, svc.SetPassword(context.Background(), "u1", "ClaveFuerte1"))
	require.True(t, testHasher.Verify("ClaveFuerte1", users.byID["u1"].PasswordHash))
}
