package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/corpsite/internal/audit"
	"github.com/dropDatabas3/corpsite/internal/email"
	"github.com/dropDatabas3/corpsite/internal/jwt"
	"github.com/dropDatabas3/corpsite/internal/security/password"
	"github.com/dropDatabas3/corpsite/internal/store"
)

var (
	// ErrInvalidCredentials es deliberadamente único para login: el caller
	// no puede distinguir "usuario no existe" de "contraseña mal".
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
)

// WeakPasswordError lista por qué la contraseña nueva no pasa la política.
type WeakPasswordError struct {
	Reasons []string
	Policy  password.Policy
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("weak_password: %s", strings.Join(e.Reasons, ","))
}

// PrincipalStore es lo que el service necesita saber de usuarios.
// *store.Store lo implementa; los tests usan un fake.
type PrincipalStore interface {
	GetUserByID(ctx context.Context, id string) (*store.User, error)
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
}

// TicketStore guarda y consume tickets de reset.
type TicketStore interface {
	CreateResetTicket(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ConsumeResetTicket(ctx context.Context, tokenHash string) (string, error)
}

// TokenPair es lo que devuelven login y refresh.
type TokenPair struct {
	Access         string    `json:"access"`
	AccessExpires  time.Time `json:"access_expires"`
	Refresh        string    `json:"refresh"`
	RefreshExpires time.Time `json:"refresh_expires"`
}

type Service struct {
	users   PrincipalStore
	tickets TicketStore
	hasher  *password.Hasher
	policy  password.Policy
	issuer  *jwt.Issuer
	sender  email.Sender
	tpl     *email.Templates
	audit   *audit.Recorder

	baseURL  string
	resetTTL time.Duration

	// EchoResetLinks hace que RequestReset devuelva el link en claro.
	// Load() lo fuerza a false en prod.
	EchoResetLinks bool

	// dummyHash absorbe el tiempo de verificación cuando el usuario no
	// existe, para que el login no filtre existencia por timing.
	dummyHash string
}

type Options struct {
	Users     PrincipalStore
	Tickets   TicketStore
	Hasher    *password.Hasher
	Policy    password.Policy
	Issuer    *jwt.Issuer
	Sender    email.Sender
	Templates *email.Templates
	Audit     *audit.Recorder
	BaseURL   string
	ResetTTL  time.Duration
}

func NewService(o Options) *Service {
	if o.Hasher == nil {
		o.Hasher = password.NewHasher(password.DefaultParams)
	}
	if o.ResetTTL <= 0 {
		o.ResetTTL = time.Hour
	}
	dummy, _ := o.Hasher.Hash("corpsite-dummy-credential")
	return &Service{
		users:     o.Users,
		tickets:   o.Tickets,
		hasher:    o.Hasher,
		policy:    o.Policy,
		issuer:    o.Issuer,
		sender:    o.Sender,
		tpl:       o.Templates,
		audit:     o.Audit,
		baseURL:   strings.TrimRight(o.BaseURL, "/"),
		resetTTL:  o.ResetTTL,
		dummyHash: dummy,
	}
}

// Login verifica credenciales y emite el par de tokens. Cualquier falla de
// credenciales devuelve el mismo error.
func (s *Service) Login(ctx context.Context, username, plain string) (*TokenPair, *store.User, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// verificación fantasma: mismo costo que el camino feliz
			s.hasher.Verify(plain, s.dummyHash)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !s.hasher.Verify(plain, u.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	s.audit.Record(ctx, u.Username, "login", "session", "")
	return pair, u, nil
}

// Refresh valida el refresh token y emite un par nuevo. Relee el usuario
// para que un cambio de rol pegue acá y no recién al próximo login.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *store.User, error) {
	claims, err := s.issuer.Parse(refreshToken, jwt.UseRefresh)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	u, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// Authenticate valida un access token y devuelve el principal vigente.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	claims, err := s.issuer.Parse(accessToken, jwt.UseAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) issuePair(u *store.User) (*TokenPair, error) {
	access, aExp, err := s.issuer.IssueAccess(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, rExp, err := s.issuer.IssueRefresh(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, AccessExpires: aExp, Refresh: refresh, RefreshExpires: rExp}, nil
}

// ValidateNewPassword aplica la política configurada.
func (s *Service) ValidateNewPassword(plain string) error {
	if ok, reasons := s.policy.Validate(plain); !ok {
		return &WeakPasswordError{Reasons: reasons, Policy: s.policy}
	}
	return nil
}

// SetPassword valida contra la política, hashea y persiste. Lo usan el
// confirm de reset y el alta/edición de usuarios.
func (s *Service) SetPassword(ctx context.Context, userID, plain string) error {
	if err := s.ValidateNewPassword(plain); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, userID, hash)
}

// HashPassword valida y hashea sin persistir (para altas).
func (s *Service) HashPassword(plain string) (string, error) {
	if err := s.ValidateNewPassword(plain); err != nil {
		return "", err
	}
	return s.hasher.Hash(plain)
}

// VerifyPassword chequea una contraseña contra el hash guardado.
func (s *Service) VerifyPassword(plain, hash string) bool {
	return s.hasher.Verify(plain, hash)
}
