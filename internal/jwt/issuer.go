package jwt

import (
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Issuer firma los tokens de sesión con la clave activa. Los tokens son
// stateless: no hay lista de revocación, sólo expiran.
type Issuer struct {
	Iss        string
	Keys       *KeySet
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewIssuer(iss string, ks *KeySet, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &Issuer{Iss: iss, Keys: ks, AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

// IssueAccess emite el token corto que viaja en Authorization. Lleva el rol
// para que el middleware no tenga que tocar la DB en cada request.
func (i *Issuer) IssueAccess(sub, username, role string) (string, time.Time, error) {
	return i.issue(sub, UseAccess, i.AccessTTL, map[string]any{
		"username": username,
		"role":     role,
	})
}

// IssueRefresh emite el token largo; sólo sirve en /api/auth/refresh.
func (i *Issuer) IssueRefresh(sub string) (string, time.Time, error) {
	return i.issue(sub, UseRefresh, i.RefreshTTL, nil)
}

func (i *Issuer) issue(sub, use string, ttl time.Duration, extra map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{
		"iss":       i.Iss,
		"sub":       sub,
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"exp":       exp.Unix(),
		"token_use": use,
	}
	for k, v := range extra {
		claims[k] = v
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.Keys.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Keys.Priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Keyfunc valida firma contra la clave activa.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		return i.Keys.Pub, nil
	}
}
