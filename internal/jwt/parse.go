package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalid    = errors.New("invalid_jwt")
	ErrExpired    = errors.New("expired")
	ErrWrongUse   = errors.New("wrong_token_use")
	ErrBadIssuer  = errors.New("invalid_issuer")
	ErrNotYet     = errors.New("not_before")
	ErrClaimsType = errors.New("claims_type")
)

// Claims son las claims que nos importan, ya tipadas.
type Claims struct {
	Subject  string
	Username string
	Role     string
	Use      string
	Expires  time.Time
}

// Parse valida firma EdDSA, iss, exp/nbf (con 30s de tolerancia de reloj) y
// que token_use sea el esperado. Un refresh nunca pasa por el middleware de
// auth, y un access nunca sirve para refrescar.
func (i *Issuer) Parse(token, expectedUse string) (*Claims, error) {
	tok, err := jwtv5.Parse(token, i.Keyfunc(), jwtv5.WithValidMethods([]string{"EdDSA"}))
	if err != nil || !tok.Valid {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrClaimsType
	}

	if iss, _ := mc["iss"].(string); i.Iss != "" && iss != i.Iss {
		return nil, ErrBadIssuer
	}

	now := time.Now()
	var exp time.Time
	if f, ok := mc["exp"].(float64); ok {
		exp = time.Unix(int64(f), 0)
		if exp.Before(now.Add(-30 * time.Second)) {
			return nil, ErrExpired
		}
	}
	if f, ok := mc["nbf"].(float64); ok {
		if time.Unix(int64(f), 0).After(now.Add(30 * time.Second)) {
			return nil, ErrNotYet
		}
	}

	use, _ := mc["token_use"].(string)
	if expectedUse != "" && use != expectedUse {
		return nil, ErrWrongUse
	}

	sub, _ := mc["sub"].(string)
	username, _ := mc["username"].(string)
	role, _ := mc["role"].(string)
	return &Claims{Subject: sub, Username: username, Role: role, Use: use, Expires: exp}, nil
}
