package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Generate genera un token opaco aleatorio (base64url sin padding).
// Es lo que viaja en el mail de reset; en DB sólo se guarda el hash.
func Generate(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash devuelve sha256(input) en base64url sin padding.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
