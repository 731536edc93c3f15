package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// KeySet mantiene una sola clave Ed25519 activa. Alcanza para un backend
// single-node; rotación queda para cuando haga falta.
type KeySet struct {
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
	KID  string
}

// LoadOrCreate lee la seed (32 bytes base64url) del archivo dado, o genera
// una nueva y la persiste con 0600 si el archivo no existe.
func LoadOrCreate(path string) (*KeySet, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		seed, derr := base64.RawURLEncoding.DecodeString(string(trimNL(b)))
		if derr != nil || len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("jwt: key file %s corrupto", path)
		}
		return fromSeed(seed), nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	enc := base64.RawURLEncoding.EncodeToString(seed)
	if err := os.WriteFile(path, []byte(enc+"\n"), 0o600); err != nil {
		return nil, err
	}
	return fromSeed(seed), nil
}

func fromSeed(seed []byte) *KeySet {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	// KID derivado de la pública: estable entre arranques.
	sum := sha256.Sum256(pub)
	return &KeySet{
		Priv: priv,
		Pub:  pub,
		KID:  base64.RawURLEncoding.EncodeToString(sum[:8]),
	}
}

func trimNL(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r' || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	return b
}
