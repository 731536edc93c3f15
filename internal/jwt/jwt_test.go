package jwt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) *KeySet {
	t.Helper()
	ks, err := LoadOrCreate(filepath.Join(t.TempDir(), "jwt.key"))
	require.NoError(t, err)
	return ks
}

func TestLoadOrCreate_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.key")

	a, err := LoadOrCreate(path)
	require.NoError(t, err)

	// segunda carga: misma clave, mismo KID
	b, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, a.KID, b.KID)
	require.Equal(t, a.Pub, b.Pub)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrCreate_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.key")
	require.NoError(t, os.WriteFile(path, []byte("no-es-una-seed"), 0o600))

	_, err := LoadOrCreate(path)
	require.Error(t, err)
}

func TestIssueAndParse_Access(t *testing.T) {
	iss := NewIssuer("corpsite", testKeys(t), 15*time.Minute, time.Hour)

	signed, exp, err := iss.IssueAccess("user-1", "juana", "editor")
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := iss.Parse(signed, UseAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "juana", claims.Username)
	require.Equal(t, "editor", claims.Role)
	require.Equal(t, UseAccess, claims.Use)
}

func TestParse_RejectsWrongUse(t *testing.T) {
	iss := NewIssuer("corpsite", testKeys(t), 15*time.Minute, time.Hour)

	refresh, _, err := iss.IssueRefresh("user-1")
	require.NoError(t, err)

	// un refresh no sirve como access ni al revés
	_, err = iss.Parse(refresh, UseAccess)
	require.ErrorIs(t, err, ErrWrongUse)

	access, _, err := iss.IssueAccess("user-1", "juana", "viewer")
	require.NoError(t, err)
	_, err = iss.Parse(access, UseRefresh)
	require.ErrorIs(t, err, ErrWrongUse)
}

func TestParse_RejectsExpired(t *testing.T) {
	// TTL negativa a mano para fabricar un token ya vencido
	iss := &Issuer{Iss: "corpsite", Keys: testKeys(t), AccessTTL: -2 * time.Minute, RefreshTTL: time.Hour}

	signed, _, err := iss.IssueAccess("user-1", "juana", "viewer")
	require.NoError(t, err)

	_, err = iss.Parse(signed, UseAccess)
	require.Error(t, err)
}

func TestParse_RejectsOtherKey(t *testing.T) {
	issuerA := NewIssuer("corpsite", testKeys(t), 15*time.Minute, time.Hour)
	issuerB := NewIssuer("corpsite", testKeys(t), 15*time.Minute, time.Hour)

	signed, _, err := issuerA.IssueAccess("user-1", "juana", "admin")
	require.NoError(t, err)

	_, err = issuerB.Parse(signed, UseAccess)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParse_RejectsWrongIssuer(t *testing.T) {
	ks := testKeys(t)
	a := NewIssuer("corpsite", ks, 15*time.Minute, time.Hour)
	b := NewIssuer("otro-servicio", ks, 15*time.Minute, time.Hour)

	signed, _, err := a.IssueAccess("user-1", "juana", "admin")
	require.NoError(t, err)

	_, err = b.Parse(signed, UseAccess)
	require.ErrorIs(t, err, ErrBadIssuer)
}

func TestParse_RejectsGarbage(t *testing.T) {
	iss := NewIssuer("corpsite", testKeys(t), 15*time.Minute, time.Hour)
	for _, tok := range []string{"", "abc", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := iss.Parse(tok, UseAccess)
		require.Error(t, err, "token %q", tok)
	}
}
