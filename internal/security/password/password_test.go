package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})

	phc, err := h.Hash("Secreta123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(phc, "$argon2id$v=19$"))

	require.True(t, h.Verify("Secreta123", phc))
	require.False(t, h.Verify("secreta123", phc))
	require.False(t, h.Verify("", phc))
}

func TestHash_EmptyPassword(t *testing.T) {
	h := NewHasher(DefaultParams)
	_, err := h.Hash("")
	require.Error(t, err)
}

func TestHash_SaltedDistinct(t *testing.T) {
	h := NewHasher(Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	a, err := h.Hash("mismaclave")
	require.NoError(t, err)
	b, err := h.Hash("mismaclave")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.True(t, h.Verify("mismaclave", a))
	require.True(t, h.Verify("mismaclave", b))
}

func TestVerify_GarbagePHC(t *testing.T) {
	h := NewHasher(DefaultParams)
	require.False(t, h.Verify("x", ""))
	require.False(t, h.Verify("x", "$argon2id$basura"))
	require.False(t, h.Verify("x", "$argon2i$v=19$m=65536,t=3,p=1$abc$def"))
	require.False(t, h.Verify("x", "$argon2id$v=18$m=65536,t=3,p=1$abc$def"))
	require.False(t, h.Verify("x", "$argon2id$v=19$m=65536,t=3$abc$def"))
	require.False(t, h.Verify("x", "$argon2id$v=19$m=65536,t=3,p=1$abc$def$extra"))
}

// El parseo tiene que separar en '$': la salt y la clave derivada son campos
// propios, no una cola pegada al anterior.
func TestVerify_ParsesPHCFields(t *testing.T) {
	h := NewHasher(Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})

	phc, err := h.Hash("Secreta123")
	require.NoError(t, err)

	parts := strings.Split(phc, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])

	// misma clave con la salt de otro hash no puede verificar
	other, err := h.Hash("Secreta123")
	require.NoError(t, err)
	otherParts := strings.Split(other, "$")
	mixed := strings.Join([]string{parts[0], parts[1], parts[2], parts[3], otherParts[4], parts[5]}, "$")
	require.False(t, h.Verify("Secreta123", mixed))
	require.True(t, h.Verify("Secreta123", phc))
}

// Los hashes viejos con otros costos siguen verificando: los parámetros
// salen del PHC, no del Hasher.
func TestVerify_OldParams(t *testing.T) {
	old := NewHasher(Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	phc, err := old.Hash("clavevieja")
	require.NoError(t, err)

	current := NewHasher(DefaultParams)
	require.True(t, current.Verify("clavevieja", phc))
}

func TestPolicy_Validate(t *testing.T) {
	p := Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true}

	ok, reasons := p.Validate("Passw0rd")
	require.True(t, ok)
	require.Empty(t, reasons)

	ok, reasons = p.Validate("corta1A")
	require.False(t, ok)
	require.Contains(t, reasons, "too_short")

	ok, reasons = p.Validate("sinmayuscula1")
	require.False(t, ok)
	require.Contains(t, reasons, "missing_upper")

	ok, reasons = p.Validate("SINMINUSCULA1")
	require.False(t, ok)
	require.Contains(t, reasons, "missing_lower")

	ok, reasons = p.Validate("SinDigitos")
	require.False(t, ok)
	require.Contains(t, reasons, "missing_digit")
}

func TestPolicy_Symbol(t *testing.T) {
	p := Policy{MinLength: 4, RequireSymbol: true}

	ok, _ := p.Validate("abc1")
	require.False(t, ok)

	ok, _ = p.Validate("ab!1")
	require.True(t, ok)
}

func TestPolicy_MinLengthRunes(t *testing.T) {
	// la longitud se mide en runas, no en bytes
	p := Policy{MinLength: 4}
	ok, _ := p.Validate("ñandú")
	require.True(t, ok)
}

func TestPolicy_Describe(t *testing.T) {
	p := Policy{}
	msg := p.Describe([]string{"too_short", "missing_digit"})
	require.Contains(t, msg, "muy corta")
	require.Contains(t, msg, "falta un dígito")
}
