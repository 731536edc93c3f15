package password

import (
	"strings"
	"unicode"
)

// Policy define los requisitos mínimos de una contraseña nueva. Se arma una
// vez desde la config y no cambia en runtime.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// Validate devuelve las razones de rechazo; vacío significa que pasa.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	return len(reasons) == 0, reasons
}

// Describe arma un texto apto para el mensaje de error de la API.
func (p Policy) Describe(reasons []string) string {
	msgs := make([]string, 0, len(reasons))
	for _, r := range reasons {
		switch r {
		case "too_short":
			msgs = append(msgs, "muy corta")
		case "missing_upper":
			msgs = append(msgs, "falta una mayúscula")
		case "missing_lower":
			msgs = append(msgs, "falta una minúscula")
		case "missing_digit":
			msgs = append(msgs, "falta un dígito")
		case "missing_symbol":
			msgs = append(msgs, "falta un símbolo")
		}
	}
	return strings.Join(msgs, ", ")
}
