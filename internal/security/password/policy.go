// Package password valida los app passwords nuevos antes de guardarlos.
package password

import (
	"strings"
	"unicode"
)

// Policy define los requisitos para un app password nuevo.
// Los app passwords suelen ser PINs asignados por RRHH, por eso el default es laxo.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
	// Blacklist opcional de passwords prohibidos (comparación case-insensitive).
	Blacklist *Blacklist
}

// Validate devuelve ok=false y los motivos si s no cumple la política.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if strings.TrimSpace(s) == "" {
		return false, []string{"empty"}
	}
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
	if p.Blacklist.Contains(s) {
		reasons = append(reasons, "blacklisted")
	}
	return len(reasons) == 0, reasons
}
