package password

import (
	"strings"
	"unicode"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

// Policy describe los requisitos mínimos de una password nueva.
type Policy struct {
	MinLength     int  `yaml:"min_length"`
	RequireUpper  bool `yaml:"require_upper"`
	RequireLower  bool `yaml:"require_lower"`
	RequireDigit  bool `yaml:"require_digit"`
	RequireSymbol bool `yaml:"require_symbol"`
}

// Default: 8 caracteres con mayúscula, minúscula y dígito.
func Default() Policy {
	return Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true}
}

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

// Check es Validate en forma de error de validación del dominio.
func (p Policy) Check(s string) error {
	if ok, reasons := p.Validate(s); !ok {
		return domain.Validation("password does not meet policy: %s", strings.Join(reasons, ","))
	}
	return nil
}
