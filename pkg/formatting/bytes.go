// Package formatting parses loosely formatted values: byte sizes from
// configuration and JSON from language model output.
package formatting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidSize is returned for byte sizes that cannot be parsed.
var ErrInvalidSize = errors.New("invalid byte size")

// Sizes use base 1024; "MB", "MiB", and "M" are equivalent.
var multipliers = map[string]int64{
	"":  1,
	"B": 1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
}

// ParseBytes parses a size such as "10MB", "512 KiB", or "1024" into bytes.
// Units are case-insensitive and a bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidSize)
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	mult, ok := multipliers[normalizeUnit(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidSize, unit)
	}

	return int64(value * float64(mult)), nil
}

func normalizeUnit(unit string) string {
	u := strings.ToUpper(unit)
	if u == "B" {
		return u
	}
	u = strings.TrimSuffix(u, "B")
	return strings.TrimSuffix(u, "I")
}
