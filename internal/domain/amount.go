package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmountToCents converts "12.34" or "12,34" into 1234. Anything after the
// second decimal is rounded half-up. Zero and negative amounts are rejected.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (1<<63-1)/100-1 {
		return 0, fmt.Errorf("%w: amount out of range %q", ErrValidation, s)
	}

	var cents int64
	for i := 0; i < 2 && i < len(frac); i++ {
		cents = cents*10 + int64(frac[i]-'0')
	}
	if len(frac) == 1 {
		cents *= 10
	}
	if len(frac) > 2 && frac[2] >= '5' {
		cents++
	}

	total := units*100 + cents
	if total <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return total, nil
}

// FormatCents renders minor units with two decimals, e.g. -1050 -> "-10.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
