package pagination

import (
	"strconv"
	"strings"
)

// ParseLimit parses the limit query value against the package defaults.
func ParseLimit(raw string) (int, error) {
	return ParseLimitWithin(raw, DefaultLimit, MaxLimit)
}

// ParseLimitWithin parses the limit query value. An empty value yields def;
// values above max are clamped.
func ParseLimitWithin(raw string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidLimit
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}
