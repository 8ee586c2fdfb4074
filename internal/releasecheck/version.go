package releasecheck

import (
	"fmt"
	"strconv"
	"strings"
)

// CleanVersion drops every character that is not a digit or a dot, so
// "v1.0.3" becomes "1.0.3".
func CleanVersion(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsNewer reports whether latestTag names a newer version than current.
// Parts are compared numerically left to right; when all shared parts are
// equal the version with more parts is newer.
func IsNewer(current, latestTag string) (bool, error) {
	parts, err := parseParts(current)
	if err != nil {
		return false, fmt.Errorf("current version: %w", err)
	}
	latest, err := parseParts(CleanVersion(latestTag))
	if err != nil {
		return false, fmt.Errorf("latest version %q: %w", latestTag, err)
	}

	for i := 0; i < min(len(parts), len(latest)); i++ {
		switch {
		case parts[i] < latest[i]:
			return true, nil
		case parts[i] > latest[i]:
			return false, nil
		}
	}
	return len(parts) < len(latest), nil
}

// parseParts splits v on dots. Trailing empty fields are dropped, so "1.1."
// parses as 1.1.
func parseParts(v string) ([]int, error) {
	fields := strings.Split(v, ".")
	if v != "" {
		for len(fields) > 0 && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid version part %q in %q", f, v)
		}
		out[i] = n
	}
	return out, nil
}
