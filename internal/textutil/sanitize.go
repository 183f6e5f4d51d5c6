package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe to embed in a path component. Separators
// and wildcards turn into dashes; quoting and redirection characters are
// dropped.
func SanitizeFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*':
			return '-'
		case '?', '"', '<', '>', '|':
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(mapped)
}

// SanitizeToken lowercases value and replaces anything other than ASCII
// letters, digits, '-' and '_' with '_'. Empty results become "unknown".
func SanitizeToken(value string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		}
		return '_'
	}, strings.TrimSpace(value))
	if out := strings.Trim(mapped, "_-"); out != "" {
		return out
	}
	return "unknown"
}
