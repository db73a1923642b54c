// Package validate holds the input predicates and sanitizers shared by the
// domain clients and the cart store.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe  = regexp.MustCompile(`^[+]?[0-9\-\s()]{7,20}$`)
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	jsRe     = regexp.MustCompile(`(?i)javascript:`)
	queryRe  = regexp.MustCompile(`[<>"';()&+]`)
	phoneCh  = regexp.MustCompile(`[^0-9+\-()\s]`)
)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// IsValidPhone accepts international phone formats (digits, +, -, spaces,
// parentheses; 7 to 20 characters).
func IsValidPhone(s string) bool {
	return phoneRe.MatchString(strings.TrimSpace(s))
}

// IsValidLength reports whether the trimmed length of s, counted in runes,
// is within [min, max].
func IsValidLength(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}

// SanitizeString trims s and strips script blocks, markup tags and
// javascript: URIs.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = scriptRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	s = jsRe.ReplaceAllString(s, "")
	return s
}

// SanitizeEmail lowercases and trims an email address.
func SanitizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizePhone keeps only characters meaningful in a phone number.
func SanitizePhone(s string) string {
	return phoneCh.ReplaceAllString(strings.TrimSpace(s), "")
}

// SanitizeSearchQuery strips characters with query-injection potential and
// bounds the length.
func SanitizeSearchQuery(q string, maxLen int) string {
	q = queryRe.ReplaceAllString(strings.TrimSpace(q), "")
	if maxLen > 0 && len(q) > maxLen {
		q = q[:maxLen]
	}
	return q
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Truncate cuts s to at most n runes, never splitting a multibyte rune.
func Truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
