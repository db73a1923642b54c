package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.example.co",
		"  padded@example.org  ",
	}
	for _, s := range valid {
		assert.True(t, IsValidEmail(s), s)
	}

	invalid := []string{
		"",
		"no-at-sign",
		"user@",
		"@example.com",
		"user@example",
		"user @example.com",
	}
	for _, s := range invalid {
		assert.False(t, IsValidEmail(s), s)
	}
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{
		"+1 (555) 123-4567",
		"0712345678",
		"555-1234",
	}
	for _, s := range valid {
		assert.True(t, IsValidPhone(s), s)
	}

	invalid := []string{
		"",
		"12345",
		"call me maybe",
		"+12345678901234567890123",
	}
	for _, s := range invalid {
		assert.False(t, IsValidPhone(s), s)
	}
}

func TestIsValidLength(t *testing.T) {
	assert.True(t, IsValidLength("abc", 1, 3))
	assert.True(t, IsValidLength("  abc  ", 3, 3), "length counts trimmed input")
	assert.False(t, IsValidLength("", 1, 10))
	assert.False(t, IsValidLength("abcd", 1, 3))
}

func TestIsValidLengthCountsRunes(t *testing.T) {
	assert.True(t, IsValidLength("héllo", 5, 5))
	assert.True(t, IsValidLength(strings.Repeat("é", 1500), 1, 2000),
		"multibyte text is bounded by character count, not bytes")
	assert.False(t, IsValidLength(strings.Repeat("é", 2001), 1, 2000))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "safe", SanitizeString(`<script>alert("x")</script>safe`))
	assert.Equal(t, "bold text", SanitizeString("<b>bold</b> text"))
	assert.Equal(t, "alert(1)", SanitizeString("javascript:alert(1)"))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", SanitizeEmail("  User@Example.COM  "))
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, "+1 (555) 123-4567", SanitizePhone("tel:+1 (555) 123-4567"))
	assert.Equal(t, "0712345678", SanitizePhone("  0712345678x"))
}

func TestSanitizeSearchQuery(t *testing.T) {
	assert.Equal(t, "laptop", SanitizeSearchQuery(`laptop<>"';`, 100))
	assert.Equal(t, "ab", SanitizeSearchQuery("abcdef", 2))
	assert.Equal(t, "drop table", SanitizeSearchQuery("drop table;(<>)", 100))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 99))
	assert.Equal(t, 99, Clamp(150, 1, 99))
	assert.Equal(t, 42, Clamp(42, 1, 99))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "héllo", Truncate("héllo!", 5))
	got := Truncate(strings.Repeat("é", 300), 255)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 255, utf8.RuneCountInString(got))
}
