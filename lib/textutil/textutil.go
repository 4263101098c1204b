package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Digits strips every non-digit rune, producing the canonical form of
// CPF, matrícula and RG values. Applying it twice is a no-op.
func Digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// CleanCell trims a table cell's text and collapses the newlines the
// portal embeds inside label and value cells.
func CleanCell(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.Trim(s, " \t")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// DatePart returns the dd/mm/yyyy portion of a "dd/mm/yyyy hh:mm:ss"
// cell, or the trimmed input when no time portion is present.
func DatePart(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}
