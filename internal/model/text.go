package model

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLen       = 256
	MaxDescriptionLen = 1024
)

// forbidden reports whether r is a control character other than tab, line
// feed or carriage return.
func forbidden(r rune) bool {
	return r <= 0x08 || r == 0x0B || r == 0x0C || (r >= 0x0E && r <= 0x1F) || r == 0x7F
}

// hasForbidden also rejects invalid UTF-8, which would not survive storage
// unchanged.
func hasForbidden(s string) bool {
	return !utf8.ValidString(s) || strings.IndexFunc(s, forbidden) >= 0
}

// checkTitle validates a title and returns it trimmed. Lengths are in bytes.
func checkTitle(entity, title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return title, fieldErr(entity, "title", ReasonEmpty, nil)
	}
	if len(title) > MaxTitleLen {
		return title, fieldErr(entity, "title", ReasonTooLong, len(title))
	}
	if hasForbidden(title) {
		return title, fieldErr(entity, "title", ReasonInvalidCharacters, nil)
	}
	return trimmed, nil
}

func checkDescription(entity, desc string) (string, error) {
	if len(desc) > MaxDescriptionLen {
		return desc, fieldErr(entity, "description", ReasonTooLong, len(desc))
	}
	if hasForbidden(desc) {
		return desc, fieldErr(entity, "description", ReasonInvalidCharacters, nil)
	}
	return strings.TrimSpace(desc), nil
}
