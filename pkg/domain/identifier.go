package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "scriptorium/pkg/domain-errors"
)

const (
	// MinIDLength is the shortest accepted identifier, in characters.
	MinIDLength = 4
	// MaxIDLength caps identifiers so they stay usable as storage keys.
	MaxIDLength = 128
)

// Identifier is satisfied by every typed aggregate identifier.
type Identifier interface {
	~string
}

// ParseID validates raw and converts it to the identifier type I.
//
// Invariant: the value is valid UTF-8, between MinIDLength and MaxIDLength
// characters and free of whitespace and control characters.
//
// Errors: returns CodeValidation on any violation; no other errors are expected.
func ParseID[I Identifier](raw string) (I, error) {
	if raw == "" {
		return "", dErrors.New(dErrors.CodeValidation, "identifier cannot be empty")
	}
	if !utf8.ValidString(raw) {
		return "", dErrors.New(dErrors.CodeValidation, "identifier must be valid UTF-8")
	}
	n := utf8.RuneCountInString(raw)
	if n < MinIDLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "identifier must be at least %d characters", MinIDLength)
	}
	if n > MaxIDLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "identifier must be at most %d characters", MaxIDLength)
	}
	if strings.IndexFunc(raw, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return "", dErrors.New(dErrors.CodeValidation, "identifier cannot contain whitespace or control characters")
	}
	return I(raw), nil
}

// ValidID reports whether raw would be accepted by ParseID.
func ValidID[I Identifier](id I) bool {
	_, err := ParseID[I](string(id))
	return err == nil
}

// NewID returns a fresh time-ordered identifier.
func NewID[I Identifier]() I {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return I(u.String())
}
