package roomcode

import (
	"fmt"
	"strings"
)

// Crockford-style alphabet without I, L, O and U so codes survive being read
// aloud or typed from a phone screen.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	// DefaultLength is the code length used when none is configured.
	DefaultLength = 5

	MinLength = 4
	MaxLength = 10
)

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes of a fixed length.
type Generator struct {
	randSource RandSource
	length     int
}

// NewGenerator creates a generator. Lengths outside [MinLength, MaxLength]
// fall back to DefaultLength.
func NewGenerator(randSource RandSource, length int) *Generator {
	if length < MinLength || length > MaxLength {
		length = DefaultLength
	}
	return &Generator{randSource: randSource, length: length}
}

// Length returns the number of characters in generated codes.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new random code. Uniqueness among live rooms is the
// caller's concern.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(alphabet[g.randSource.IntN(len(alphabet))])
	}
	return b.String()
}

// Normalize upper-cases a user supplied code and trims whitespace.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that code is a plausible room code.
func Validate(code string) error {
	if len(code) < MinLength || len(code) > MaxLength {
		return fmt.Errorf("room code must be %d-%d characters, got %d", MinLength, MaxLength, len(code))
	}

	for i, char := range code {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
