package vm

// printbuf.go defines the accumulating print buffer drained by printflush.

import (
	"strings"
	"unicode/utf16"
)

// PrintBuffer accumulates text written by print instructions until a printflush takes it.
type PrintBuffer struct {
	text strings.Builder
}

// WriteString appends text.
func (b *PrintBuffer) WriteString(text string) {
	b.text.WriteString(text)
}

// WriteCodeUnit appends a single UTF-16 code unit. A surrogate cannot be decoded standalone and
// fails with a CharacterError.
func (b *PrintBuffer) WriteCodeUnit(u uint16) error {
	if utf16.IsSurrogate(rune(u)) {
		return &CharacterError{CodeUnit: u}
	}

	b.text.WriteRune(rune(u))

	return nil
}

// Format is reserved: the format instruction is recognised but not implemented.
func (b *PrintBuffer) Format(text string) error {
	return &FormatError{Msg: "not implemented"}
}

// Take returns the buffered text and resets the buffer to empty.
func (b *PrintBuffer) Take() string {
	text := b.text.String()
	b.text.Reset()

	return text
}

// Len returns the number of buffered bytes.
func (b *PrintBuffer) Len() int { return b.text.Len() }
