package vm

// lazystr.go defines the string payload with its lazily materialised UTF-16 view.

import "unicode/utf16"

// CodeUnitString is a string paired with a memoised view of its UTF-16 code units. The view is
// computed on the first indexed read and cached; repeated reads share the same slice. The machine
// is single-threaded, so the memo needs no synchronisation.
type CodeUnitString struct {
	text  string
	units []uint16
}

// NewCodeUnitString wraps text without transcoding it.
func NewCodeUnitString(text string) *CodeUnitString {
	return &CodeUnitString{text: text}
}

// String returns the source text.
func (s *CodeUnitString) String() string { return s.text }

// CodeUnits returns the UTF-16 encoding of the text, materialising it on first call.
func (s *CodeUnitString) CodeUnits() []uint16 {
	if s.units == nil {
		s.units = utf16.Encode([]rune(s.text))
	}

	return s.units
}

// Len returns the length of the text in UTF-16 code units.
func (s *CodeUnitString) Len() int {
	return len(s.CodeUnits())
}
