package vm

import (
	"errors"
	"testing"
)

func TestPrintBuffer(tt *testing.T) {
	tt.Parallel()

	tt.Run("accumulates", func(t *testing.T) {
		t.Parallel()

		var b PrintBuffer

		b.WriteString("ab")
		b.WriteString("cd")

		if got := b.Take(); got != "abcd" {
			t.Errorf("want: abcd, got: %q", got)
		}
	})

	tt.Run("take-resets", func(t *testing.T) {
		t.Parallel()

		var b PrintBuffer

		b.WriteString("once")
		b.Take()

		if got := b.Take(); got != "" {
			t.Errorf("want empty after take, got: %q", got)
		}
	})

	tt.Run("code-units", func(t *testing.T) {
		t.Parallel()

		var b PrintBuffer

		for _, u := range []uint16{'H', 'i', 0x00e9} {
			if err := b.WriteCodeUnit(u); err != nil {
				t.Fatal(err)
			}
		}

		if got := b.Take(); got != "Hié" {
			t.Errorf("want: Hié, got: %q", got)
		}
	})

	tt.Run("lone-surrogate", func(t *testing.T) {
		t.Parallel()

		var b PrintBuffer

		err := b.WriteCodeUnit(0xd83d)

		var charErr *CharacterError
		if !errors.As(err, &charErr) {
			t.Fatalf("want: CharacterError, got: %v", err)
		}

		if charErr.Error() != "Invalid UTF-16 character: 55357" {
			t.Errorf("message: %q", charErr.Error())
		}

		if got := b.Take(); got != "" {
			t.Errorf("failed write must not append, got: %q", got)
		}
	})

	tt.Run("format-unimplemented", func(t *testing.T) {
		t.Parallel()

		var b PrintBuffer

		err := b.Format("{0}")

		var fmtErr *FormatError
		if !errors.As(err, &fmtErr) {
			t.Fatalf("want: FormatError, got: %v", err)
		}

		if fmtErr.Error() != "Invalid format - not implemented" {
			t.Errorf("message: %q", fmtErr.Error())
		}
	})
}
