package vm

import (
	"errors"
	"strconv"
	"testing"
)

func TestStore(tt *testing.T) {
	tt.Parallel()

	tt.Run("handle-interns", func(t *testing.T) {
		t.Parallel()

		s := NewStore()

		h1 := s.Handle("x")
		h2 := s.Handle("x")

		if h1 != h2 {
			t.Errorf("handles differ: %v, %v", h1, h2)
		}

		if !h1.Value(s).IsNull() {
			t.Errorf("fresh slot want: null, got: %s", h1.Value(s))
		}

		if h1.Name(s) != "x" {
			t.Errorf("name want: x, got: %s", h1.Name(s))
		}
	})

	tt.Run("handles-never-collide", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		seen := make(map[Handle]string)

		for i := 0; i < 100; i++ {
			name := "v" + strconv.Itoa(i)
			h := s.Handle(name)

			if prev, ok := seen[h]; ok {
				t.Fatalf("handle for %s collides with %s", name, prev)
			}

			seen[h] = name
		}
	})

	tt.Run("handle-stability", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		h := s.Handle("x")

		if err := h.Set(s, Num(7)); err != nil {
			t.Fatal(err)
		}

		// Growing the store must not move the slot out from under the handle.
		for i := 0; i < 1000; i++ {
			s.Handle("filler" + strconv.Itoa(i))
		}

		if !h.Value(s).Equal(Num(7)) {
			t.Errorf("x want: 7, got: %s", h.Value(s))
		}

		if h != mustLookup(t, s, "x") {
			t.Error("lookup returns a different handle")
		}
	})

	tt.Run("constant-rejects-set", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		h := s.Insert("k", NewConstant("k", Num(1)))

		err := h.Set(s, Num(2))

		var constErr *ConstantError
		if !errors.As(err, &constErr) {
			t.Fatalf("err want: ConstantError, got: %v", err)
		}

		if constErr.Error() != "Cannot mutate constant variable 'k'" {
			t.Errorf("message: %q", constErr.Error())
		}

		if !h.Value(s).Equal(Num(1)) {
			t.Errorf("k want: 1, got: %s", h.Value(s))
		}
	})

	tt.Run("force-set-bypasses-constness", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		h := s.Insert("k", NewConstant("k", Null()))

		h.forceSet(s, Num(9))

		if !h.Value(s).Equal(Num(9)) {
			t.Errorf("k want: 9, got: %s", h.Value(s))
		}
	})

	tt.Run("insert-duplicate-panics", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("want panic on duplicate insert")
			}
		}()

		s := NewStore()
		s.Insert("dup", NewVariable("dup", Null()))
		s.Insert("dup", NewVariable("dup", Null()))
	})

	tt.Run("lookup-missing", func(t *testing.T) {
		t.Parallel()

		s := NewStore()

		if _, ok := s.Lookup("ghost"); ok {
			t.Error("want miss for unknown name")
		}
	})
}

func mustLookup(t *testing.T, s *Store, name string) Handle {
	t.Helper()

	h, ok := s.Lookup(name)
	if !ok {
		t.Fatalf("lookup %s: missing", name)
	}

	return h
}
