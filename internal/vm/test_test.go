package vm

// test_test.go has the shared test harness. Machine logs are routed into the test log so a
// failing test shows the trace that led up to it.

import (
	"testing"

	"github.com/milovm/milo/internal/log"
)

func NewTestHarness(t *testing.T) *testHarness {
	t.Parallel()

	return &testHarness{T: t}
}

type testHarness struct {
	*testing.T
}

// Make builds a machine for source, failing the test on a construction error.
func (t *testHarness) Make(source string, opts ...OptionFn) *Machine {
	t.T.Helper()

	opts = append(opts, WithLogger(t.Logger()))

	m, err := New(source, opts...)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}

	return m
}

// Logger returns a logger that writes into the test log.
func (t *testHarness) Logger() *log.Logger {
	return log.NewFormattedLogger(t)
}

func (t *testHarness) Write(b []byte) (int, error) {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		t.Log(string(b[:n-1]))
	} else {
		t.Log(string(b))
	}

	return len(b), nil
}

func (t *testHarness) Log(args ...any) {
	t.T.Helper()
	t.T.Log(args...)
}
