package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/milovm/milo/internal/cli/cmd"
	"github.com/milovm/milo/internal/log"
)

func TestHelpListsCommands(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	help := cmd.Help(commands)
	if err := help.Usage(&out); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"run", "demo", "help"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("usage does not mention %q:\n%s", name, out.String())
		}
	}
}

func TestDemoCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	demo := cmd.Demo()
	if err := demo.FlagSet().Parse(nil); err != nil {
		t.Fatal(err)
	}

	logger := log.NewFormattedLogger(&out)

	if code := demo.Run(context.Background(), nil, &out, logger); code != 0 {
		t.Fatalf("exit code: %d\n%s", code, out.String())
	}

	// Sum of squares of 0..9.
	if !strings.Contains(out.String(), "sum of squares: 285") {
		t.Errorf("unexpected demo output:\n%s", out.String())
	}
}
