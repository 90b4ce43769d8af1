package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/milovm/milo/internal/cli"
	"github.com/milovm/milo/internal/log"
)

// Help returns the help command for a command list.
func Help(commands []cli.Command) cli.Command {
	return &help{cmd: commands}
}

type help struct {
	cmd []cli.Command
}

var _ cli.Command = (*help)(nil)

func (help) Description() string {
	return "display help for commands"
}

func (h help) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h help) Run(_ context.Context, args []string, out io.Writer, _ *log.Logger) int {
	if len(args) == 1 {
		for _, cmd := range h.cmd {
			if args[0] == cmd.FlagSet().Name() {
				h.printCommandHelp(out, cmd)
				return 0
			}
		}
	}

	if err := h.Usage(out); err != nil {
		return 1
	}

	return 0
}

func (h *help) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
MILO is an interpreter for Mindustry logic (MLOG) programs.

Usage:

        milo <command> [option]... [arg]...

Commands:`)
	if err != nil {
		return err
	}

	for _, cmd := range h.cmd {
		fmt.Fprintf(out, "  %-20s %s\n", cmd.FlagSet().Name(), cmd.Description())
	}

	fmt.Fprintf(out, "  %-20s %s\n", h.FlagSet().Name(), h.Description())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use `milo help <command>` to get help for a command.")

	return err
}

func (h *help) printCommandHelp(out io.Writer, cmd cli.Command) {
	if err := cmd.Usage(out); err != nil {
		return
	}

	fs := cmd.FlagSet()
	fs.SetOutput(out)
	fs.PrintDefaults()
}
