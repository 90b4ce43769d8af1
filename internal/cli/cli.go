// Package cli contains the command-line interface.
package cli

import (
	"context"
	"flag"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/milovm/milo/internal/log"
)

// Command is one sub-command. Each carries its own flags and action.
type Command interface {
	// FlagSet returns the command's name and options.
	FlagSet() *flag.FlagSet

	// Description returns a one-line summary for command listings.
	Description() string

	// Usage prints detailed command documentation.
	Usage(out io.Writer) error

	// Run executes the command. Program output goes to out; diagnostics go to the logger. The
	// return value is the process exit code.
	Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int
}

// Commander dispatches the process arguments to a sub-command.
type Commander struct {
	ctx context.Context
	log *log.Logger

	help     Command
	commands []Command
}

// New creates a Commander.
func New(ctx context.Context) *Commander {
	return &Commander{ctx: ctx}
}

// Execute finds the named sub-command, parses its flags and runs it. With no arguments, or an
// unknown name, the help command runs instead.
func (cli *Commander) Execute(args []string) int {
	if len(args) == 0 {
		cli.help.Run(cli.ctx, nil, os.Stdout, cli.log)
		return 1
	}

	found := cli.help

	for _, cmd := range cli.commands {
		if args[0] == cmd.FlagSet().Name() {
			found = cmd
			break
		}
	}

	fs := found.FlagSet()
	if err := fs.Parse(args[1:]); err != nil {
		cli.log.Error("parse error", "err", err)
		return 1
	}

	return found.Run(cli.ctx, fs.Args(), os.Stdout, cli.log)
}

// WithCommands sets the sub-commands.
func (cli *Commander) WithCommands(cmds []Command) *Commander {
	cli.commands = append([]Command(nil), cmds...)
	return cli
}

// WithHelp sets the fallback help command.
func (cli *Commander) WithHelp(cmd Command) *Commander {
	cli.help = cmd
	return cli
}

// WithLogger configures logging. Logs go to os.Stderr, leaving os.Stdout for program output.
func (cli *Commander) WithLogger() *Commander {
	logger := log.NewFormattedLogger(os.Stderr)
	cli.log = logger

	log.SetDefault(logger)

	return cli
}

// Interactive reports whether f is attached to a terminal. Commands use it to pick a
// human-readable rendering over the machine envelope.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Type aliases from the standard library.
type (
	Flag    = flag.Flag
	FlagSet = flag.FlagSet
)
