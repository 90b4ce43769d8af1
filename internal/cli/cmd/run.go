package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/milovm/milo/internal/cli"
	"github.com/milovm/milo/internal/encoding"
	"github.com/milovm/milo/internal/log"
)

// Run returns the command that executes a program.
func Run() cli.Command {
	return &runner{}
}

type runner struct {
	logLevel slog.Level

	request   string
	manifest  string
	limit     int
	codeLimit int
	wrap      bool
	jsonOut   bool
}

func (runner) Description() string {
	return "execute a logic program"
}

func (runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [ -request envelope.json | [options] program.mlog ]

Executes a logic program and reports the final device contents.

With -request, a full JSON run request is read from the given file ('-'
for stdin) and the JSON result is written to stdout. Otherwise the
program text is read from the named file ('-' for stdin) and the run is
assembled from the options:

  -devices manifest.yaml   devices to link, in order
  -limit n                 cycle budget (0 = unbounded)
  -code-limit n            program length limit
  -wrap                    end the run when the counter wraps
  -json                    write the JSON result even on a terminal`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	fs.StringVar(&r.request, "request", "", "read a JSON run request from `file`")
	fs.StringVar(&r.manifest, "devices", "", "read device manifest from `file`")
	fs.IntVar(&r.limit, "limit", 0, "cycle budget, 0 for unbounded")
	fs.IntVar(&r.codeLimit, "code-limit", 0, "program length limit, 0 for the default")
	fs.BoolVar(&r.wrap, "wrap", false, "end the run when the program counter wraps")
	fs.BoolVar(&r.jsonOut, "json", false, "write the JSON result even on a terminal")
	fs.Func("loglevel", "set log `level`", func(s string) error {
		return r.logLevel.UnmarshalText([]byte(s))
	})

	return fs
}

func (r *runner) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	log.LogLevel.Set(r.logLevel)

	opts, err := r.options(args)
	if err != nil {
		logger.Error("bad run request", "err", err)
		return 1
	}

	result := encoding.Run(ctx, opts, logger)

	if r.jsonOut || r.request != "" || !cli.Interactive(os.Stdout) {
		if err := encoding.WriteOutput(out, result); err != nil {
			logger.Error("write result", "err", err)
			return 1
		}
	} else {
		printResult(out, result)
	}

	if result.Failure != nil {
		return 2
	}

	return 0
}

// options assembles the run request, either from a full envelope or from flags plus a program
// file.
func (r *runner) options(args []string) (encoding.Options, error) {
	if r.request != "" {
		in, err := open(r.request)
		if err != nil {
			return encoding.Options{}, err
		}
		defer in.Close()

		return encoding.ReadOptions(in)
	}

	if len(args) != 1 {
		return encoding.Options{}, fmt.Errorf("expected one program file, got %d arguments", len(args))
	}

	code, err := readAll(args[0])
	if err != nil {
		return encoding.Options{}, err
	}

	opts := encoding.Options{
		Code:      code,
		EndOnWrap: r.wrap,
	}

	if r.limit > 0 {
		opts.InstructionLimit = &r.limit
	}

	if r.codeLimit > 0 {
		opts.CodeLenLimit = &r.codeLimit
	}

	if r.manifest != "" {
		manifest, err := encoding.LoadManifest(r.manifest)
		if err != nil {
			return encoding.Options{}, err
		}

		opts.Devices = manifest.Decls()
	}

	return opts, nil
}

func open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}

func readAll(path string) (string, error) {
	in, err := open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// printResult renders a result for a person at a terminal.
func printResult(out io.Writer, result encoding.Output) {
	if f := result.Failure; f != nil {
		fmt.Fprintln(out, f.Msg)
		return
	}

	s := result.Success
	fmt.Fprintln(out, "finished:", s.FinishReason)

	names := make([]string, 0, len(s.Devices))
	for name := range s.Devices {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		state := s.Devices[name]

		switch {
		case state.Message != nil:
			fmt.Fprintf(out, "%s: %q\n", name, *state.Message)
		case state.Memory != nil:
			cells := make([]string, len(state.Memory))
			for i, n := range state.Memory {
				cells[i] = fmt.Sprintf("%v", n)
			}

			fmt.Fprintf(out, "%s: [%s]\n", name, strings.Join(cells, " "))
		}
	}

	if s.PrintBuffer != "" {
		fmt.Fprintf(out, "print buffer: %q\n", s.PrintBuffer)
	}
}
