package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/milovm/milo/internal/cli"
	"github.com/milovm/milo/internal/encoding"
	"github.com/milovm/milo/internal/log"
)

// Demo returns a command that runs a built-in sample program.
func Demo() cli.Command {
	return &demo{}
}

type demo struct {
	debug bool
}

// demoProgram stores the squares of 0..9 in a memory cell and reports their sum on a message
// display.
const demoProgram = `set i 0
set total 0
op mul sq i i
write sq cell1 i
op add total total sq
op add i i 1
jump 2 lessThan i 10
print "sum of squares: "
print total
printflush m1
stop`

func (demo) Description() string {
	return "run a demonstration program"
}

func (demo) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `demo [ -debug ]

Runs a built-in sample program against a message display and a memory
cell, then prints their final contents.`)

	return err
}

func (d *demo) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	fs.BoolVar(&d.debug, "debug", false, "enable debug logging")

	return fs
}

func (d *demo) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	if d.debug {
		log.LogLevel.Set(log.Debug)
	}

	limit := 1000
	opts := encoding.Options{
		Code:             demoProgram,
		InstructionLimit: &limit,
		EndOnWrap:        true,
		Devices: []encoding.DeviceDecl{
			{Name: "m1", Spec: encoding.DeviceSpec{Kind: encoding.Message}},
			{Name: "cell1", Spec: encoding.DeviceSpec{Kind: encoding.Memory, Capacity: 10}},
		},
	}

	fmt.Fprintln(out, demoProgram)
	fmt.Fprintln(out)

	result := encoding.Run(ctx, opts, logger)
	printResult(out, result)

	if result.Failure != nil {
		return 2
	}

	return 0
}
