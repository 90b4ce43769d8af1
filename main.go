// milo is a command-line interpreter for Mindustry logic (MLOG) programs.
package main

import (
	"context"
	"os"

	"github.com/milovm/milo/internal/cli"
	"github.com/milovm/milo/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Run(),
	cmd.Demo(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger().
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
