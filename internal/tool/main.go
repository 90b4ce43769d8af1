// Package tool holds small scripts for development tasks: installing tool dependencies, running
// go generate and linting. They replace rote commands, nothing more.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	path "path/filepath"
	"time"
)

var usage = `go run ./internal/tool <COMMAND>

Commands:

- deps   installs development dependencies: stringer, golint
- gen    runs go generate over the module
- lint   runs go vet and golint
`

func main() {
	if err := projectWorkingDirectory(); err != nil {
		log.Fatal(err)
	}

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(2)
	}

	var err error

	switch os.Args[1] {
	case "deps":
		err = installDeps()
	case "gen":
		err = run("go", "generate", "./...")
	case "lint":
		if err = run("go", "vet", "./..."); err == nil {
			err = run("golint", "./...")
		}
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

// projectWorkingDirectory finds the module root and changes the working directory to it. The root
// is the working directory or its nearest ancestor with a go.mod file; refusing to settle on a
// filesystem root prevents inadvertent catastrophes.
func projectWorkingDirectory() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	for {
		file := path.Join(dir, "go.mod")

		if _, err := os.Stat(file); err == nil {
			break
		} else if os.IsNotExist(err) {
			dir = path.Dir(dir)
		} else {
			return err
		}

		if dir == path.Dir(dir) {
			return errors.New("project directory is root directory")
		}
	}

	return os.Chdir(dir)
}

func installDeps() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	goCmd, err := exec.LookPath("go")
	if err != nil {
		return fmt.Errorf("go (required): %w", err)
	}

	println("go (required):", goCmd)

	for _, tool := range []struct{ name, pkg string }{
		{"stringer", "golang.org/x/tools/cmd/stringer@latest"},
		{"golint", "golang.org/x/lint/golint@latest"},
	} {
		if found, err := exec.LookPath(tool.name); err == nil {
			println(tool.name+":", found)
			continue
		}

		println("installing", tool.name)

		install := exec.CommandContext(ctx, goCmd, "install", "-v", tool.pkg)

		out, err := install.CombinedOutput()
		println(string(out))

		if err != nil {
			return fmt.Errorf("go install %s: %w", tool.name, err)
		}
	}

	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Println(name, args)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}
