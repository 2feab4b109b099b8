// Command todoist-to-sqlite saves Todoist tasks and projects to a SQLite file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/todoist-to-sqlite/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own failures; anything else came from flag
	// parsing or argument validation.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(cli.GetExitCode(err))
}
