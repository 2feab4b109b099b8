package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todoist-to-sqlite/internal/credential"
)

// AuthResult is the payload of a successful auth command.
type AuthResult struct {
	Path string `json:"path"`
}

func (r AuthResult) String() string {
	return fmt.Sprintf(`Your authentication credentials have been saved to %s. You can now import tasks by running:

    $ todoist-to-sqlite sync todoist.db
    $ todoist-to-sqlite completed-tasks todoist.db`, r.Path)
}

// NewAuthCommand creates the auth command.
func NewAuthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Save authentication credentials to a JSON file",
		Long: `Prompt for a Todoist API token and store it in the auth file.

Find the token in Todoist under Settings > Integrations > Developer.
Other keys already present in the file are kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(rootOpts, cmd)
		},
	}
}

func runAuth(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	_, closeLog := newLogger(opts, cmd.ErrOrStderr())
	defer closeLog()

	fmt.Fprintln(formatter.GetErrWriter(),
		"In Todoist, navigate to Settings > Integrations > Developer and paste the API token here:")
	fmt.Fprint(formatter.GetErrWriter(), "API Token: ")

	token, err := readToken(cmd.InOrStdin())
	if err != nil {
		return formatter.Fail("failed to read token", err)
	}

	if err := credential.Save(opts.Auth, token); err != nil {
		return formatter.Fail("failed to save token", err)
	}

	return formatter.Success(AuthResult{Path: opts.Auth})
}

func readToken(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", NewExitError(ExitCommandError, "no token entered")
	}
	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return "", NewExitError(ExitCommandError, "no token entered")
	}
	return token, nil
}
