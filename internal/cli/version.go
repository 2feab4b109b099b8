package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// VersionInfo is the payload of the version command.
type VersionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("todoist-to-sqlite %s (%s)", v.Version, v.Go)
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(rootOpts, cmd).Success(VersionInfo{
				Version: Version,
				Go:      runtime.Version(),
			})
		},
	}
}
