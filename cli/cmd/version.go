package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/floe-data/floe/types"
)

// VersionCommand reports the canonical engine version plus the commit the
// binary was built from.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "floe %s (commit: %s)\n", types.Version, commit)
			return nil
		},
	}
}
