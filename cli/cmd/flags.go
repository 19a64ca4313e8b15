// Package cmd provides the floe CLI's commands: validate, run, version.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags across validate and run.
var (
	// ConfigFlag points at the contract file (floe.yaml).
	ConfigFlag = &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to the contract file",
		Required: true,
	}

	// EntitiesFlag restricts a run/validate to a comma-separated subset of
	// declared entities.
	EntitiesFlag = &cli.StringSliceFlag{
		Name:  "entities",
		Usage: "Restrict to these entities (repeatable), default is all declared entities",
	}

	// NoColorFlag disables colorized status lines.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)
