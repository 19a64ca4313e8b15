package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/floe-data/floe/cli/config"
)

// Exit codes for validate (spec.md §6.1).
const (
	exitValidateOK   = 0
	exitValidateFail = 1
)

// ValidateCommand returns the validate command: loads and structurally
// checks a contract file without touching any storage backend.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a contract file for structural errors without running it",
		Flags: []cli.Flag{
			ConfigFlag,
			EntitiesFlag,
		},
		Action: validateAction,
	}
}

func validateAction(c *cli.Context) error {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		return cli.Exit("", exitValidateFail)
	}

	if names := c.StringSlice("entities"); len(names) > 0 {
		if missing := missingEntities(cfg, names); len(missing) > 0 {
			fmt.Fprintf(os.Stderr, "invalid: unknown entities: %v\n", missing)
			return cli.Exit("", exitValidateFail)
		}
	}

	fmt.Fprintf(os.Stdout, "valid: %d entities declared\n", len(cfg.Entities))
	return nil
}

func missingEntities(cfg *config.Config, names []string) []string {
	declared := make(map[string]bool, len(cfg.Entities))
	for _, e := range cfg.Entities {
		declared[e.Name] = true
	}
	var missing []string
	for _, n := range names {
		if !declared[n] {
			missing = append(missing, n)
		}
	}
	return missing
}
