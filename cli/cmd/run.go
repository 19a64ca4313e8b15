package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/floe-data/floe/cli/config"
	"github.com/floe-data/floe/cli/render"
	flog "github.com/floe-data/floe/log"
	"github.com/floe-data/floe/rundriver"
	"github.com/floe-data/floe/types"
)

// RunIDFlag lets a run pin its run_id instead of having one allocated.
var RunIDFlag = &cli.StringFlag{
	Name:  "run-id",
	Usage: "Pin the run_id instead of allocating one from the current time",
}

// RunCommand returns the run command: executes the core pipeline for a
// contract's declared (or selected) entities.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute the ingestion pipeline for a contract",
		Flags: []cli.Flag{
			ConfigFlag,
			EntitiesFlag,
			RunIDFlag,
			NoColorFlag,
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return cli.Exit("", rundriver.ExitFailed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	runID := c.String("run-id")
	if runID == "" {
		runID = rundriver.AllocateRunID(time.Now())
	}
	logger := flog.New(runID)

	lines := render.NewFileLine(os.Stderr, c.Bool("no-color") || !isTTY(os.Stderr))

	result, err := rundriver.Run(ctx, cfg, rundriver.Options{
		RunID:    runID,
		Entities: c.StringSlice("entities"),
		OnFile: func(entity string, outcome types.FileOutcome) {
			lines.Print(entity, outcome)
		},
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		return cli.Exit("", rundriver.ExitFailed)
	}

	lines.Summary(result.RunID, result.Summary.Status)
	return cli.Exit("", rundriver.ExitCode(result.Summary.Status))
}

// isTTY returns true if f is a terminal, used to decide whether status
// lines should default to colorized output.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
