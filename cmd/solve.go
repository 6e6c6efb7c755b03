package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/healthflow/roster/app"
	"github.com/healthflow/roster/config"
	"github.com/healthflow/roster/core/colgen"
	"github.com/healthflow/roster/core/events"
	"github.com/healthflow/roster/infra/logger"
	"github.com/healthflow/roster/internal/eventbus"
	"github.com/healthflow/roster/pkg/export"
)

var (
	outPath      string
	outFormat    string
	coveragePath string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the configured rostering instance",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result to this file instead of stdout")
	solveCmd.Flags().StringVarP(&outFormat, "format", "f", "json", "output format: json or csv")
	solveCmd.Flags().StringVar(&coveragePath, "coverage", "", "also write a coverage report CSV to this file")
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if outFormat != "json" && outFormat != "csv" {
		return fmt.Errorf("unknown format %q", outFormat)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	done := watchProgress(svc.Bus())
	res, err := svc.Solve(ctx)
	svc.Bus().Close() // Bus.Close is idempotent
	<-done
	if err != nil {
		if errors.Is(err, colgen.ErrInfeasibleProblem) {
			return fmt.Errorf("the instance has no feasible roster: %w", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	switch outFormat {
	case "csv":
		err = export.WriteCSV(out, res)
	default:
		err = export.WriteJSON(out, res)
	}
	if err != nil {
		return err
	}

	if coveragePath != "" {
		f, err := os.Create(coveragePath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteCoverageCSV(f, res); err != nil {
			return err
		}
	}
	return nil
}

// watchProgress mirrors solve progress events to the log until the bus
// closes. The returned channel closes when the watcher drains.
func watchProgress(bus eventbus.EventBus) <-chan struct{} {
	log := logger.New("progress")
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub {
			switch e := ev.(type) {
			case events.IncumbentEvent:
				log.Infof("incumbent %.2f at node %d", e.Objective, e.Node)
			case events.DoneEvent:
				log.Infof("finished in %s, feasible=%v optimal=%v",
					e.Duration.Round(time.Millisecond), e.Feasible, e.ProvenOptimal)
			}
		}
	}()
	return done
}
