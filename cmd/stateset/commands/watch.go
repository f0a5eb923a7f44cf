package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stateset/stateset/internal/deploy"
	"github.com/stateset/stateset/internal/watcher"
	"github.com/stateset/stateset/pkg/types"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [source]",
		Short: "Watch a state-set directory and push on change",
		Long: `Poll a local state-set directory and push it to live state whenever
its fingerprint (the metadata of its JSON files) changes. The first
iteration always pushes. Push errors are reported and the loop keeps
running; stop it with Ctrl+C or use --once for a single iteration.`,
		Example: `  # Continuous sync every 30 seconds
  stateset watch ./stateset-state

  # Single-shot sync, e.g. from CI
  stateset watch ./stateset-state --once`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().Int("interval", 0, "poll interval in seconds (default from config)")
	cmd.Flags().Bool("once", false, "run one iteration and exit")
	cmd.Flags().Bool("strict", false, "treat any per-entity import failure as a hard error")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetInt("interval")
	once, _ := cmd.Flags().GetBool("once")
	strict, _ := cmd.Flags().GetBool("strict")

	if interval == 0 {
		interval = cfg.Watch.IntervalSeconds
	}

	sourceDir := "./stateset-state"
	if len(args) == 1 {
		sourceDir = args[0]
	}

	push := func(ctx context.Context, dir string) error {
		outcome, err := a.orchestrator.Promote(ctx, deploy.PromoteOptions{
			Mode:   types.ModeDeploy,
			Source: dir,
			Strict: strict,
			Yes:    true,
		})
		if outcome != nil && outcome.Applied != nil {
			fmt.Print(a.formatter.FormatImportResult(outcome.Applied))
		}
		return err
	}

	w, err := watcher.NewWatcher(watcher.Config{
		SourceDir: sourceDir,
		Interval:  time.Duration(interval) * time.Second,
		Once:      once,
		Push:      push,
		Logger:    a.log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
