package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stateset/stateset/internal/deploy"
	"github.com/stateset/stateset/pkg/types"
)

func newDeployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [ref]",
		Short: "Promote a snapshot into the live environment",
		Long: `Promote a resolved snapshot into live state.

Without --schedule or --approve this is a direct promotion: the bundle is
previewed with a dry-run import first, and applying for real requires
--yes (or stop at the preview with --dry-run). Direct promotions leave no
deployment record.

With --schedule a deployment record is created for later approval. With
--approve an existing scheduled deployment is approved and applied
immediately.`,
		Example: `  # Preview what deploying a snapshot would do
  stateset deploy prod-v1 --dry-run

  # Promote for real
  stateset deploy prod-v1 --yes

  # Schedule for later approval
  stateset deploy prod-v1 --schedule +2h

  # Approve and apply a scheduled deployment
  stateset deploy --approve dep-1a2b3c4d`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromote(cmd, args, types.ModeDeploy)
		},
	}
	addPromoteFlags(cmd)
	return cmd
}

func newRollbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback [ref]",
		Short: "Roll live state back to a snapshot",
		Long: `Roll the live environment back to a previously captured snapshot.
Rollbacks follow the same preview/confirm/schedule/approve workflow as
deploys but are tracked as a separate mode: a rollback deployment can
only be approved through 'rollback --approve'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromote(cmd, args, types.ModeRollback)
		},
	}
	addPromoteFlags(cmd)
	return cmd
}

func addPromoteFlags(cmd *cobra.Command) {
	cmd.Flags().String("schedule", "", "schedule for later: now, +2h, -30m, or an absolute time")
	cmd.Flags().String("approve", "", "approve and apply a scheduled deployment by id")
	cmd.Flags().Bool("dry-run", false, "preview only, apply nothing")
	cmd.Flags().BoolP("yes", "y", false, "apply without interactive confirmation")
	cmd.Flags().Bool("strict", false, "treat any per-entity import failure as a hard error")
	cmd.Flags().Bool("include-secrets", false, "include secret values in live exports")
}

func runPromote(cmd *cobra.Command, args []string, mode types.DeploymentMode) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	schedule, _ := cmd.Flags().GetString("schedule")
	approve, _ := cmd.Flags().GetString("approve")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	strict, _ := cmd.Flags().GetBool("strict")
	includeSecrets, _ := cmd.Flags().GetBool("include-secrets")

	source := ""
	if len(args) == 1 {
		source = args[0]
	}

	opts := deploy.PromoteOptions{
		Mode:           mode,
		Source:         source,
		DryRun:         dryRun,
		Strict:         strict,
		IncludeSecrets: includeSecrets,
		Yes:            yes,
	}

	if approve != "" {
		overrides := deploy.ApproveOverrides{Source: source}
		if cmd.Flags().Changed("strict") {
			overrides.Strict = &strict
		}
		if cmd.Flags().Changed("include-secrets") {
			overrides.IncludeSecrets = &includeSecrets
		}

		d, err := a.orchestrator.Approve(cmd.Context(), approve, mode, overrides)
		if d != nil {
			fmt.Print(a.formatter.FormatDeployment(d))
		}
		return err
	}

	if schedule != "" {
		d, err := a.orchestrator.Schedule(opts, schedule)
		if err != nil {
			return err
		}
		fmt.Printf("Scheduled %s %s for %s (source %s)\n",
			d.Mode, d.ID, d.ScheduledFor.Format("2006-01-02 15:04:05"), d.Source)
		return nil
	}

	outcome, err := a.orchestrator.Promote(cmd.Context(), opts)
	if outcome != nil && outcome.Preview != nil {
		fmt.Print(a.formatter.FormatImportResult(outcome.Preview))
	}
	if err != nil {
		return err
	}
	if outcome.Applied != nil {
		fmt.Println()
		fmt.Print(a.formatter.FormatImportResult(outcome.Applied))
	}
	return nil
}
