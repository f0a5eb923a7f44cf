package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stateset/stateset/internal/deploy"
	"github.com/stateset/stateset/pkg/types"
)

func newPushCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push [source]",
		Short: "Apply a local bundle or snapshot to live state",
		Long: `Apply a local source to live state through the same preview-then-apply
path as 'deploy'. The source may be a state-set directory, a bundle file,
or a snapshot reference; it defaults to the newest snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			yes, _ := cmd.Flags().GetBool("yes")
			strict, _ := cmd.Flags().GetBool("strict")

			source := ""
			if len(args) == 1 {
				source = args[0]
			}

			outcome, err := a.orchestrator.Promote(cmd.Context(), deploy.PromoteOptions{
				Mode:   types.ModeDeploy,
				Source: source,
				DryRun: dryRun,
				Strict: strict,
				Yes:    yes,
			})
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
		},
	}

	cmd.Flags().Bool("dry-run", false, "preview only, apply nothing")
	cmd.Flags().BoolP("yes", "y", false, "apply without interactive confirmation")
	cmd.Flags().Bool("strict", false, "treat any per-entity import failure as a hard error")
	return cmd
}
