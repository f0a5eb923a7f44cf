package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/stateset/stateset/internal/differ"
)

// errChangesDetected signals the git-diff-style exit status of 1. Execute
// maps it to the exit code after deferred cleanups have run; it is never
// printed as an error.
var errChangesDetected = errors.New("changes detected")

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [from] [to]",
		Short: "Compare two snapshots, or a snapshot against live state",
		Long: `Compare two resolved bundles collection by collection and report
added, removed, and changed entity counts.

References resolve in order: an existing file or directory path, an exact
snapshot id, a unique id prefix, then a unique substring. The special
references "latest" (newest snapshot) and "current"/"live"/"remote"
(export live state now) are also accepted. With no arguments the two
newest snapshots are compared.

Exit codes follow git diff: 0 means no changes, 1 means changes.`,
		Example: `  # Compare the two newest snapshots
  stateset diff

  # Compare a named snapshot against live state
  stateset diff prod-v1 current

  # Compare two snapshot files
  stateset diff snapshots/a.json snapshots/b.json

  # Quiet mode for scripts
  stateset diff --quiet && echo "in sync"`,
		Args: cobra.MaximumNArgs(2),
		RunE: runDiff,
	}

	cmd.Flags().BoolP("quiet", "q", false, "suppress output, exit with status only")
	cmd.Flags().Bool("include-secrets", false, "include secret values when exporting live state")
	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	return a.runDiff(cmd, args)
}

func (a *app) runDiff(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	includeSecrets, _ := cmd.Flags().GetBool("include-secrets")

	fromRef, toRef := "", ""
	switch len(args) {
	case 2:
		fromRef, toRef = args[0], args[1]
	case 1:
		fromRef = args[0]
		toRef = "current"
	default:
		// No arguments: compare the two newest snapshots.
		infos, err := a.snapshots.List()
		if err != nil {
			return err
		}
		if len(infos) >= 2 {
			fromRef, toRef = infos[1].ID, infos[0].ID
		} else {
			toRef = "current"
		}
	}

	fromBundle, fromLabel, fromCleanup, err := a.resolver.Resolve(cmd.Context(), fromRef, includeSecrets)
	if err != nil {
		return err
	}
	defer fromCleanup()

	toBundle, toLabel, toCleanup, err := a.resolver.Resolve(cmd.Context(), toRef, includeSecrets)
	if err != nil {
		return err
	}
	defer toCleanup()

	summary := differ.New().Compare(fromLabel, toLabel, fromBundle, toBundle)

	if quiet {
		if summary.HasChanges() {
			return errChangesDetected
		}
		return nil
	}

	if err := a.render(summary, a.formatter.FormatDiffSummary(summary)); err != nil {
		return err
	}

	if summary.HasChanges() {
		return errChangesDetected
	}
	return nil
}
