package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stateset/stateset/internal/storage"
)

func newPullCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull [dir]",
		Short: "Export live state into a local state-set directory",
		Long: `Export the organization's live state and write it as a directory
bundle: one JSON array per collection plus a config.json manifest with
resource counts. The directory is suitable for 'push' and 'watch'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			includeSecrets, _ := cmd.Flags().GetBool("include-secrets")

			dir := "./stateset-state"
			if len(args) == 1 {
				dir = args[0]
			}

			bundle, err := a.remote.ExportCurrentState(cmd.Context(), includeSecrets)
			if err != nil {
				return err
			}
			if err := storage.WriteBundleDir(dir, bundle); err != nil {
				return err
			}

			fmt.Printf("Pulled %d entities into %s\n", bundle.EntityCount(), dir)
			return nil
		},
	}
	cmd.Flags().Bool("include-secrets", false, "include secret values in the export")
	return cmd
}
