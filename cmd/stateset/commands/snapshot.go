package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stateset/stateset/pkg/types"
)

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Create, list, and inspect local snapshots",
	}

	cmd.AddCommand(newSnapshotCreateCommand())
	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotShowCommand())
	return cmd
}

func newSnapshotCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Capture live state into a local snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			includeSecrets, _ := cmd.Flags().GetBool("include-secrets")

			bundle, err := a.remote.ExportCurrentState(cmd.Context(), includeSecrets)
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			info, err := a.snapshots.Save(name, bundle)
			if err != nil {
				return err
			}

			fmt.Printf("Created snapshot %s (%d entities)\n", info.ID, bundle.EntityCount())
			return nil
		},
	}
	cmd.Flags().Bool("include-secrets", false, "include secret values in the export")
	return cmd
}

func newSnapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			infos, err := a.snapshots.List()
			if err != nil {
				return err
			}
			return a.render(infos, a.formatter.FormatSnapshotList(infos))
		},
	}
}

func newSnapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ref]",
		Short: "Show collection counts for a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			path, err := a.snapshots.Resolve(ref)
			if err != nil {
				return err
			}
			bundle, err := a.snapshots.Read(path)
			if err != nil {
				return err
			}

			fmt.Printf("Snapshot: %s\n", path)
			fmt.Printf("Org:      %s (version %s, exported %s)\n",
				bundle.OrgID, bundle.Version, bundle.ExportedAt.Format("2006-01-02 15:04:05"))
			for _, name := range types.CollectionNames() {
				fmt.Printf("  %-15s %d\n", name, len(bundle.Collection(name)))
			}
			return nil
		},
	}
}
