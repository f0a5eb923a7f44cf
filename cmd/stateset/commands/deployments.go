package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stateset/stateset/internal/deploy"
	"github.com/stateset/stateset/pkg/types"
)

func newDeploymentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "Inspect and manage tracked deployments",
	}

	cmd.AddCommand(newDeploymentsListCommand())
	cmd.AddCommand(newDeploymentsGetCommand())
	cmd.AddCommand(newDeploymentsStatusCommand())
	cmd.AddCommand(newDeploymentsCancelCommand())
	cmd.AddCommand(newDeploymentsDeleteCommand())
	return cmd
}

func newDeploymentsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deployment records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			status, _ := cmd.Flags().GetString("status")
			mode, _ := cmd.Flags().GetString("mode")

			records, err := a.deployments.List(deploy.Filter{
				Status: types.DeploymentStatus(status),
				Mode:   types.DeploymentMode(mode),
			})
			if err != nil {
				return err
			}
			return a.render(records, a.formatter.FormatDeploymentList(records))
		},
	}
	cmd.Flags().String("status", "", "filter by status (scheduled, approved, applied, failed, cancelled)")
	cmd.Flags().String("mode", "", "filter by mode (deploy, rollback)")
	return cmd
}

func newDeploymentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one deployment in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			d, err := a.deployments.Get(args[0])
			if err != nil {
				return err
			}
			return a.render(d, a.formatter.FormatDeployment(d))
		},
	}
}

func newDeploymentsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Print a deployment's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			d, err := a.deployments.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", d.ID, d.Status)
			if d.Error != "" {
				fmt.Printf("error: %s\n", d.Error)
			}
			return nil
		},
	}
}

func newDeploymentsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a scheduled or approved deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			d, err := a.orchestrator.Cancel(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Cancelled %s\n", d.ID)
			return nil
		},
	}
}

func newDeploymentsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deployment record from the log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			d, err := a.deployments.Delete(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %s (%s, was %s)\n", d.ID, d.Mode, d.Status)
			return nil
		},
	}
}
