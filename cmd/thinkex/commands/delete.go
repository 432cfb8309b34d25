package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/printer"
)

var deleteCardCluster string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a board, cluster, or card",
}

var deleteBoardCmd = &cobra.Command{
	Use:   "board <board-id>",
	Short: "Delete an entire board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.DeleteClusterList(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete board: %w", err)
		}
		printer.Success("Deleted board %s\n", args[0])
		return nil
	},
}

var deleteClusterCmd = &cobra.Command{
	Use:   "cluster <board-id> <cluster-title>",
	Short: "Delete a cluster and all its cards",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.DeleteCluster(context.Background(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to delete cluster: %w", err)
		}
		printer.Success("Deleted cluster %q from board %s\n", args[1], args[0])
		return nil
	},
}

var deleteCardCmd = &cobra.Command{
	Use:   "card <board-id> <card-id>",
	Short: "Delete one card",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.DeleteCard(context.Background(), args[0], args[1], deleteCardCluster); err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		printer.Success("Deleted card %s\n", args[1])
		return nil
	},
}

func init() {
	deleteCardCmd.Flags().StringVarP(&deleteCardCluster, "cluster", "c", "", "Cluster title the card lives in (required)")
	deleteCardCmd.MarkFlagRequired("cluster")

	deleteCmd.AddCommand(deleteBoardCmd, deleteClusterCmd, deleteCardCmd)
	rootCmd.AddCommand(deleteCmd)
}
