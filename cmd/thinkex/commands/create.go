package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/printer"
)

var createTitle string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new, empty board",
	Long: `Create a new, empty board with the given title.

Examples:
  # Create a board
  thinkex create --title "Distributed Systems"`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createTitle, "title", "t", "", "Board title (required)")
	createCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	list, err := client.CreateClusterList(ctx, createTitle)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	printer.Success("Created board %q\n", list.Title)
	printer.Info("  id: %s\n", list.ID)
	return nil
}
