package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/printer"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List all knowledge boards",
	Long: `List every board the backend knows about, with its id and title.

Examples:
  # List boards
  thinkex boards`,
	RunE: runBoards,
}

func init() {
	rootCmd.AddCommand(boardsCmd)
}

func runBoards(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	infos, err := client.GetBoardInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to list boards: %w", err)
	}

	printer.Boards(infos)
	return nil
}
