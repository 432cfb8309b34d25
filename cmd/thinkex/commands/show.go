package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/cache"
	"github.com/thinkex/thinkex/internal/printer"
)

var showCmd = &cobra.Command{
	Use:   "show <board-id>",
	Short: "Show one board with its clusters and cards",
	Long: `Fetch a board by id and render its clusters and cards.

Examples:
  # Show a board
  thinkex show 4f6b2c`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	store := cache.New()
	list, err := fetchListIntoCache(ctx, client, store, args[0])
	if err != nil {
		return err
	}

	printer.Board(list)
	return nil
}
