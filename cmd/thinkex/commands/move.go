package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/cache"
	"github.com/thinkex/thinkex/internal/printer"
	"github.com/thinkex/thinkex/internal/reconcile"
)

var moveToCluster string

var moveCmd = &cobra.Command{
	Use:   "move <board-id> <card-id>",
	Short: "Move a card to another cluster",
	Long: `Move a card to a different cluster on the same board. The card is
appended to the destination cluster.

The move is applied optimistically against the local snapshot and rolled
back if the backend rejects it.

Examples:
  # Move a card into the "Done" cluster
  thinkex move 4f6b2c q-81aa --to Done`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func init() {
	moveCmd.Flags().StringVar(&moveToCluster, "to", "", "Destination cluster title (required)")
	moveCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	listID, cardID := args[0], args[1]

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	store := cache.New()
	list, err := fetchListIntoCache(ctx, client, store, listID)
	if err != nil {
		return err
	}

	srcIdx, _, found := list.FindCard(cardID)
	if !found {
		return printer.ErrorWithContext(
			"card not found",
			"The board has no card with that id.",
			map[string]string{"Board": listID, "Card": cardID},
			[]string{fmt.Sprintf("Inspect the board:\n  thinkex show %s", listID)},
		)
	}
	if list.FindCluster(moveToCluster) < 0 {
		return printer.ErrorWithContext(
			"destination cluster not found",
			"The board has no cluster with that title.",
			map[string]string{"Board": listID, "Cluster": moveToCluster},
			[]string{fmt.Sprintf("Inspect the board:\n  thinkex show %s", listID)},
		)
	}

	rec := reconcile.New(store, client, newLogger())
	ev := reconcile.DropEvent{
		ActiveID:      cardID,
		ActiveCluster: list.Clusters[srcIdx].Title,
		OverCluster:   moveToCluster,
	}
	committed, err := rec.Drop(ctx, listID, ev)
	if err != nil {
		return printer.ErrorWithContext(
			"move rejected by the backend",
			err.Error()+"\nLocal state was restored; nothing changed.",
			map[string]string{"Board": listID, "Card": cardID},
			[]string{fmt.Sprintf("Check the current arrangement:\n  thinkex show %s", listID)},
		)
	}
	if !committed {
		printer.Info("Nothing to do: %s is already in %q\n", cardID, moveToCluster)
		return nil
	}

	printer.Success("Moved %s to %q\n", cardID, moveToCluster)
	return nil
}
