package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/cache"
	"github.com/thinkex/thinkex/internal/printer"
	"github.com/thinkex/thinkex/internal/reconcile"
)

var reorderOverCard string

var reorderCmd = &cobra.Command{
	Use:   "reorder <board-id> <card-id>",
	Short: "Reorder a card within its cluster",
	Long: `Relocate a card to another card's position within the same cluster
(array-move semantics: remove, then insert at the target's index).

The reorder is applied optimistically against the local snapshot and rolled
back if the backend rejects it.

Examples:
  # Put q-81aa where q-22bc currently sits
  thinkex reorder 4f6b2c q-81aa --over q-22bc`,
	Args: cobra.ExactArgs(2),
	RunE: runReorder,
}

func init() {
	reorderCmd.Flags().StringVar(&reorderOverCard, "over", "", "Card id marking the target position (required)")
	reorderCmd.MarkFlagRequired("over")
	rootCmd.AddCommand(reorderCmd)
}

func runReorder(cmd *cobra.Command, args []string) error {
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
	overIdx, _, found := list.FindCard(reorderOverCard)
	if !found {
		return printer.ErrorWithContext(
			"target card not found",
			"The board has no card with that id.",
			map[string]string{"Board": listID, "Card": reorderOverCard},
			[]string{fmt.Sprintf("Inspect the board:\n  thinkex show %s", listID)},
		)
	}
	if srcIdx != overIdx {
		return printer.Error(
			"cards are in different clusters",
			"Reordering works within one cluster. To change clusters, use move.",
			[]string{fmt.Sprintf("Move the card instead:\n  thinkex move %s %s --to %q",
				listID, cardID, list.Clusters[overIdx].Title)},
		)
	}

	rec := reconcile.New(store, client, newLogger())
	ev := reconcile.DropEvent{
		ActiveID:      cardID,
		ActiveCluster: list.Clusters[srcIdx].Title,
		OverID:        reorderOverCard,
		OverCluster:   list.Clusters[overIdx].Title,
	}
	committed, err := rec.Drop(ctx, listID, ev)
	if err != nil {
		return printer.ErrorWithContext(
			"reorder rejected by the backend",
			err.Error()+"\nLocal state was restored; nothing changed.",
			map[string]string{"Board": listID, "Card": cardID},
			[]string{fmt.Sprintf("Check the current arrangement:\n  thinkex show %s", listID)},
		)
	}
	if !committed {
		printer.Info("Nothing to do: %s is already in that position\n", cardID)
		return nil
	}

	printer.Success("Reordered %s within %q\n", cardID, list.Clusters[srcIdx].Title)
	return nil
}
