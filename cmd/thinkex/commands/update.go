package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/printer"
)

var (
	updateCluster  string
	updateQuestion string
	updateAnswer   string
)

var updateCmd = &cobra.Command{
	Use:   "update <board-id> <card-id>",
	Short: "Update a Q&A card's question and/or answer",
	Long: `Update the question and/or answer of a card in the named cluster.
At least one of --question or --answer must be given; the backend treats an
unchanged value as a no-op.

Examples:
  # Fix an answer
  thinkex update 4f6b2c q-81aa --cluster Consensus --answer "At most one leader per term."`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateCluster, "cluster", "c", "", "Cluster title the card lives in (required)")
	updateCmd.Flags().StringVarP(&updateQuestion, "question", "q", "", "New question text")
	updateCmd.Flags().StringVarP(&updateAnswer, "answer", "a", "", "New answer text")
	updateCmd.MarkFlagRequired("cluster")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if updateQuestion == "" && updateAnswer == "" {
		return printer.Error(
			"nothing to update",
			"Provide at least one of --question or --answer.",
			nil,
		)
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	var question, answer *string
	if updateQuestion != "" {
		question = &updateQuestion
	}
	if updateAnswer != "" {
		answer = &updateAnswer
	}

	card, err := client.UpdateQA(ctx, args[0], updateCluster, args[1], question, answer)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	printer.Success("Updated card %s\n", card.ID)
	return nil
}
