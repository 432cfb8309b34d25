package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkex/thinkex/internal/printer"
)

var (
	addCluster  string
	addQuestion string
	addAnswer   string
)

var addCmd = &cobra.Command{
	Use:   "add <board-id>",
	Short: "Add a Q&A card to a cluster",
	Long: `Add a question/answer card to the named cluster. The cluster is
created if it does not exist yet.

Examples:
  # Add a card to the "Consensus" cluster
  thinkex add 4f6b2c --cluster Consensus \
    --question "What does Raft's leader election guarantee?" \
    --answer "At most one leader per term."`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addCluster, "cluster", "c", "", "Destination cluster title (required)")
	addCmd.Flags().StringVarP(&addQuestion, "question", "q", "", "Question text (required)")
	addCmd.Flags().StringVarP(&addAnswer, "answer", "a", "", "Answer text (required)")
	addCmd.MarkFlagRequired("cluster")
	addCmd.MarkFlagRequired("question")
	addCmd.MarkFlagRequired("answer")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	cluster, err := client.AddQA(ctx, args[0], addCluster, addQuestion, addAnswer)
	if err != nil {
		return fmt.Errorf("failed to add card: %w", err)
	}

	printer.Success("Added card to %q (%d cards)\n", cluster.Title, len(cluster.QAs))
	return nil
}
