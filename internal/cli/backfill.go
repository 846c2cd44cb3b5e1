package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newBackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Extract the full conversation history, not just new messages",
		Long: `Re-extract every fragment of every conversation belonging to this project,
ignoring the incremental seen-state. Merging still deduplicates, so existing
archive files gain missing history without duplicating messages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}

			p, err := buildPipeline(root)
			if err != nil {
				return err
			}
			defer p.Close()

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("  Backfilling conversations"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)

			sum, err := p.engine.Backfill(context.Background(), func(done, total int) {
				_ = bar.Add(1)
			})
			_ = bar.Finish()
			if err != nil {
				return err
			}

			fmt.Printf("Backfill complete: %d containers scanned, %d saved, %d messages.\n",
				sum.Containers, sum.Saved, sum.NewMessages)
			return nil
		},
	}
}
