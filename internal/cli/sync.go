package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one extraction cycle and exit",
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

			sum, err := p.engine.RunCycle(context.Background())
			if err != nil {
				return err
			}

			if sum.Saved == 0 {
				fmt.Printf("Nothing new (%d containers scanned, %d for this project).\n", sum.Containers, sum.Matched)
				return nil
			}
			fmt.Printf("Saved %d conversation(s), %d new message(s).\n", sum.Saved, sum.NewMessages)
			return nil
		},
	}
}
