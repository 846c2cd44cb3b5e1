package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived conversations for this project",
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

			convs, err := p.store.LoadAll()
			if err != nil {
				return err
			}
			if len(convs) == 0 {
				fmt.Println("No conversations archived yet. Run `cursorvault sync` first.")
				return nil
			}

			for _, c := range convs {
				fmt.Printf("%-36s  %-40s  %3d msgs  updated %s\n",
					c.ID, truncate(c.Title, 40), c.Metadata.TotalMessages,
					c.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
