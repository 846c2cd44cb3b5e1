package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cursorvault/cursorvault/internal/conversation"
	"github.com/cursorvault/cursorvault/internal/export"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print one archived conversation",
		Args:  cobra.ExactArgs(1),
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

			conv, found, err := p.store.LoadByContainerID(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no conversation with id %q", args[0])
			}

			exporter, _ := export.Get("markdown")
			out, err := exporter.Export([]conversation.Conversation{conv})
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}
