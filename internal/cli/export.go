package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cursorvault/cursorvault/internal/export"
)

func newExportCmd() *cobra.Command {
	var formats []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render archived conversations to shareable files",
		Long: `Render the archived conversations into the configured export formats
(markdown and/or json) in the project root.`,
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
				fmt.Println("No conversations to export. Run `cursorvault sync` first.")
				return nil
			}

			selected := formats
			if len(selected) == 0 {
				selected = p.cfg.Export.Formats
			}

			var written []string
			for _, format := range selected {
				exporter, ok := export.Get(format)
				if !ok {
					return fmt.Errorf("unknown format %q (valid: %s)", format, strings.Join(export.ValidFormats(), ", "))
				}
				out, err := exporter.Export(convs)
				if err != nil {
					return err
				}

				name := export.FileName(format)
				path := filepath.Join(root, name)
				if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				written = append(written, name)
			}

			fmt.Printf("Exported %d conversation(s) to %s\n", len(convs), strings.Join(written, ", "))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&formats, "format", nil, "export formats (markdown, json)")

	return cmd
}
