package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cursorvault/cursorvault/internal/gitstate"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the archive state for this project",
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

			dbPath := p.cfg.Storage.EffectiveDatabasePath()
			dbState := "missing"
			if fi, err := os.Stat(dbPath); err == nil {
				dbState = fmt.Sprintf("present, %s", byteCount(fi.Size()))
			}

			convs, err := p.store.LoadAll()
			if err != nil {
				return err
			}
			totalMessages := 0
			var lastUpdated time.Time
			for _, c := range convs {
				totalMessages += c.Metadata.TotalMessages
				if c.UpdatedAt.After(lastUpdated) {
					lastUpdated = c.UpdatedAt.Time
				}
			}

			fmt.Printf("\nProject:        %s\n", root)
			fmt.Printf("Cursor store:   %s (%s)\n", dbPath, dbState)
			fmt.Printf("Registry:       %s (%d workspaces)\n", p.registry.Path(), len(p.registry.All()))
			fmt.Printf("Conversations:  %d archived, %d messages\n", len(convs), totalMessages)
			if !lastUpdated.IsZero() {
				fmt.Printf("Last updated:   %s\n", lastUpdated.Format("2006-01-02 15:04"))
			}
			fmt.Printf("Poll interval:  %dms (auto-save %v)\n", p.cfg.Poll.ClampedInterval(), p.cfg.Poll.AutoSave)
			fmt.Printf("Code filtering: %v\n", p.cfg.Filter.IgnoreCodeOutput)

			if cp := gitstate.Capture(root); !cp.IsZero() {
				fmt.Printf("Checkpoint:     %s (%s @ %s)\n",
					cp.CommitTime.Format("2006-01-02 15:04"), cp.Branch, cp.Commit)
			}
			fmt.Println()
			return nil
		},
	}
}

func byteCount(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
