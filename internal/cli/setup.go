package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cursorvault/cursorvault/internal/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive first-time configuration",
		Long:  "Configure Cursor's storage location, the poll interval, and code filtering.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			fmt.Println("Welcome to Cursorvault! Let's find your Cursor storage.")
			fmt.Println()

			cfg := config.DefaultGlobal()

			// Step 1: Cursor storage directory.
			fmt.Printf("Cursor globalStorage directory (press Enter for %s): ", cfg.Storage.CursorGlobalDir)
			if dir := readLineBuf(reader); dir != "" {
				cfg.Storage.CursorGlobalDir = dir
			}
			if _, err := os.Stat(cfg.Storage.EffectiveDatabasePath()); os.IsNotExist(err) {
				fmt.Println("  Note: state.vscdb not found there yet; extraction will start once it appears.")
			}

			fmt.Println()

			// Step 2: Poll interval.
			fmt.Printf("Poll interval in milliseconds [%d-%d] (press Enter for %d): ",
				config.MinPollIntervalMs, config.MaxPollIntervalMs, cfg.Poll.IntervalMs)
			if v := readLineBuf(reader); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					cfg.Poll.IntervalMs = n
				} else {
					fmt.Println("  Not a number; keeping the default.")
				}
			}

			// Step 3: Code filtering.
			fmt.Print("Redact code from archived assistant messages? [y/N]: ")
			if v := strings.ToLower(readLineBuf(reader)); v == "y" || v == "yes" {
				cfg.Filter.IgnoreCodeOutput = true
			}

			fmt.Println()

			if err := config.SaveGlobal(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			path, _ := config.GlobalConfigPath()
			fmt.Printf("Configuration saved to %s\n", path)
			fmt.Println("Navigate to a project and run `cursorvault run` to start archiving.")

			return nil
		},
	}
}

// readLineBuf reads a trimmed line from a bufio.Reader.
func readLineBuf(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
