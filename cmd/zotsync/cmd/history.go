package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zotsync/internal/adapters/sqlite"
	"zotsync/internal/adapters/tui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := sqlite.Open(cfg.VaultPath)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer h.Close()

		runs, err := h.RecentRuns(historyLimit)
		if err != nil {
			return err
		}
		fmt.Print(tui.RenderRuns(runs))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
