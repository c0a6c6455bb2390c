package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"zotsync/internal/adapters/journal"
	"zotsync/internal/domain"
)

var copyFlag bool

var statusCmd = &cobra.Command{
	Use:   "status [title]",
	Short: "Show what the journal knows",
	Long: `Status summarizes the sync journal. With a title argument it shows
that book's Zotero item key and how many of its highlights were sent.

Examples:
  zotsync status
  zotsync status "Deep Work"
  zotsync status "Deep Work" --copy`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j := journal.NewStore(cfg.VaultPath, nil).Load()

		if len(args) == 0 {
			sent := 0
			for title := range j.Sent {
				sent += len(j.SentFingerprints(title))
			}
			fmt.Printf("%d books linked, %d completed, %d highlights sent\n",
				len(j.Items), len(j.Done), sent)
			for _, norm := range j.DoneTitles() {
				fmt.Printf("  done: %s (%s)\n", norm, j.Items[norm])
			}
			return nil
		}

		title := args[0]
		norm := domain.NormalizeTitle(title)
		key, ok := j.ParentKey(norm)
		if !ok {
			return fmt.Errorf("no journal entry for %q", title)
		}

		state := "pending"
		if j.IsDone(norm) {
			state = "done"
		}
		fmt.Printf("%s  %s  %d highlights sent\n", key, state, len(j.SentFingerprints(title)))

		if copyFlag {
			if err := clipboard.WriteAll(key); err != nil {
				return fmt.Errorf("failed to copy item key: %w", err)
			}
			fmt.Println("item key copied to clipboard")
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&copyFlag, "copy", "c", false, "copy the book's Zotero item key to the clipboard")
	rootCmd.AddCommand(statusCmd)
}
