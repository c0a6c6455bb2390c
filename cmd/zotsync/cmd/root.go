package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zotsync/internal/config"
)

var (
	configDir string
	vaultFlag string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "zotsync",
	Short: "Sync Kindle highlight notes into Zotero",
	Long: `zotsync reads Kindle highlight exports from an Obsidian vault and
mirrors them into a Zotero library: one book item per document, one
child note per highlight.

Runs are idempotent. A journal file in the vault records what has
already been created, so interrupted or repeated runs never duplicate
items or notes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(configDir)
		if err != nil {
			return err
		}
		if vaultFlag != "" {
			cfg.VaultPath = vaultFlag
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.Dir(), "configuration directory")
	rootCmd.PersistentFlags().StringVarP(&vaultFlag, "vault", "v", "", "path to the highlights vault (overrides config)")
}
