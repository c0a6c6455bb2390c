package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zotsync/internal/adapters/journal"
	"zotsync/internal/adapters/kindle"
	"zotsync/internal/adapters/sqlite"
	"zotsync/internal/adapters/tui"
	"zotsync/internal/adapters/zotero"
	"zotsync/internal/application"
	"zotsync/internal/ports"
)

var (
	liveFlag     bool
	noResumeFlag bool
	yesFlag      bool
	onlyFlag     []string
	limitFlag    int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync highlights into Zotero",
	Long: `Sync reads every markdown export under the vault, resolves or
creates the matching Zotero book item, and creates one child note per
highlight that has not been sent before.

Without --live nothing is written to Zotero: the run reports what it
would create. Live runs ask for confirmation unless --yes is given.

Examples:
  zotsync sync
  zotsync sync --live
  zotsync sync --live --only "deep work" --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := application.ModeDryRun
		if liveFlag {
			mode = application.ModeLive
		}

		if mode.Live() && !yesFlag {
			ok, err := tui.NewLiveConfirm().ConfirmLive()
			if err != nil {
				return err
			}
			if !ok {
				return application.ErrNotConfirmed
			}
		}

		client := zotero.NewClient(cfg.APIKey, cfg.UserID, cfg.UseGroup)
		var mutator ports.RemoteMutator = client
		if !mode.Live() {
			mutator = zotero.NewDryRun(nil)
		}

		var history ports.RunHistory
		if cfg.History {
			h, err := sqlite.Open(cfg.VaultPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "run recording disabled: %v\n", err)
			} else {
				history = h
				defer h.Close()
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := application.NewRunner(
			kindle.NewSource(),
			client,
			mutator,
			journal.NewStore(cfg.VaultPath, nil),
			history,
			nil,
		)
		stats, err := runner.Run(ctx, cfg.VaultPath, application.Options{
			Mode:           mode,
			Resume:         !noResumeFlag,
			OnlyTitles:     onlyFlag,
			BatchLimit:     limitFlag,
			CollectionName: cfg.Collection,
		})
		if err != nil {
			return err
		}

		fmt.Print(tui.RenderSummary(mode, *stats))
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&liveFlag, "live", false, "actually create items and notes in Zotero")
	syncCmd.Flags().BoolVar(&noResumeFlag, "no-resume", false, "reprocess documents already marked done")
	syncCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "skip the live-mode confirmation prompt")
	syncCmd.Flags().StringSliceVar(&onlyFlag, "only", nil, "only sync documents whose title contains one of these strings")
	syncCmd.Flags().IntVar(&limitFlag, "limit", 0, "stop after this many processed documents (0 = no limit)")
	rootCmd.AddCommand(syncCmd)
}
