package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"foildb/internal/workflow"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var reset bool
	var refreshTitles bool
	var checkOnly bool
	var exportEnabled bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize title metadata and media stores",
		Long: "Sync regenerates the title snapshot when the upstream feed changed, " +
			"reconciles each configured media store against it, and optionally " +
			"exports the distribution packs afterwards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("mode") {
				cfg.Sync.Mode = mode
			}
			if flags.Changed("reset") {
				cfg.Sync.Reset = reset
			}
			if flags.Changed("refresh-titles") {
				cfg.Titles.Refresh = refreshTitles
			}
			if flags.Changed("check-only") {
				cfg.Sync.CheckOnly = checkOnly
			}
			if flags.Changed("export") {
				cfg.Export.Enabled = exportEnabled
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			renderer := newSyncRenderer()
			runner, err := workflow.New(cfg, logger, workflow.WithObserver(renderer.Observe))
			if err != nil {
				return err
			}

			outcome, err := runner.Run(signalCtx)
			renderer.Finish()
			if err != nil {
				return err
			}

			printOutcome(cmd.OutOrStdout(), outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Media kinds to synchronize (icons, banners, both)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Clear each selected store before planning (full rebuild)")
	cmd.Flags().BoolVar(&refreshTitles, "refresh-titles", false, "Force regeneration of the title snapshot")
	cmd.Flags().BoolVar(&checkOnly, "check-only", false, "Stop after the titles stage, before any media work")
	cmd.Flags().BoolVar(&exportEnabled, "export", false, "Export packs and manifest after a successful sync")

	return cmd
}
