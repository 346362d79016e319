package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"foildb/internal/config"
	"foildb/internal/imagestore"
	"foildb/internal/media"
	"foildb/internal/report"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize row stores and the latest run reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			titlesSummary, err := report.ReadSummary(report.SummaryPath(cfg.Paths.ArtefactsDir, "titles"))
			if err == nil && titlesSummary.Titles != nil {
				outcome := titlesSummary.Titles
				fmt.Fprintf(out, "Titles [%s]: %d records, last run %s (%s)\n",
					outcome.Locale,
					outcome.Diff.CurrentTotal,
					titlesSummary.FinishedAt.Local().Format("2006-01-02 15:04"),
					outcome.Rebuild.Reason)
			} else {
				fmt.Fprintln(out, "Titles: no run recorded yet")
			}

			rows := make([][]string, 0, len(media.Kinds()))
			for _, kind := range media.Kinds() {
				rows = append(rows, statusRow(cmd.Context(), cfg, kind))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"KIND", "ROWS", "PAYLOAD", "DB FILE", "LAST RUN", "OK", "FAILED"},
				rows,
				1, 2, 3, 5, 6))
			return nil
		},
	}
	return cmd
}

// statusRow summarizes one kind's store and last summary. A store that
// cannot be opened (typically because a sync holds its lock) is reported,
// not treated as an error.
func statusRow(ctx context.Context, cfg *config.Config, kind media.Kind) []string {
	row := []string{kind.String(), "-", "-", "-", "-", "-", "-"}

	storePath := filepath.Join(cfg.Paths.ArtefactsDir, kind.StoreFilename())
	if _, err := os.Stat(storePath); err == nil {
		store, err := imagestore.Open(storePath)
		if err != nil {
			row[1] = "unavailable"
		} else {
			stats, statsErr := store.Stats(ctx)
			store.Close()
			if statsErr == nil {
				row[1] = strconv.FormatInt(stats.Rows, 10)
				row[2] = humanize.IBytes(uint64(stats.PayloadBytes))
				row[3] = humanize.IBytes(uint64(stats.FileBytes))
			}
		}
	}

	summary, err := report.ReadSummary(report.SummaryPath(cfg.Paths.ArtefactsDir, kind.String()))
	if err == nil {
		row[4] = summary.FinishedAt.Local().Format("2006-01-02 15:04")
		row[5] = strconv.Itoa(summary.Counters.OK)
		row[6] = strconv.Itoa(summary.Counters.Failed)
	}
	return row
}
