package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"foildb/internal/media"
	"foildb/internal/report"
	"foildb/internal/workflow"
)

// renderTable renders headers and string rows in the shared rounded style.
// rightAligned lists zero-based column indexes carrying numeric content.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	if len(rightAligned) > 0 {
		configs := make([]table.ColumnConfig, 0, len(rightAligned))
		for _, idx := range rightAligned {
			configs = append(configs, table.ColumnConfig{
				Number:      idx + 1,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}

// syncRenderer aggregates per-kind progress into a single terminal bar.
// Kinds report concurrently, so all counter state sits behind one mutex.
// Outside a TTY the renderer stays silent; the structured logs carry
// progress instead.
type syncRenderer struct {
	mu        sync.Mutex
	bar       *progressbar.ProgressBar
	totals    map[media.Kind]int
	processed map[media.Kind]int
	enabled   bool
}

func newSyncRenderer() *syncRenderer {
	return &syncRenderer{
		totals:    make(map[media.Kind]int),
		processed: make(map[media.Kind]int),
		enabled:   isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

func (r *syncRenderer) Observe(kind media.Kind, progress report.Progress) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totals[kind] = progress.Counters.Total
	r.processed[kind] = progress.Counters.Processed

	var total, processed int
	for _, v := range r.totals {
		total += v
	}
	for _, v := range r.processed {
		processed += v
	}
	if total == 0 {
		return
	}

	if r.bar == nil {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("syncing media"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}
	r.bar.ChangeMax(total)
	_ = r.bar.Set(processed)
}

func (r *syncRenderer) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

func printOutcome(out io.Writer, outcome workflow.Outcome) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	rebuild := outcome.Titles.Rebuild
	diff := outcome.Titles.Diff
	action := "reused"
	if rebuild.Rebuild {
		action = "rebuilt"
	}
	fmt.Fprintf(out, "Titles [%s]: %s (%s), %d records\n",
		outcome.Titles.Locale, action, rebuild.Reason, diff.CurrentTotal)
	fmt.Fprintln(out, renderTable(
		[]string{"ADDED", "REMOVED", "METADATA", "ICON URL", "BANNER URL", "UNCHANGED"},
		[][]string{{
			strconv.Itoa(diff.Added),
			strconv.Itoa(diff.Removed),
			strconv.Itoa(diff.MetadataChanged),
			strconv.Itoa(diff.IconURLChanged),
			strconv.Itoa(diff.BannerChanged),
			strconv.Itoa(diff.Unchanged),
		}},
		0, 1, 2, 3, 4, 5))

	if outcome.CheckOnly {
		fmt.Fprintln(out, yellow("check-only run, media and export stages skipped"))
		return
	}

	if len(outcome.Media) > 0 {
		rows := make([][]string, 0, len(outcome.Media))
		failed := 0
		for _, mo := range outcome.Media {
			counters := mo.Summary.Counters
			failed += counters.Failed
			row := []string{
				mo.Kind.String(),
				strconv.Itoa(counters.Total),
				strconv.Itoa(counters.OK),
				strconv.Itoa(counters.Failed),
				strconv.Itoa(counters.NewRows),
				strconv.Itoa(counters.UpdatedRows),
				strconv.Itoa(counters.Removed),
				strconv.Itoa(counters.Unchanged),
				"-",
				"-",
			}
			if store := mo.Summary.Store; store != nil {
				row[8] = strconv.FormatInt(store.Rows, 10)
				row[9] = humanize.IBytes(uint64(store.PayloadBytes))
			}
			rows = append(rows, row)
		}
		fmt.Fprintln(out, renderTable(
			[]string{"KIND", "TOTAL", "OK", "FAILED", "NEW", "UPDATED", "REMOVED", "UNCHANGED", "ROWS", "PAYLOAD"},
			rows,
			1, 2, 3, 4, 5, 6, 7, 8, 9))
		if failed > 0 {
			fmt.Fprintln(out, yellow(fmt.Sprintf("%d item(s) failed; details in the log", failed)))
		} else {
			fmt.Fprintln(out, green("media stores in sync"))
		}
	}

	if outcome.Export != nil {
		printExportResult(out, *outcome.Export)
	}
}
