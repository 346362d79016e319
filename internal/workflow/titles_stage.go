package workflow

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"foildb/internal/logging"
	"foildb/internal/report"
	"foildb/internal/services"
	"foildb/internal/titles"
)

// titlesStage names the report pair written by the titles stage.
const titlesStage = "titles"

// runTitles decides whether the generated snapshot must be rebuilt, rebuilds
// it through the extraction tool when needed, and always writes a diff report
// comparing the snapshot before and after. The returned snapshot feeds the
// media stages.
func (r *Runner) runTitles(ctx context.Context) (*titles.Snapshot, report.TitlesOutcome, error) {
	started := time.Now().UTC()
	ctx = services.WithStage(ctx, titlesStage)
	generatedPath := r.cfg.TitlesJSONPath()

	decision, err := titles.DecideRebuild(generatedPath, r.cfg.RawFeedPath(), r.cfg.SourceHashPath(), r.cfg.Titles.Refresh)
	if err != nil {
		return nil, report.TitlesOutcome{}, err
	}

	previous := titles.EmptySnapshot()
	if _, statErr := os.Stat(generatedPath); statErr == nil {
		prior, loadErr := titles.LoadSnapshot(generatedPath)
		switch {
		case loadErr == nil:
			previous = prior
		case decision.Rebuild:
			r.logger.WarnContext(ctx, "prior snapshot unreadable, diffing against empty",
				logging.String("path", generatedPath),
				logging.Error(loadErr))
		default:
			return nil, report.TitlesOutcome{}, loadErr
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, report.TitlesOutcome{}, services.Wrap(services.ErrSource, titlesStage, "load", generatedPath, statErr)
	}

	current := previous
	if decision.Rebuild {
		r.logger.InfoContext(ctx, "regenerating title snapshot",
			logging.String("locale", r.cfg.Titles.Locale),
			logging.String("reason", string(decision.Reason)))
		onLine := func(line string) {
			r.logger.DebugContext(ctx, "extraction tool output", logging.String("line", line))
		}
		if err := r.extractor.Extract(ctx, r.cfg.Titles.Locale, generatedPath, onLine); err != nil {
			return nil, report.TitlesOutcome{}, services.Wrap(services.ErrExternalTool, titlesStage, "extract", r.cfg.Titles.Locale, err)
		}
		current, err = titles.LoadSnapshot(generatedPath)
		if err != nil {
			return nil, report.TitlesOutcome{}, err
		}
		if err := titles.WriteMarker(r.cfg.SourceHashPath(), decision.CurrentHash); err != nil {
			return nil, report.TitlesOutcome{}, err
		}
	}

	diff := titles.Diff(previous, current)
	outcome := report.TitlesOutcome{
		Locale:  r.cfg.Titles.Locale,
		Rebuild: decision,
		Diff:    diff,
	}

	finished := time.Now().UTC()
	summary := report.Summary{
		Stage:           titlesStage,
		RunID:           r.runID,
		StartedAt:       started,
		FinishedAt:      finished,
		DurationSeconds: finished.Sub(started).Seconds(),
		Counters:        report.Counters{Total: current.Len(), Processed: current.Len()},
		Titles:          &outcome,
	}
	if err := report.WriteTerminal(r.cfg.Paths.ArtefactsDir, summary); err != nil {
		return nil, report.TitlesOutcome{}, services.Wrap(services.ErrStore, titlesStage, "report", "", err)
	}

	r.logger.InfoContext(ctx, "titles stage complete",
		logging.String("locale", r.cfg.Titles.Locale),
		logging.Bool("rebuilt", decision.Rebuild),
		logging.String("reason", string(decision.Reason)),
		logging.Int("titles", current.Len()),
		logging.Int("added", diff.Added),
		logging.Int("removed", diff.Removed),
		logging.Int("metadata_changed", diff.MetadataChanged),
		logging.Int("icon_url_changed", diff.IconURLChanged),
		logging.Int("banner_url_changed", diff.BannerChanged),
		logging.Int("unchanged", diff.Unchanged))

	return current, outcome, nil
}
