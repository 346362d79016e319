package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foildb/internal/config"
	"foildb/internal/export"
	"foildb/internal/fetch"
	"foildb/internal/logging"
	"foildb/internal/media"
	"foildb/internal/mediasync"
	"foildb/internal/report"
	"foildb/internal/services"
	"foildb/internal/titletool"
)

// Outcome aggregates what one run produced, stage by stage. Media is ordered
// by kind processing order; Export is nil unless the export stage ran.
type Outcome struct {
	RunID     string
	CheckOnly bool
	Titles    report.TitlesOutcome
	Media     []MediaOutcome
	Export    *export.Result
	Duration  time.Duration
}

// MediaOutcome pairs a media kind with its terminal summary.
type MediaOutcome struct {
	Kind    media.Kind
	Summary report.Summary
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithExtractor overrides the extraction tool client (used in tests).
func WithExtractor(extractor titletool.Extractor) Option {
	return func(r *Runner) {
		if extractor != nil {
			r.extractor = extractor
		}
	}
}

// WithFetcher overrides the image fetcher (used in tests).
func WithFetcher(fetcher mediasync.Fetcher) Option {
	return func(r *Runner) {
		if fetcher != nil {
			r.fetcher = fetcher
		}
	}
}

// WithObserver registers a callback that receives every progress emission,
// tagged with the media kind it belongs to.
func WithObserver(observer func(media.Kind, report.Progress)) Option {
	return func(r *Runner) {
		r.observer = observer
	}
}

// WithRunID pins the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// Runner executes one full synchronization run: the titles stage, one media
// sync per configured kind, and the optional export stage. All stages share
// one run identifier so their report files correlate.
type Runner struct {
	cfg       *config.Config
	base      *slog.Logger
	logger    *slog.Logger
	runID     string
	extractor titletool.Extractor
	fetcher   mediasync.Fetcher
	observer  func(media.Kind, report.Progress)
}

// New constructs a Runner over the given configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{
		cfg:    cfg,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "workflow"),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(runner)
	}
	if runner.extractor == nil {
		client, err := titletool.New(cfg.Titles.Tool, cfg.Titles.ToolTimeout)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "workflow", "extractor", "", err)
		}
		runner.extractor = client
	}
	if runner.fetcher == nil {
		runner.fetcher = fetch.NewFromConfig(cfg)
	}
	return runner, nil
}

// RunID returns the identifier shared by every stage of this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Run drives the pipeline to completion. A check-only configuration stops
// after the titles stage, before any media or export work.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	started := time.Now()
	outcome := Outcome{RunID: r.runID, CheckOnly: r.cfg.Sync.CheckOnly}

	if err := r.cfg.EnsureDirectories(); err != nil {
		return outcome, services.Wrap(services.ErrConfiguration, "workflow", "prepare", "", err)
	}

	ctx = services.WithRequestID(ctx, r.runID)

	r.logger.InfoContext(ctx, "run started",
		logging.String("mode", r.cfg.Sync.Mode),
		logging.String("locale", r.cfg.Titles.Locale),
		logging.Bool("check_only", r.cfg.Sync.CheckOnly))

	snapshot, titlesOutcome, err := r.runTitles(ctx)
	if err != nil {
		return outcome, err
	}
	outcome.Titles = titlesOutcome

	if r.cfg.Sync.CheckOnly {
		outcome.Duration = time.Since(started)
		r.logger.InfoContext(ctx, "check-only run complete",
			logging.Duration("duration", outcome.Duration))
		return outcome, nil
	}

	outcome.Media, err = r.runMedia(ctx, snapshot)
	if err != nil {
		return outcome, err
	}

	if r.cfg.Export.Enabled {
		result, exportErr := export.New(r.cfg, r.base).Run(ctx, export.Request{
			SourceDir: r.cfg.Paths.ArtefactsDir,
			OutputDir: r.cfg.Paths.ExportDir,
		})
		if exportErr != nil {
			return outcome, exportErr
		}
		outcome.Export = &result
	}

	outcome.Duration = time.Since(started)
	r.logger.InfoContext(ctx, "run complete",
		logging.Duration("duration", outcome.Duration))
	return outcome, nil
}
