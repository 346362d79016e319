package mediasync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foildb/internal/config"
	"foildb/internal/imageproc"
	"foildb/internal/imagestore"
	"foildb/internal/logging"
	"foildb/internal/media"
	"foildb/internal/report"
	"foildb/internal/services"
)

const (
	defaultBatchSize     = 50
	defaultProgressEvery = 25
)

// Fetcher retrieves original image bytes for a source URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Normalizer converts fetched bytes into the stored encoded form.
type Normalizer interface {
	Normalize(src []byte) (imageproc.Result, error)
}

// Observer receives every progress snapshot the engine emits, including the
// terminal one. Used by the CLI to drive interactive rendering.
type Observer func(report.Progress)

// Engine synchronizes one media kind's row store against a wanted
// identifier→URL map. The store is the durable source of truth: each run
// recomputes its plan from current store contents, so interrupted runs need
// no recovery beyond running again.
type Engine struct {
	kind          media.Kind
	store         *imagestore.Store
	fetcher       Fetcher
	normalizer    Normalizer
	logger        *slog.Logger
	reportDir     string
	runID         string
	batchSize     int
	progressEvery int
	reset         bool
	observer      Observer
	sampler       *logging.ProgressSampler
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithObserver registers a progress callback.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithRunID pins the run correlation identifier instead of generating one.
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// New builds an engine for one media kind. Batch size, progress cadence, and
// the reset flag come from cfg; the report pair is written beneath the
// artefacts directory.
func New(cfg *config.Config, kind media.Kind, store *imagestore.Store, fetcher Fetcher, normalizer Normalizer, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		kind:          kind,
		store:         store,
		fetcher:       fetcher,
		normalizer:    normalizer,
		logger:        logging.NewComponentLogger(logger, "mediasync"),
		reportDir:     cfg.Paths.ArtefactsDir,
		runID:         uuid.NewString(),
		batchSize:     cfg.Sync.BatchSize,
		progressEvery: cfg.Sync.ProgressInterval,
		reset:         cfg.Sync.Reset,
		sampler:       logging.NewProgressSampler(0),
	}
	if engine.batchSize <= 0 {
		engine.batchSize = defaultBatchSize
	}
	if engine.progressEvery <= 0 {
		engine.progressEvery = defaultProgressEvery
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Run executes one synchronization pass: plan against current store
// contents, delete rows no longer wanted, fetch/normalize/upsert the rest in
// batches, then write the terminal report pair. Per-item fetch and decode
// failures are counted and logged but never abort the run; store and report
// failures do. An empty plan still produces a completed report pair.
func (e *Engine) Run(ctx context.Context, wanted map[string]string) (report.Summary, error) {
	stage := e.kind.String()
	started := time.Now().UTC()
	counters := report.Counters{}

	ctx = services.WithStage(services.WithRequestID(ctx, e.runID), stage)

	e.logger.InfoContext(ctx, "sync starting", logging.Int("wanted", len(wanted)))
	e.emit(ctx, report.StatePlanning, counters, started)

	if e.reset {
		cleared, err := e.store.Clear(ctx)
		if err != nil {
			return report.Summary{}, services.Wrap(services.ErrStore, stage, "reset", "", err)
		}
		e.logger.InfoContext(ctx, "store reset", logging.Int64("cleared_rows", cleared))
	}

	existing, err := e.store.URLMap(ctx)
	if err != nil {
		return report.Summary{}, services.Wrap(services.ErrStore, stage, "plan", "", err)
	}

	plan := BuildPlan(existing, wanted)
	counters.Total = len(plan.Items)
	counters.Unchanged = plan.Unchanged

	if len(plan.Removed) > 0 {
		removed, err := e.store.DeleteBatch(ctx, plan.Removed)
		if err != nil {
			return report.Summary{}, services.Wrap(services.ErrStore, stage, "remove", "", err)
		}
		counters.Removed = int(removed)
		e.logger.InfoContext(ctx, "stale rows removed", logging.Int("count", counters.Removed))
	}

	e.logger.InfoContext(ctx, "plan computed",
		logging.Int("to_process", len(plan.Items)),
		logging.Int("unchanged", plan.Unchanged),
		logging.Int("removed", len(plan.Removed)))
	e.emit(ctx, report.StateExecuting, counters, started)

	batch := make([]imagestore.Row, 0, e.batchSize)
	for _, item := range plan.Items {
		if ctx.Err() != nil {
			return report.Summary{}, fmt.Errorf("sync %s interrupted: %w", stage, ctx.Err())
		}

		itemCtx := services.WithTitleID(ctx, item.TitleID)
		row, err := e.processItem(itemCtx, item)
		counters.Processed++
		if err != nil {
			if ctx.Err() != nil {
				return report.Summary{}, fmt.Errorf("sync %s interrupted: %w", stage, ctx.Err())
			}
			counters.Failed++
			e.logger.WarnContext(itemCtx, "item failed",
				logging.String("url", item.URL),
				logging.Error(err))
		} else {
			batch = append(batch, row)
			counters.OK++
			if item.New {
				counters.NewRows++
			} else {
				counters.UpdatedRows++
			}
			if len(batch) >= e.batchSize {
				if err := e.flush(ctx, &batch); err != nil {
					return report.Summary{}, services.Wrap(services.ErrStore, stage, "commit", "", err)
				}
			}
		}

		if counters.Processed%e.progressEvery == 0 {
			e.emit(ctx, report.StateExecuting, counters, started)
		}
	}

	if err := e.flush(ctx, &batch); err != nil {
		return report.Summary{}, services.Wrap(services.ErrStore, stage, "commit", "", err)
	}

	e.emit(ctx, report.StateFinalizing, counters, started)

	stats, err := e.store.Stats(ctx)
	if err != nil {
		return report.Summary{}, services.Wrap(services.ErrStore, stage, "finalize", "", err)
	}

	finished := time.Now().UTC()
	summary := report.Summary{
		Stage:           stage,
		RunID:           e.runID,
		StartedAt:       started,
		FinishedAt:      finished,
		DurationSeconds: finished.Sub(started).Seconds(),
		Counters:        counters,
		Store: &report.StoreSnapshot{
			Rows:         stats.Rows,
			PayloadBytes: stats.PayloadBytes,
			FileBytes:    stats.FileBytes,
		},
	}
	if err := report.WriteTerminal(e.reportDir, summary); err != nil {
		return report.Summary{}, services.Wrap(services.ErrStore, stage, "report", "", err)
	}
	if e.observer != nil {
		terminal := report.TerminalProgress(summary)
		e.observer(terminal)
	}

	e.logger.InfoContext(ctx, "sync complete",
		logging.Int("ok", counters.OK),
		logging.Int("failed", counters.Failed),
		logging.Int("new_rows", counters.NewRows),
		logging.Int("updated_rows", counters.UpdatedRows),
		logging.Int("removed", counters.Removed),
		logging.Int("unchanged", counters.Unchanged),
		logging.Int64("store_rows", stats.Rows),
		logging.Duration("elapsed", finished.Sub(started)))
	return summary, nil
}

// processItem fetches one source image, hashes the original bytes, and
// normalizes them into the stored row. The row's persisted hash is always the
// hash of the bytes as fetched, not of the re-encoded payload.
func (e *Engine) processItem(ctx context.Context, item PlanItem) (imagestore.Row, error) {
	data, err := e.fetcher.Get(ctx, item.URL)
	if err != nil {
		return imagestore.Row{}, services.Wrap(services.ErrTransient, e.kind.String(), "fetch", item.TitleID, err)
	}
	sum := sha256.Sum256(data)

	result, err := e.normalizer.Normalize(data)
	if err != nil {
		return imagestore.Row{}, err
	}

	return imagestore.Row{
		TitleID: item.TitleID,
		URL:     item.URL,
		Format:  result.Format,
		Width:   result.Width,
		Height:  result.Height,
		SHA256:  hex.EncodeToString(sum[:]),
		Image:   result.Data,
	}, nil
}

func (e *Engine) flush(ctx context.Context, batch *[]imagestore.Row) error {
	if len(*batch) == 0 {
		return nil
	}
	if err := e.store.UpsertBatch(ctx, *batch); err != nil {
		return err
	}
	*batch = (*batch)[:0]
	return nil
}

// emit overwrites the progress file and notifies the observer. A failed
// progress write degrades observability but never stops the run.
func (e *Engine) emit(ctx context.Context, state string, counters report.Counters, started time.Time) {
	progress := report.Snapshot(e.kind.String(), state, counters, started, time.Now().UTC())
	progress.RunID = e.runID
	if err := report.WriteProgress(e.reportDir, progress); err != nil {
		e.logger.WarnContext(ctx, "progress write failed", logging.Error(err))
	}
	if e.observer != nil {
		e.observer(progress)
	}

	percent := float64(-1)
	if counters.Total > 0 {
		percent = float64(counters.Processed) / float64(counters.Total) * 100
	}
	if e.sampler.ShouldLog(percent, state) {
		e.logger.InfoContext(ctx, "progress",
			logging.String("state", state),
			logging.Int("processed", counters.Processed),
			logging.Int("total", counters.Total),
			logging.Int("failed", counters.Failed),
			logging.Float64("rate_per_sec", progress.RatePerSec),
			logging.Float64("eta_seconds", progress.ETASeconds))
	}
}
