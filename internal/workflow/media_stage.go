package workflow

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"foildb/internal/imageproc"
	"foildb/internal/imagestore"
	"foildb/internal/media"
	"foildb/internal/mediasync"
	"foildb/internal/report"
	"foildb/internal/services"
	"foildb/internal/titles"
)

// runMedia synchronizes every kind the configured mode selects. Kinds own
// disjoint stores, so they run in parallel; the first fatal error cancels the
// remaining engines.
func (r *Runner) runMedia(ctx context.Context, snapshot *titles.Snapshot) ([]MediaOutcome, error) {
	kinds, err := media.KindsForMode(r.cfg.Sync.Mode)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sync", "mode", "", err)
	}

	normalizer := imageproc.New(r.cfg.Image.Edge, r.cfg.Image.Quality)

	var mu sync.Mutex
	summaries := make(map[media.Kind]report.Summary, len(kinds))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		group.Go(func() error {
			storePath := filepath.Join(r.cfg.Paths.ArtefactsDir, kind.StoreFilename())
			store, err := imagestore.Open(storePath)
			if err != nil {
				return services.Wrap(services.ErrStore, kind.String(), "open store", storePath, err)
			}
			defer store.Close()

			opts := []mediasync.Option{mediasync.WithRunID(r.runID)}
			if r.observer != nil {
				opts = append(opts, mediasync.WithObserver(func(progress report.Progress) {
					r.observer(kind, progress)
				}))
			}
			engine := mediasync.New(r.cfg, kind, store, r.fetcher, normalizer, r.base, opts...)
			summary, err := engine.Run(services.WithStage(groupCtx, kind.String()), snapshot.URLMap(kind))
			if err != nil {
				return err
			}

			mu.Lock()
			summaries[kind] = summary
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	outcomes := make([]MediaOutcome, 0, len(kinds))
	for _, kind := range kinds {
		outcomes = append(outcomes, MediaOutcome{Kind: kind, Summary: summaries[kind]})
	}
	return outcomes, nil
}
