package imagestore

import (
	"context"
	"fmt"
	"os"
)

// Stats summarizes store contents for run summaries and status output.
type Stats struct {
	Rows         int64 `json:"rows"`
	PayloadBytes int64 `json:"payload_bytes"`
	FileBytes    int64 `json:"file_bytes"`
}

// Stats reports row count, stored payload bytes, and on-disk database size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM images`,
	).Scan(&stats.Rows, &stats.PayloadBytes); err != nil {
		return Stats{}, fmt.Errorf("aggregate store stats: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.FileBytes = info.Size()
	}
	return stats, nil
}
