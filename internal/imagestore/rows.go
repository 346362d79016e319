package imagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const rowColumns = "title_id, url, format, width, height, size_bytes, sha256, fetched_at, image"

// deleteChunkSize keeps IN clauses under SQLite's bound-parameter limit.
const deleteChunkSize = 400

// URLMap returns the persisted identifier to source URL mapping.
func (s *Store) URLMap(ctx context.Context) (map[string]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT title_id, url FROM images`)
	if err != nil {
		return nil, fmt.Errorf("query url map: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, fmt.Errorf("scan url map: %w", err)
		}
		result[id] = url
	}
	return result, rows.Err()
}

// UpsertBatch writes rows in one transaction, replacing any prior row per
// identifier in full. size_bytes always reflects the stored payload.
func (s *Store) UpsertBatch(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO images (`+rowColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(title_id) DO UPDATE SET
            url = excluded.url,
            format = excluded.format,
            width = excluded.width,
            height = excluded.height,
            size_bytes = excluded.size_bytes,
            sha256 = excluded.sha256,
            fetched_at = excluded.fetched_at,
            image = excluded.image`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if err := validateRow(row); err != nil {
			return err
		}
		fetchedAt := row.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			row.TitleID,
			row.URL,
			row.Format,
			row.Width,
			row.Height,
			int64(len(row.Image)),
			row.SHA256,
			fetchedAt.UTC().Format(time.RFC3339),
			row.Image,
		); err != nil {
			return fmt.Errorf("upsert row %s: %w", row.TitleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func validateRow(row Row) error {
	switch {
	case strings.TrimSpace(row.TitleID) == "":
		return errors.New("row requires a title id")
	case strings.TrimSpace(row.URL) == "":
		return fmt.Errorf("row %s requires a source url", row.TitleID)
	case strings.TrimSpace(row.SHA256) == "":
		return fmt.Errorf("row %s requires a source hash", row.TitleID)
	case len(row.Image) == 0:
		return fmt.Errorf("row %s requires image bytes", row.TitleID)
	}
	return nil
}

// DeleteBatch removes the given identifiers in one transaction and reports
// how many rows went away.
func (s *Store) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx = ensureContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed int64
	for start := 0; start < len(ids); start += deleteChunkSize {
		end := start + deleteChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		placeholders := makePlaceholders(len(chunk))
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM images WHERE title_id IN (`+placeholders+`)`, args...)
		if err != nil {
			return 0, fmt.Errorf("delete rows: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		removed += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	return removed, nil
}

// Get fetches a row by identifier, returning nil when absent.
func (s *Store) Get(ctx context.Context, titleID string) (*Row, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+rowColumns+` FROM images WHERE title_id = ?`, titleID)
	result, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get row: %w", err)
	}
	return result, nil
}

// Payload carries the fields serialized into an image pack.
type Payload struct {
	TitleID string
	Format  string
	Image   []byte
}

// ForEachPayload streams pack-relevant fields for every row, ordered by identifier.
func (s *Store) ForEachPayload(ctx context.Context, fn func(Payload) error) error {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT title_id, format, image FROM images ORDER BY title_id`)
	if err != nil {
		return fmt.Errorf("query payloads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload Payload
		if err := rows.Scan(&payload.TitleID, &payload.Format, &payload.Image); err != nil {
			return fmt.Errorf("scan payload: %w", err)
		}
		if err := fn(payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Clear removes every row from the store.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.db.ExecContext(ctx, `DELETE FROM images`)
	if err != nil {
		return 0, fmt.Errorf("clear store: %w", err)
	}
	return res.RowsAffected()
}

// Count reports how many rows the store holds.
func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

func scanRow(scanner interface{ Scan(dest ...any) error }) (*Row, error) {
	var (
		titleID    string
		url        string
		format     string
		width      sql.NullInt64
		height     sql.NullInt64
		sizeBytes  sql.NullInt64
		hash       string
		fetchedRaw string
		image      []byte
	)
	if err := scanner.Scan(&titleID, &url, &format, &width, &height, &sizeBytes, &hash, &fetchedRaw, &image); err != nil {
		return nil, err
	}

	row := &Row{
		TitleID:   titleID,
		URL:       url,
		Format:    format,
		Width:     int(width.Int64),
		Height:    int(height.Int64),
		SizeBytes: sizeBytes.Int64,
		SHA256:    hash,
		Image:     image,
	}
	if fetched, err := time.Parse(time.RFC3339, fetchedRaw); err == nil {
		row.FetchedAt = fetched
	}
	return row, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
