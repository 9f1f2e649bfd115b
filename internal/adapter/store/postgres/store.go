package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dayanaadylkhanova/page-analytics/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Init(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS page_analytics (
	page        TEXT   PRIMARY KEY,
	page_views  BIGINT NOT NULL,
	impressions BIGINT NOT NULL,
	clicks      BIGINT NOT NULL
);
`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// upsertChunk keeps every statement well below the 65535 bind parameter limit.
const upsertChunk = 1000

type pageRow struct {
	page                       string
	views, impressions, clicks int64
}

// splitRows converts a snapshot into BIGINT rows. Pages with a counter above
// math.MaxInt64 cannot be stored and are returned separately.
func splitRows(snap entity.Snapshot) (rows []pageRow, skipped []string) {
	rows = make([]pageRow, 0, len(snap.Analytics))
	for page, c := range snap.Analytics {
		if c.PageViews > math.MaxInt64 || c.Impressions > math.MaxInt64 || c.Clicks > math.MaxInt64 {
			skipped = append(skipped, page)
			continue
		}
		rows = append(rows, pageRow{page: page, views: int64(c.PageViews), impressions: int64(c.Impressions), clicks: int64(c.Clicks)})
	}
	return rows, skipped
}

func upsertSQL(rows []pageRow) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO page_analytics (page, page_views, impressions, clicks) VALUES ")
	args := make([]any, 0, len(rows)*4)
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(",")
		}
		o := i*4 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d)", o, o+1, o+2, o+3)
		args = append(args, r.page, r.views, r.impressions, r.clicks)
	}
	sb.WriteString(` ON CONFLICT (page) DO UPDATE SET
	page_views = EXCLUDED.page_views,
	impressions = EXCLUDED.impressions,
	clicks = EXCLUDED.clicks`)
	return sb.String(), args
}

// Save implements service.SnapshotStore. Every page is written with replace
// semantics in one transaction; pages are never removed from the store, so no
// DELETE is needed. Out-of-range pages are skipped and logged, the rest is saved.
func (s *Store) Save(ctx context.Context, snap entity.Snapshot) error {
	rows, skipped := splitRows(snap)
	if len(skipped) > 0 {
		s.log.Warn("pages skipped: counter exceeds BIGINT range", zap.Strings("pages", skipped))
	}
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for start := 0; start < len(rows); start += upsertChunk {
		end := min(start+upsertChunk, len(rows))
		sql, args := upsertSQL(rows[start:end])
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("upsert page_analytics: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load implements service.SnapshotStore
func (s *Store) Load(ctx context.Context) (entity.Snapshot, error) {
	const q = `SELECT page, page_views, impressions, clicks FROM page_analytics`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return entity.Snapshot{}, err
	}
	defer rows.Close()
	snap := entity.NewSnapshot()
	for rows.Next() {
		var page string
		var views, impressions, clicks int64
		if err := rows.Scan(&page, &views, &impressions, &clicks); err != nil {
			return entity.Snapshot{}, err
		}
		snap.Analytics[page] = entity.Counters{
			PageViews:   uint64(views),
			Impressions: uint64(impressions),
			Clicks:      uint64(clicks),
		}
	}
	return snap, rows.Err()
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
