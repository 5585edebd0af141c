package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// ShareSummary is a share row with log statistics, used for listings.
type ShareSummary struct {
	models.Share
	PendingEvents int   // events not yet folded into the snapshot
	SnapshotSeq   int64 // high-water mark of the snapshot, 0 when none
	NextSeq       int64
}

// CreateShare inserts a new share row.
func (db *DB) CreateShare(ctx context.Context, s *models.Share) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO shares (id, secret, session_id, next_seq, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`, s.ID, s.Secret, s.SessionID, toMillis(s.CreatedAt), toMillis(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

// GetShare loads a share row including its secret.
func (db *DB) GetShare(ctx context.Context, id string) (*models.Share, error) {
	return getShare(ctx, db.conn, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getShare(ctx context.Context, q queryer, id string) (*models.Share, error) {
	var s models.Share
	var created, updated int64
	err := q.QueryRowContext(ctx, `
		SELECT id, secret, session_id, created_at, updated_at
		FROM shares WHERE id = ?
	`, id).Scan(&s.ID, &s.Secret, &s.SessionID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	s.CreatedAt = fromMillis(created)
	s.UpdatedAt = fromMillis(updated)
	return &s, nil
}

// DeleteShare removes a share. Events and snapshot go with it through the
// cascading foreign keys.
func (db *DB) DeleteShare(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM shares WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete share: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete share: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListShares returns shares ordered by most recent update. limit <= 0
// means no limit.
func (db *DB) ListShares(ctx context.Context, limit int) ([]ShareSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			s.id, s.session_id, s.next_seq, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM share_events e WHERE e.share_id = s.id) AS pending,
			COALESCE((SELECT c.seq FROM share_compactions c WHERE c.share_id = s.id), 0) AS snapshot_seq
		FROM shares s
		ORDER BY s.updated_at DESC, s.id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var out []ShareSummary
	for rows.Next() {
		var s ShareSummary
		var created, updated int64
		if err := rows.Scan(&s.ID, &s.SessionID, &s.NextSeq, &created, &updated, &s.PendingEvents, &s.SnapshotSeq); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		s.CreatedAt = fromMillis(created)
		s.UpdatedAt = fromMillis(updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneShares deletes shares not updated since before and returns how
// many were removed.
func (db *DB) PruneShares(ctx context.Context, before time.Time) (int, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM shares WHERE updated_at < ?`, toMillis(before))
	if err != nil {
		return 0, fmt.Errorf("prune shares: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune shares: %w", err)
	}
	return int(n), nil
}
