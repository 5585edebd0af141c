package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Stats represents database statistics
type Stats struct {
	TotalShares      int
	PendingEvents    int
	CompactedShares  int
	SnapshotBytes    int64
	OldestShare      time.Time
	LastUpdatedShare time.Time
}

// GetStats returns totals over all shares
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM shares").Scan(&stats.TotalShares)
	if err != nil {
		return nil, fmt.Errorf("count shares: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM share_events").Scan(&stats.PendingEvents)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(LENGTH(data)), 0) FROM share_compactions").
		Scan(&stats.CompactedShares, &stats.SnapshotBytes)
	if err != nil {
		return nil, fmt.Errorf("count snapshots: %w", err)
	}

	if stats.TotalShares > 0 {
		var minCreated, maxUpdated sql.NullInt64
		err = db.conn.QueryRowContext(ctx, "SELECT MIN(created_at), MAX(updated_at) FROM shares").Scan(&minCreated, &maxUpdated)
		if err != nil {
			return nil, fmt.Errorf("share time range: %w", err)
		}
		if minCreated.Valid {
			stats.OldestShare = fromMillis(minCreated.Int64)
		}
		if maxUpdated.Valid {
			stats.LastUpdatedShare = fromMillis(maxUpdated.Int64)
		}
	}

	return stats, nil
}
