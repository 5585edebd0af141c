package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// StoredEvent is one row of the event log. Data is the event's JSON.
type StoredEvent struct {
	Seq  int64
	Data []byte
}

// ShareLog is everything needed to rebuild a share: the snapshot, if any,
// and the events appended after it.
type ShareLog struct {
	Share       *models.Share
	Snapshot    []byte // JSON array of events, nil when never compacted
	SnapshotSeq int64  // events below this sequence are folded into Snapshot
	Events      []StoredEvent
}

// AppendEvents appends encoded events to a share's log in order and
// returns the sequence of the first one. The whole batch commits or none
// of it does.
func (db *DB) AppendEvents(ctx context.Context, shareID string, events [][]byte) (int64, error) {
	var first int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT next_seq FROM shares WHERE id = ?`, shareID).Scan(&first)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read next_seq: %w", err)
		}

		now := toMillis(time.Now())
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO share_events (share_id, seq, data, created_at) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, data := range events {
			if _, err := stmt.ExecContext(ctx, shareID, first+int64(i), string(data), now); err != nil {
				return fmt.Errorf("insert event %d: %w", i, err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE shares SET next_seq = ?, updated_at = ? WHERE id = ?
		`, first+int64(len(events)), now, shareID)
		if err != nil {
			return fmt.Errorf("bump next_seq: %w", err)
		}
		return nil
	})
	return first, err
}

// LoadLog reads the snapshot and pending events of a share in one
// transaction, so the two always agree.
func (db *DB) LoadLog(ctx context.Context, shareID string) (*ShareLog, error) {
	var log *ShareLog
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		log, err = loadLog(ctx, tx, shareID)
		return err
	})
	return log, err
}

func loadLog(ctx context.Context, tx *sql.Tx, shareID string) (*ShareLog, error) {
	share, err := getShare(ctx, tx, shareID)
	if err != nil {
		return nil, err
	}
	log := &ShareLog{Share: share}

	var compressed []byte
	err = tx.QueryRowContext(ctx, `
		SELECT seq, data FROM share_compactions WHERE share_id = ?
	`, shareID).Scan(&log.SnapshotSeq, &compressed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("read snapshot: %w", err)
	default:
		log.Snapshot, err = decompressSnapshot(compressed)
		if err != nil {
			return nil, &SnapshotError{ShareID: shareID, Seq: log.SnapshotSeq, Err: err}
		}
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT seq, data FROM share_events
		WHERE share_id = ? AND seq >= ?
		ORDER BY seq
	`, shareID, log.SnapshotSeq)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e StoredEvent
		var data string
		if err := rows.Scan(&e.Seq, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Data = []byte(data)
		log.Events = append(log.Events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return log, nil
}

// PendingShares returns ids of shares with at least threshold events
// above their snapshot.
func (db *DB) PendingShares(ctx context.Context, threshold int) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT share_id FROM share_events
		GROUP BY share_id
		HAVING COUNT(*) >= ?
		ORDER BY share_id
	`, threshold)
	if err != nil {
		return nil, fmt.Errorf("pending shares: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan share id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
