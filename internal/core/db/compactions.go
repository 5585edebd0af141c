package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Snapshots are stored zstd compressed. Encoder and decoder are safe for
// concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("db: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("db: zstd decoder initialization failed: " + err.Error())
	}
}

func compressSnapshot(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/4))
}

func decompressSnapshot(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

// SnapshotError reports a stored snapshot that cannot be decompressed.
type SnapshotError struct {
	ShareID string
	Seq     int64
	Err     error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot of share %s at seq %d: %v", e.ShareID, e.Seq, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// FoldFunc turns a share log into a new snapshot (a JSON array of events).
type FoldFunc func(log *ShareLog) ([]byte, error)

// CompactStats describes one compaction.
type CompactStats struct {
	Folded        int   // events removed from the log
	SnapshotSeq   int64 // new high-water mark
	SnapshotBytes int   // compressed size
}

// Compact folds a share's pending events into its snapshot. Loading,
// folding, writing the snapshot and deleting the folded events happen in
// one transaction. Nothing is written when there are no pending events.
func (db *DB) Compact(ctx context.Context, shareID string, fold FoldFunc) (CompactStats, error) {
	var stats CompactStats
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		log, err := loadLog(ctx, tx, shareID)
		if err != nil {
			return err
		}
		stats.SnapshotSeq = log.SnapshotSeq
		if len(log.Events) == 0 {
			return nil
		}

		snapshot, err := fold(log)
		if err != nil {
			return err
		}
		compressed := compressSnapshot(snapshot)
		hw := log.Events[len(log.Events)-1].Seq + 1

		_, err = tx.ExecContext(ctx, `
			INSERT INTO share_compactions (share_id, seq, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(share_id) DO UPDATE SET
				seq = excluded.seq,
				data = excluded.data,
				updated_at = excluded.updated_at
		`, shareID, hw, compressed, toMillis(time.Now()))
		if err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM share_events WHERE share_id = ? AND seq < ?`, shareID, hw)
		if err != nil {
			return fmt.Errorf("delete folded events: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete folded events: %w", err)
		}

		stats = CompactStats{Folded: int(n), SnapshotSeq: hw, SnapshotBytes: len(compressed)}
		return nil
	})
	return stats, err
}
