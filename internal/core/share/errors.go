package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/neilberkman/ccshare/internal/core/db"
)

var (
	// ErrNotFound means the share id is unknown.
	ErrNotFound = errors.New("share not found")
	// ErrUnauthorized means the secret does not match the share.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument rejects malformed input before any storage access.
	ErrInvalidArgument = errors.New("invalid argument")
)

// StorageError wraps a failure of the backing store. The operation did not
// take effect and may be retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the operation may succeed when repeated.
func (e *StorageError) Retryable() bool {
	return true
}

// CorruptError reports stored share data that no longer decodes. Seq is
// the event sequence, or the snapshot high-water mark for snapshots.
type CorruptError struct {
	ShareID string
	Seq     int64
	Err     error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("share %s corrupt at seq %d: %v", e.ShareID, e.Seq, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// storageErr classifies an error coming back from the store.
func storageErr(op string, err error) error {
	var se *db.SnapshotError
	var ce *CorruptError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return ErrNotFound
	case errors.As(err, &ce):
		return ce
	case errors.As(err, &se):
		return &CorruptError{ShareID: se.ShareID, Seq: se.Seq, Err: se.Err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &StorageError{Op: op, Err: err}
	}
}
