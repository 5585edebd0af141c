// Package share implements the share registry and its event log.
package share

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/internal/core/db"
	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/state"
)

// DefaultCompactThreshold is the pending event count at which a read
// triggers compaction.
const DefaultCompactThreshold = 100

// dummySecret is compared against when a share does not exist so a miss
// costs the same as a mismatch.
const dummySecret = "0000000000000000000000000000000000000000000"

// Store is the persistence the service needs. *db.DB implements it.
type Store interface {
	CreateShare(ctx context.Context, s *models.Share) error
	GetShare(ctx context.Context, id string) (*models.Share, error)
	DeleteShare(ctx context.Context, id string) error
	ListShares(ctx context.Context, limit int) ([]db.ShareSummary, error)
	PruneShares(ctx context.Context, before time.Time) (int, error)
	AppendEvents(ctx context.Context, shareID string, events [][]byte) (int64, error)
	LoadLog(ctx context.Context, shareID string) (*db.ShareLog, error)
	Compact(ctx context.Context, shareID string, fold db.FoldFunc) (db.CompactStats, error)
	PendingShares(ctx context.Context, threshold int) ([]string, error)
	GetStats(ctx context.Context) (*db.Stats, error)
}

// Service owns every share: all reads and mutations go through it.
type Service struct {
	store     Store
	ids       IDGenerator
	secrets   SecretGenerator
	logger    *zap.Logger
	threshold int
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the UUID share id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithSecretGenerator replaces the random secret generator.
func WithSecretGenerator(g SecretGenerator) Option {
	return func(s *Service) { s.secrets = g }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCompactThreshold sets how many pending events make a read compact
// the share. Zero disables read-triggered compaction.
func WithCompactThreshold(n int) Option {
	return func(s *Service) { s.threshold = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a share service on top of store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		ids:       UUIDs{},
		secrets:   RandomSecrets{},
		logger:    zap.NewNop(),
		threshold: DefaultCompactThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new share for sessionID. Every call creates a
// distinct share.
func (s *Service) Create(ctx context.Context, sessionID string) (*models.Share, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidArgument)
	}

	secret, err := s.secrets.NewSecret()
	if err != nil {
		return nil, err
	}
	now := s.now()
	share := &models.Share{
		ID:        s.ids.NewID(),
		Secret:    secret,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateShare(ctx, share); err != nil {
		return nil, storageErr("create", err)
	}

	s.logger.Info("share created", zap.String("share_id", share.ID), zap.String("session_id", sessionID))
	return share, nil
}

// Get returns a share's metadata.
func (s *Service) Get(ctx context.Context, shareID string) (*models.Share, error) {
	share, err := s.store.GetShare(ctx, shareID)
	if err != nil {
		return nil, storageErr("get", err)
	}
	return share, nil
}

// VerifySecret reports whether secret opens shareID. A missing share is
// not an error, it just does not verify.
func (s *Service) VerifySecret(ctx context.Context, shareID, secret string) (bool, error) {
	_, err := s.authorize(ctx, shareID, secret)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) authorize(ctx context.Context, shareID, secret string) (*models.Share, error) {
	share, err := s.store.GetShare(ctx, shareID)
	if errors.Is(err, db.ErrNotFound) {
		subtle.ConstantTimeCompare([]byte(dummySecret), []byte(secret))
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("authorize", err)
	}
	if subtle.ConstantTimeCompare([]byte(share.Secret), []byte(secret)) != 1 {
		return nil, ErrUnauthorized
	}
	return share, nil
}

// Remove deletes a share together with its events and snapshot.
func (s *Service) Remove(ctx context.Context, shareID, secret string) error {
	if _, err := s.authorize(ctx, shareID, secret); err != nil {
		return err
	}
	if err := s.store.DeleteShare(ctx, shareID); err != nil {
		return storageErr("remove", err)
	}
	s.logger.Info("share removed", zap.String("share_id", shareID))
	return nil
}

// Sync appends events to a share's log in order. Either every event is
// stored or none is.
func (s *Service) Sync(ctx context.Context, shareID, secret string, events []models.ShareData) error {
	if _, err := s.authorize(ctx, shareID, secret); err != nil {
		return err
	}

	encoded := make([][]byte, len(events))
	for i, e := range events {
		b, err := models.Encode(e)
		if err != nil {
			return fmt.Errorf("%w: event %d: %v", ErrInvalidArgument, i, err)
		}
		encoded[i] = b
	}

	first, err := s.store.AppendEvents(ctx, shareID, encoded)
	if err != nil {
		return storageErr("sync", err)
	}
	s.logger.Debug("events appended",
		zap.String("share_id", shareID),
		zap.Int("events", len(events)),
		zap.Int64("first_seq", first),
	)
	return nil
}

// SyncRaw decodes a wire batch and appends it. A batch with any event
// that fails to decode is rejected with a *models.DecodeError before the
// secret is checked and nothing is stored.
func (s *Service) SyncRaw(ctx context.Context, shareID, secret string, raws []json.RawMessage) error {
	events, err := models.DecodeEvents(raws)
	if err != nil {
		return err
	}
	return s.Sync(ctx, shareID, secret, events)
}

// Data returns the share's current state as an event list. Reading a
// share with a long pending tail compacts it.
func (s *Service) Data(ctx context.Context, shareID string) ([]models.ShareData, error) {
	st, _, err := s.State(ctx, shareID)
	if err != nil {
		return nil, err
	}
	return st.Events(), nil
}

// State reconstructs the share's current state.
func (s *Service) State(ctx context.Context, shareID string) (*state.State, *models.Share, error) {
	log, err := s.store.LoadLog(ctx, shareID)
	if err != nil {
		return nil, nil, storageErr("read", err)
	}
	st, err := fold(log)
	if err != nil {
		return nil, nil, err
	}

	if s.threshold > 0 && len(log.Events) >= s.threshold {
		if _, err := s.Compact(ctx, shareID); err != nil {
			s.logger.Warn("read-triggered compaction failed", zap.String("share_id", shareID), zap.Error(err))
		}
	}
	return st, log.Share, nil
}

// CompactResult describes one compaction.
type CompactResult struct {
	Folded        int   // log events folded away
	Events        int   // events in the new snapshot
	SnapshotSeq   int64 // sequence the next unfolded event will have
	SnapshotBytes int
}

// Compact folds a share's pending events into its snapshot. Readers see
// the same state before and after.
func (s *Service) Compact(ctx context.Context, shareID string) (CompactResult, error) {
	var res CompactResult
	stats, err := s.store.Compact(ctx, shareID, func(log *db.ShareLog) ([]byte, error) {
		st, err := fold(log)
		if err != nil {
			return nil, err
		}
		events := models.Events(st.Events())
		res.Events = len(events)
		return json.Marshal(events)
	})
	if err != nil {
		return CompactResult{}, storageErr("compact", err)
	}

	res.Folded = stats.Folded
	res.SnapshotSeq = stats.SnapshotSeq
	res.SnapshotBytes = stats.SnapshotBytes
	if res.Folded > 0 {
		s.logger.Debug("share compacted",
			zap.String("share_id", shareID),
			zap.Int("folded", res.Folded),
			zap.Int("snapshot_events", res.Events),
			zap.Int("snapshot_bytes", res.SnapshotBytes),
		)
	}
	return res, nil
}

// CompactPending compacts every share whose pending tail reached the
// threshold and returns how many were compacted.
func (s *Service) CompactPending(ctx context.Context) (int, error) {
	threshold := s.threshold
	if threshold <= 0 {
		threshold = 1
	}
	ids, err := s.store.PendingShares(ctx, threshold)
	if err != nil {
		return 0, storageErr("pending", err)
	}

	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := s.Compact(ctx, id); err != nil {
			s.logger.Warn("compaction failed", zap.String("share_id", id), zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
}

// CompactAll compacts every share that has pending events.
func (s *Service) CompactAll(ctx context.Context) (int, error) {
	ids, err := s.store.PendingShares(ctx, 1)
	if err != nil {
		return 0, storageErr("pending", err)
	}
	n := 0
	for _, id := range ids {
		if _, err := s.Compact(ctx, id); err != nil {
			return n, fmt.Errorf("compact %s: %w", id, err)
		}
		n++
	}
	return n, nil
}

// List returns shares, most recently updated first.
func (s *Service) List(ctx context.Context, limit int) ([]db.ShareSummary, error) {
	list, err := s.store.ListShares(ctx, limit)
	if err != nil {
		return nil, storageErr("list", err)
	}
	return list, nil
}

// Prune deletes shares not updated since before.
func (s *Service) Prune(ctx context.Context, before time.Time) (int, error) {
	n, err := s.store.PruneShares(ctx, before)
	if err != nil {
		return 0, storageErr("prune", err)
	}
	if n > 0 {
		s.logger.Info("shares pruned", zap.Int("count", n), zap.Time("before", before))
	}
	return n, nil
}

// Stats returns storage totals.
func (s *Service) Stats(ctx context.Context) (*db.Stats, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, storageErr("stats", err)
	}
	return stats, nil
}

// fold rebuilds the state from a snapshot and the events after it.
func fold(log *db.ShareLog) (*state.State, error) {
	st := state.New()
	if log.Snapshot != nil {
		var snapshot models.Events
		if err := json.Unmarshal(log.Snapshot, &snapshot); err != nil {
			return nil, &CorruptError{ShareID: log.Share.ID, Seq: log.SnapshotSeq, Err: err}
		}
		st.Merge(snapshot)
	}

	events := make([]models.ShareData, 0, len(log.Events))
	for _, stored := range log.Events {
		e, err := models.DecodeEvent(stored.Data)
		if err != nil {
			return nil, &CorruptError{ShareID: log.Share.ID, Seq: stored.Seq, Err: err}
		}
		events = append(events, e)
	}
	st.Merge(events)
	return st, nil
}
