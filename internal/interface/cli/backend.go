package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/share"
	"github.com/neilberkman/ccshare/pkg/shareclient"
)

// backend is what the share commands need, served either by a remote
// server or by the local database.
type backend interface {
	Create(ctx context.Context, sessionID string) (*shareclient.Created, error)
	Sync(ctx context.Context, shareID, secret string, events []models.ShareData) error
	Data(ctx context.Context, shareID string) ([]models.ShareData, error)
	Remove(ctx context.Context, shareID, secret string) error
}

// localBackend runs operations directly against the database.
type localBackend struct {
	svc       *share.Service
	publicURL string
}

func (b *localBackend) Create(ctx context.Context, sessionID string) (*shareclient.Created, error) {
	s, err := b.svc.Create(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := &shareclient.Created{ID: s.ID, Secret: s.Secret}
	if base := strings.TrimRight(b.publicURL, "/"); base != "" {
		out.URL = base + "/share/" + s.ID
	}
	return out, nil
}

func (b *localBackend) Sync(ctx context.Context, shareID, secret string, events []models.ShareData) error {
	return b.svc.Sync(ctx, shareID, secret, events)
}

func (b *localBackend) Data(ctx context.Context, shareID string) ([]models.ShareData, error) {
	return b.svc.Data(ctx, shareID)
}

func (b *localBackend) Remove(ctx context.Context, shareID, secret string) error {
	return b.svc.Remove(ctx, shareID, secret)
}

// addServerFlag registers --server on a command that can run remotely.
func addServerFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serverURL, "server", "", "Talk to a ccshare server at this URL instead of the local database")
}

// openBackend returns the remote client when --server is set, the local
// database otherwise. The returned func releases it.
func openBackend(cmd *cobra.Command, logger *zap.Logger) (backend, func(), error) {
	if serverURL != "" {
		client, err := shareclient.New(shareclient.Config{BaseURL: serverURL, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}

	svc, cfg, closeFn, err := openService(cmd, logger)
	if err != nil {
		return nil, nil, err
	}
	return &localBackend{svc: svc, publicURL: cfg.PublicURL}, closeFn, nil
}

