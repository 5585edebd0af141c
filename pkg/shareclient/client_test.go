package shareclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/neilberkman/ccshare/internal/core/db"
	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/share"
	"github.com/neilberkman/ccshare/internal/interface/api"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := db.New(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(api.NewRouter(share.NewService(store), api.Options{}))
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := New(Config{BaseURL: u}); err == nil {
			t.Errorf("New(%q) error = nil, want error", u)
		}
	}
}

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	created, err := client.Create(ctx, "ses_1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" || created.Secret == "" {
		t.Fatalf("Create() = %+v, want id and secret", created)
	}

	events := []models.ShareData{
		models.Session{Data: models.SessionInfo{ID: "ses_1", Title: "demo"}},
		models.Message{Data: models.MessageInfo{ID: "m1", SessionID: "ses_1", Role: models.RoleUser, Time: models.MessageTime{Created: 10}}},
	}
	if err := client.Sync(ctx, created.ID, created.Secret, events); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	got, err := client.Data(ctx, created.ID)
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Data() returned %d events, want 2", len(got))
	}
	if s, ok := got[0].(models.Session); !ok || s.Data.Title != "demo" {
		t.Errorf("Data()[0] = %#v, want session titled demo", got[0])
	}

	err = client.Sync(ctx, created.ID, "wrong", events)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Sync() with wrong secret error = %v, want ErrUnauthorized", err)
	}

	if err := client.Remove(ctx, created.ID, created.Secret); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := client.Data(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Data() after remove error = %v, want ErrNotFound", err)
	}
}

func TestAPIErrorBody(t *testing.T) {
	e := newAPIError(400, []byte(`{"error":"bad","index":2,"field":"data.id","type":"part"}`))
	if e.Message != "bad" || e.Index == nil || *e.Index != 2 || e.Field != "data.id" || e.Type != "part" {
		t.Errorf("newAPIError() = %+v", e)
	}

	e = newAPIError(503, []byte("down"))
	if e.Message != "down" || !e.Retryable() {
		t.Errorf("newAPIError() = %+v, want retryable with raw body", e)
	}

	e = newAPIError(502, nil)
	if e.Message != "Bad Gateway" {
		t.Errorf("Message = %q, want status text", e.Message)
	}
}
