package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/ccshare/internal/core/db"
	"github.com/neilberkman/ccshare/internal/core/share"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func field(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, name+":"); ok {
			return strings.TrimSpace(v)
		}
	}
	t.Fatalf("no %s in output:\n%s", name, out)
	return ""
}

const eventsJSONL = `{"type":"session","data":{"id":"ses_1","title":"Port the importer","time":{"created":1}}}
{"type":"message","data":{"id":"m1","sessionID":"ses_1","role":"user","time":{"created":10}}}
{"type":"part","data":{"id":"p1","sessionID":"ses_1","messageID":"m1","type":"text","text":"move it to go"}}
`

func TestShareLifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "shares.db")
	cfg := filepath.Join(dir, "config.toml")
	base := []string{"--db", db, "--config", cfg}
	with := func(args ...string) []string { return append(args, base...) }

	out, err := run(t, with("create", "ses_1")...)
	require.NoError(t, err)
	id := field(t, out, "ID")
	secret := field(t, out, "Secret")
	require.NotEmpty(t, id)
	require.NotEmpty(t, secret)

	eventsFile := filepath.Join(dir, "events.jsonl")
	require.NoError(t, os.WriteFile(eventsFile, []byte(eventsJSONL), 0o644))

	_, err = run(t, with("sync", id, "--secret", "wrong", "--file", eventsFile)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")

	_, err = run(t, with("sync", id, "--secret", secret, "--file", eventsFile)...)
	require.NoError(t, err)

	out, err = run(t, with("data", id)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "session"`)
	assert.Contains(t, out, "move it to go")

	out, err = run(t, with("show", id, "--width", "0")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Port the importer")
	assert.Contains(t, out, "move it to go")

	out, err = run(t, with("export", id, "--format", "md")...)
	require.NoError(t, err)
	assert.Contains(t, out, "# Port the importer")

	_, err = run(t, with("export", id, "--format", "yaml", "-o", dir)...)
	require.NoError(t, err)
	shortID := id
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	_, err = os.Stat(filepath.Join(dir, "share-"+shortID+".yaml"))
	assert.NoError(t, err)

	out, err = run(t, with("compact", id)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Folded 3 event(s)")

	out, err = run(t, with("list")...)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "0 pending, 3 compacted")

	out, err = run(t, with("stats")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Shares:      1")

	_, err = run(t, with("rm", id, "--secret", secret)...)
	require.NoError(t, err)

	_, err = run(t, with("data", id)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share not found")
}

func TestLocalBackendShareURL(t *testing.T) {
	database, err := db.New(filepath.Join(t.TempDir(), "shares.db"))
	require.NoError(t, err)
	defer func() {
		_ = database.Close()
	}()
	svc := share.NewService(database)

	tests := []struct {
		publicURL string
		wantBase  string
	}{
		{"https://share.example.com", "https://share.example.com"},
		{"https://share.example.com/", "https://share.example.com"},
		{"https://share.example.com//", "https://share.example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		b := &localBackend{svc: svc, publicURL: tt.publicURL}
		created, err := b.Create(context.Background(), "ses_1")
		require.NoError(t, err)
		want := ""
		if tt.wantBase != "" {
			want = tt.wantBase + "/share/" + created.ID
		}
		assert.Equal(t, want, created.URL, "public url %q", tt.publicURL)
	}
}

func TestCompactRequiresTarget(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "compact", "--db", filepath.Join(dir, "s.db"), "--config", filepath.Join(dir, "c.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either a share id or --all")
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--db", filepath.Join(dir, "s.db"), "--config", filepath.Join(dir, "c.toml")}

	_, err := run(t, append([]string{"create", "ses_old"}, base...)...)
	require.NoError(t, err)

	out, err := run(t, append([]string{"prune", "--before", "2 weeks ago"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 0 share(s)")

	tomorrow := time.Now().Add(24 * time.Hour).Format("2006-01-02")
	out, err = run(t, append([]string{"prune", "--before", tomorrow}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 1 share(s)")
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	got, err := parseDate("2025-01-02", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDate("2025-01-02T03:04:05Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), got.UTC())

	got, err = parseDate("2 weeks ago", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-14*24*time.Hour), got)

	_, err = parseDate("zzqx", now)
	assert.Error(t, err)
}
