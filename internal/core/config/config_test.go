package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "CCSHARE_ADDR", "DATABASE_PATH", "CCSHARE_PUBLIC_URL", "CCSHARE_STATIC_DIR", "DEBUG"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), Overrides{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":3006" {
		t.Errorf("Addr = %q, want :3006", cfg.Addr)
	}
	if cfg.CompactThreshold != DefaultCompactThreshold || cfg.CompactInterval != DefaultCompactInterval {
		t.Errorf("compaction defaults = %d, %s", cfg.CompactThreshold, cfg.CompactInterval)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoad_FileEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "page.mustache", "<h1>{{title}}</h1>")
	path := writeFile(t, dir, "config.toml", `
addr = ":9000"
database_path = "/tmp/shares.db"
public_url = "https://share.example.com/"
allowed_origins = ["https://app.example.com"]
compact_threshold = 10
compact_interval = "30s"
page_template = "page.mustache"
static_dir = "assets"
`)

	cfg, err := Load(path, Overrides{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9000" || cfg.DatabasePath != "/tmp/shares.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.PublicURL != "https://share.example.com" {
		t.Errorf("PublicURL = %q, want trailing slash trimmed", cfg.PublicURL)
	}
	if cfg.CompactThreshold != 10 || cfg.CompactInterval != 30*time.Second {
		t.Errorf("compaction = %d, %s", cfg.CompactThreshold, cfg.CompactInterval)
	}
	if cfg.PageTemplate != "<h1>{{title}}</h1>" {
		t.Errorf("PageTemplate = %q", cfg.PageTemplate)
	}
	if want := filepath.Join(dir, "assets"); cfg.StaticDir != want {
		t.Errorf("StaticDir = %q, want %q", cfg.StaticDir, want)
	}

	t.Setenv("PORT", "4000")
	t.Setenv("DEBUG", "1")
	cfg, err = Load(path, Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":4000" || !cfg.Debug {
		t.Errorf("env not applied: addr %q debug %v", cfg.Addr, cfg.Debug)
	}

	addr, debug := "127.0.0.1:1", false
	cfg, err = Load(path, Overrides{Addr: &addr, Debug: &debug})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != addr || cfg.Debug {
		t.Errorf("overrides not applied: addr %q debug %v", cfg.Addr, cfg.Debug)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `addr = `},
		{"bad interval", `compact_interval = "soon"`},
		{"negative threshold", `compact_threshold = -1`},
		{"missing template", `page_template = "nope.mustache"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.toml", tt.content)
			if _, err := Load(path, Overrides{}); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}
