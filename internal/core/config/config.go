package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort             = 3006
	DefaultCompactThreshold = 100
	DefaultCompactInterval  = 5 * time.Minute
)

// Config holds server and CLI configuration.
type Config struct {
	Addr             string
	DatabasePath     string
	PublicURL        string // base for share links, derived from request headers when empty
	AllowedOrigins   []string
	Debug            bool
	CompactThreshold int
	CompactInterval  time.Duration
	PageTemplate     string // contents of page_template, empty for the built-in page
	StaticDir        string // served under /static when set
}

type tomlConfig struct {
	Addr             string   `toml:"addr"`
	DatabasePath     string   `toml:"database_path"`
	PublicURL        string   `toml:"public_url"`
	AllowedOrigins   []string `toml:"allowed_origins"`
	Debug            *bool    `toml:"debug"`
	CompactThreshold *int     `toml:"compact_threshold"`
	CompactInterval  string   `toml:"compact_interval"`
	PageTemplate     string   `toml:"page_template"`
	StaticDir        string   `toml:"static_dir"`
}

// Overrides optionally overrides values from the file and environment.
//
// A nil pointer means "use the file/environment/default value".
type Overrides struct {
	Addr         *string
	DatabasePath *string
	PublicURL    *string
	Debug        *bool
}

// Dir returns ~/.config/ccshare, or the working directory if there is no
// home directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ccshare")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultDatabasePath is the database used when nothing else is configured.
func DefaultDatabasePath() string {
	return filepath.Join(Dir(), "shares.db")
}

// Load reads path (DefaultPath when empty), then the environment, then
// overrides. A missing file is not an error.
func Load(path string, overrides Overrides) (*Config, error) {
	cfg := &Config{
		Addr:             fmt.Sprintf(":%d", DefaultPort),
		DatabasePath:     DefaultDatabasePath(),
		AllowedOrigins:   []string{"*"},
		CompactThreshold: DefaultCompactThreshold,
		CompactInterval:  DefaultCompactInterval,
	}

	if path == "" {
		path = DefaultPath()
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.loadEnv()

	if overrides.Addr != nil {
		cfg.Addr = *overrides.Addr
	}
	if overrides.DatabasePath != nil {
		cfg.DatabasePath = *overrides.DatabasePath
	}
	if overrides.PublicURL != nil {
		cfg.PublicURL = *overrides.PublicURL
	}
	if overrides.Debug != nil {
		cfg.Debug = *overrides.Debug
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return cfg, nil
}

func (cfg *Config) loadFile(path string) error {
	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if tc.Addr != "" {
		cfg.Addr = tc.Addr
	}
	if tc.DatabasePath != "" {
		cfg.DatabasePath = expandHome(tc.DatabasePath)
	}
	cfg.PublicURL = tc.PublicURL
	if len(tc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = tc.AllowedOrigins
	}
	if tc.Debug != nil {
		cfg.Debug = *tc.Debug
	}
	if tc.CompactThreshold != nil {
		if *tc.CompactThreshold < 0 {
			return fmt.Errorf("compact_threshold must not be negative, got %d", *tc.CompactThreshold)
		}
		cfg.CompactThreshold = *tc.CompactThreshold
	}
	if tc.CompactInterval != "" {
		d, err := time.ParseDuration(tc.CompactInterval)
		if err != nil {
			return fmt.Errorf("invalid compact_interval %q: %w", tc.CompactInterval, err)
		}
		cfg.CompactInterval = d
	}

	// Template path is relative to the config file.
	if tc.PageTemplate != "" {
		tmplPath := expandHome(tc.PageTemplate)
		if !filepath.IsAbs(tmplPath) {
			tmplPath = filepath.Join(filepath.Dir(path), tmplPath)
		}
		data, err := os.ReadFile(tmplPath)
		if err != nil {
			return fmt.Errorf("failed to read page template: %w", err)
		}
		cfg.PageTemplate = string(data)
	}

	if tc.StaticDir != "" {
		cfg.StaticDir = expandHome(tc.StaticDir)
		if !filepath.IsAbs(cfg.StaticDir) {
			cfg.StaticDir = filepath.Join(filepath.Dir(path), cfg.StaticDir)
		}
	}
	return nil
}

func (cfg *Config) loadEnv() {
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			cfg.Addr = fmt.Sprintf(":%d", p)
		}
	}
	if addr := os.Getenv("CCSHARE_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if url := os.Getenv("CCSHARE_PUBLIC_URL"); url != "" {
		cfg.PublicURL = url
	}
	if dir := os.Getenv("CCSHARE_STATIC_DIR"); dir != "" {
		cfg.StaticDir = dir
	}
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		cfg.Debug = true
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
