package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/internal/core/config"
	"github.com/neilberkman/ccshare/internal/core/db"
	"github.com/neilberkman/ccshare/internal/core/logging"
	"github.com/neilberkman/ccshare/internal/core/share"
)

var (
	dbPath      string
	configPath  string
	serverURL   string
	verbose     bool
	versionInfo = "dev"
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ccshare",
	Short: "Share coding agent sessions",
	Long: `ccshare - publish coding agent sessions as shareable, live-updating pages

Agents push session events to a share; anyone with the link can read the
reconstructed conversation, tool calls and file changes.`,
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.config/ccshare/shares.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/ccshare/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose (debug) logging")
}

// loadConfig reads the config file and environment, then applies the
// global flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var overrides config.Overrides
	if cmd.Flags().Changed("db") {
		overrides.DatabasePath = &dbPath
	}
	if cmd.Flags().Changed("verbose") {
		overrides.Debug = &verbose
	}
	cfg, err := config.Load(configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openService opens the local database and builds a share service on it.
// The returned func closes the database.
func openService(cmd *cobra.Command, logger *zap.Logger) (*share.Service, *config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	closeFn := func() {
		_ = database.Close()
	}

	svc := share.NewService(database,
		share.WithLogger(logger),
		share.WithCompactThreshold(cfg.CompactThreshold),
	)
	return svc, cfg, closeFn, nil
}

// cliLogger logs to stderr so stdout stays clean for data.
func cliLogger() *zap.Logger {
	logger, err := logging.NewConsole(verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
