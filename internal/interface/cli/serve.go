package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neilberkman/ccshare/internal/core/db"
	"github.com/neilberkman/ccshare/internal/core/logging"
	"github.com/neilberkman/ccshare/internal/core/share"
	"github.com/neilberkman/ccshare/internal/interface/api"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr      string
	servePublicURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the share HTTP server",
	Long: `Run the HTTP server that accepts share syncs and serves share pages.

A background worker compacts shares with long event logs every
compact_interval. SIGINT or SIGTERM shuts down gracefully.

Examples:
  ccshare serve
  ccshare serve --addr :8080 --public-url https://share.example.com`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :3006 or $PORT)")
	serveCmd.Flags().StringVar(&servePublicURL, "public-url", "", "Base URL used in share links")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("public-url") {
		cfg.PublicURL = servePublicURL
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("opening database", zap.String("path", cfg.DatabasePath))
	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	svc := share.NewService(database,
		share.WithLogger(logger),
		share.WithCompactThreshold(cfg.CompactThreshold),
	)
	router := api.NewRouter(svc, api.Options{
		PublicURL:      cfg.PublicURL,
		AllowedOrigins: cfg.AllowedOrigins,
		PageTemplate:   cfg.PageTemplate,
		StaticDir:      cfg.StaticDir,
		Logger:         logger,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Addr), zap.String("version", versionInfo))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := share.NewWorker(svc, cfg.CompactInterval, logger).Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
