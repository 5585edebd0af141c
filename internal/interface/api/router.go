// Package api is the HTTP surface of the share service.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/internal/core/share"
)

// Banner is the body of GET /.
const Banner = "ccshare server"

// Options configures the router.
type Options struct {
	PublicURL      string
	AllowedOrigins []string
	PageTemplate   string
	StaticDir      string // files served under /static, none when empty
	Logger         *zap.Logger
}

// NewRouter wires every route to service.
func NewRouter(service *share.Service, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	router.Use(AccessLog(logger))

	// Root endpoint - plain text for client validation
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	})

	shares := NewShareHandler(service, opts.PublicURL, opts.PageTemplate, logger)

	api := router.Group("/api/share")
	{
		api.POST("", shares.CreateShare)
		api.POST("/:id/sync", shares.SyncShare)
		api.GET("/:id/data", shares.ShareData)
		api.DELETE("/:id", shares.RemoveShare)
	}
	router.GET("/share/:id", shares.SharePage)

	if opts.StaticDir != "" {
		router.Static("/static", opts.StaticDir)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "If-None-Match"},
		ExposeHeaders: []string{"Content-Length", "ETag"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
