package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/render"
	"github.com/neilberkman/ccshare/internal/core/share"
)

// ShareHandler serves the share endpoints.
type ShareHandler struct {
	service      *share.Service
	publicURL    string
	pageTemplate string
	logger       *zap.Logger
}

func NewShareHandler(service *share.Service, publicURL, pageTemplate string, logger *zap.Logger) *ShareHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareHandler{
		service:      service,
		publicURL:    strings.TrimRight(publicURL, "/"),
		pageTemplate: pageTemplate,
		logger:       logger,
	}
}

// CreateShareRequest is the body of POST /api/share.
type CreateShareRequest struct {
	SessionID string `json:"sessionID"`
}

// CreateShareResponse is returned once to the creator. The secret is not
// retrievable later.
type CreateShareResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// SyncRequest is the body of POST /api/share/:id/sync.
type SyncRequest struct {
	Secret string            `json:"secret"`
	Data   []json.RawMessage `json:"data"`
}

// RemoveRequest is the body of DELETE /api/share/:id.
type RemoveRequest struct {
	Secret string `json:"secret"`
}

// CreateShare handles POST /api/share
func (h *ShareHandler) CreateShare(c *gin.Context) {
	var req CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s, err := h.service.Create(c.Request.Context(), req.SessionID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateShareResponse{
		ID:     s.ID,
		Secret: s.Secret,
		URL:    h.shareURL(c, s.ID),
	})
}

// SyncShare handles POST /api/share/:id/sync
func (h *ShareHandler) SyncShare(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.service.SyncRaw(c.Request.Context(), c.Param("id"), req.Secret, req.Data)
	var de *models.DecodeError
	switch {
	case errors.As(err, &de):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": de.Error(),
			"index": de.Index,
			"field": de.Field,
			"type":  de.Discriminant,
		})
		return
	case err != nil:
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// ShareData handles GET /api/share/:id/data
func (h *ShareHandler) ShareData(c *gin.Context) {
	events, err := h.service.Data(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	body, err := json.Marshal(models.Events(events))
	if err != nil {
		h.logger.Error("failed to encode share data", zap.String("share_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	etag := ETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if matchesETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// RemoveShare handles DELETE /api/share/:id
func (h *ShareHandler) RemoveShare(c *gin.Context) {
	var req RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), c.Param("id"), req.Secret); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// SharePage handles GET /share/:id
func (h *ShareHandler) SharePage(c *gin.Context) {
	st, s, err := h.service.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		var ce *share.CorruptError
		switch {
		case errors.Is(err, share.ErrNotFound):
		case errors.As(err, &ce):
			h.logger.Error("corrupt share", zap.String("share_id", ce.ShareID), zap.Int64("seq", ce.Seq), zap.Error(ce.Err))
		default:
			h.fail(c, err)
			return
		}
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(render.NotFoundHTML()))
		return
	}

	page, err := render.HTML(render.BuildPage(s, st), h.pageTemplate)
	if err != nil {
		h.logger.Error("failed to render share page", zap.String("share_id", s.ID), zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("failed to render share"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// fail maps a service error to a status code. Internal details are logged,
// never returned.
func (h *ShareHandler) fail(c *gin.Context, err error) {
	var se *share.StorageError
	var ce *share.CorruptError
	switch {
	case errors.Is(err, share.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, share.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, share.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
	case errors.As(err, &ce):
		h.logger.Error("corrupt share", zap.String("share_id", ce.ShareID), zap.Int64("seq", ce.Seq), zap.Error(ce.Err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "share data incomplete"})
	case errors.As(err, &se):
		h.logger.Error("storage failure", zap.String("op", se.Op), zap.Error(se.Err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry later"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// shareURL builds the public link for a share.
func (h *ShareHandler) shareURL(c *gin.Context, id string) string {
	base := h.publicURL
	if base == "" {
		proto := c.GetHeader("X-Forwarded-Proto")
		if proto == "" {
			proto = "http"
			if c.Request.TLS != nil {
				proto = "https"
			}
		}
		host := c.GetHeader("X-Forwarded-Host")
		if host == "" {
			host = c.Request.Host
		}
		base = proto + "://" + host
	}
	return base + "/share/" + id
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
