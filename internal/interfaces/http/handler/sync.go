package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/mugfulmuse/woo-connector/internal/interfaces/http/dto"
)

// SyncHandler handles sync run related HTTP requests
type SyncHandler struct {
	BaseHandler
	syncService *appconnector.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *appconnector.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// bindStartRequest reads the optional run parameters from the request body.
// An empty body starts a run with no filters.
func (h *SyncHandler) bindStartRequest(c *gin.Context) (appconnector.StartSyncRequest, bool) {
	var req appconnector.StartSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, err.Error())
		return req, false
	}
	return req, true
}

// Push starts a catalog-to-platform sync run and waits for it to finish
func (h *SyncHandler) Push(c *gin.Context) {
	req, ok := h.bindStartRequest(c)
	if !ok {
		return
	}

	history, err := h.syncService.Push(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, appconnector.ToSyncHistoryResponse(history, true))
}

// Pull starts a platform-to-catalog sync run and waits for it to finish
func (h *SyncHandler) Pull(c *gin.Context) {
	req, ok := h.bindStartRequest(c)
	if !ok {
		return
	}

	history, err := h.syncService.Pull(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, appconnector.ToSyncHistoryResponse(history, true))
}

// GetRun returns one sync run with its per-item details
func (h *SyncHandler) GetRun(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid run ID")
		return
	}

	id, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "invalid run ID")
		return
	}

	run, err := h.syncService.GetRun(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// ListRuns returns recent sync runs, newest first, optionally filtered by kind
func (h *SyncHandler) ListRuns(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var (
		runs []appconnector.SyncHistoryResponse
		err  error
	)
	if query.Kind != "" {
		runs, err = h.syncService.RunsByKind(c.Request.Context(), connector.SyncKind(query.Kind), query.Limit)
	} else {
		runs, err = h.syncService.RecentRuns(c.Request.Context(), query.Limit)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, runs)
}

// RegisterRoutes registers all sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/push", h.Push)
		sync.POST("/pull", h.Pull)
		sync.GET("/runs", h.ListRuns)
		sync.GET("/runs/:id", h.GetRun)
	}
}
