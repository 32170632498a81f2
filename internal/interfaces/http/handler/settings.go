package handler

import (
	"github.com/gin-gonic/gin"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
)

// SettingsHandler handles connection settings related HTTP requests
type SettingsHandler struct {
	BaseHandler
	settingsService *appconnector.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *appconnector.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get returns the stored connection settings with the secret redacted
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, settings)
}

// Update stores new connection settings. Blank fields keep their stored value,
// so the consumer secret never has to round-trip through the client.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req appconnector.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, settings)
}

// TestConnection probes the commerce platform. An optional body carries
// credentials to probe before saving; without one the stored credentials
// are used.
func (h *SettingsHandler) TestConnection(c *gin.Context) {
	var req appconnector.TestConnectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.settingsService.TestConnection(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
		settings.POST("/test-connection", h.TestConnection)
	}
}
