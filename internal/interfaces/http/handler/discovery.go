package handler

import (
	"github.com/gin-gonic/gin"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
)

// DiscoveryHandler handles platform field discovery HTTP requests
type DiscoveryHandler struct {
	BaseHandler
	discoveryService *appconnector.DiscoveryService
}

// NewDiscoveryHandler creates a new DiscoveryHandler
func NewDiscoveryHandler(discoveryService *appconnector.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discoveryService: discoveryService}
}

// DiscoverFields returns the platform fields a mapping can target, assembled
// from the standard product fields plus the platform's live taxonomies and
// global attributes
func (h *DiscoveryHandler) DiscoverFields(c *gin.Context) {
	fields, err := h.discoveryService.DiscoverFields(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, fields)
}

// RegisterRoutes registers all discovery routes
func (h *DiscoveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	discovery := rg.Group("/discovery")
	{
		discovery.GET("/fields", h.DiscoverFields)
	}
}
