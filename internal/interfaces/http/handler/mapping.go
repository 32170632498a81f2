package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
	"github.com/mugfulmuse/woo-connector/internal/interfaces/http/dto"
)

// MappingHandler handles field mapping related HTTP requests
type MappingHandler struct {
	BaseHandler
	mappingService *appconnector.MappingService
}

// NewMappingHandler creates a new MappingHandler
func NewMappingHandler(mappingService *appconnector.MappingService) *MappingHandler {
	return &MappingHandler{mappingService: mappingService}
}

// SetActiveRequest represents the request body for toggling a mapping
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// bindMappingID reads and parses the mapping ID from the request path
func (h *MappingHandler) bindMappingID(c *gin.Context) (uuid.UUID, bool) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid mapping ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "invalid mapping ID")
		return uuid.Nil, false
	}
	return id, true
}

// List returns all field mappings in storage order
func (h *MappingHandler) List(c *gin.Context) {
	mappings, err := h.mappingService.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, mappings)
}

// Get returns one field mapping by ID
func (h *MappingHandler) Get(c *gin.Context) {
	id, ok := h.bindMappingID(c)
	if !ok {
		return
	}

	mapping, err := h.mappingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, mapping)
}

// Create creates a new field mapping
func (h *MappingHandler) Create(c *gin.Context) {
	var req appconnector.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	mapping, err := h.mappingService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, mapping)
}

// Update replaces an existing field mapping's definition
func (h *MappingHandler) Update(c *gin.Context) {
	id, ok := h.bindMappingID(c)
	if !ok {
		return
	}

	var req appconnector.UpdateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	mapping, err := h.mappingService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, mapping)
}

// Delete removes a field mapping
func (h *MappingHandler) Delete(c *gin.Context) {
	id, ok := h.bindMappingID(c)
	if !ok {
		return
	}

	if err := h.mappingService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// SetActive toggles a mapping's participation in sync runs
func (h *MappingHandler) SetActive(c *gin.Context) {
	id, ok := h.bindMappingID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	mapping, err := h.mappingService.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, mapping)
}

// RegisterRoutes registers all field mapping routes
func (h *MappingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mappings := rg.Group("/mappings")
	{
		mappings.GET("", h.List)
		mappings.POST("", h.Create)
		mappings.GET("/:id", h.Get)
		mappings.PUT("/:id", h.Update)
		mappings.DELETE("/:id", h.Delete)
		mappings.PATCH("/:id/active", h.SetActive)
	}
}
