package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/mugfulmuse/woo-connector/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleDomainError converts connector domain errors to HTTP responses.
// Wrapped errors are recognized through errors.Is / errors.As, so services
// may annotate sentinels with context without losing the mapping.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, connector.ErrMappingNotFound),
		errors.Is(err, connector.ErrHistoryNotFound),
		errors.Is(err, connector.ErrSettingNotFound):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, connector.ErrRunInProgress):
		h.Error(c, http.StatusConflict, dto.ErrCodeRunInProgress, err.Error())
	case errors.Is(err, connector.ErrRunTerminal):
		h.Error(c, http.StatusConflict, dto.ErrCodeConflict, err.Error())
	case errors.Is(err, connector.ErrMappingInvalidSource),
		errors.Is(err, connector.ErrMappingInvalidTarget),
		errors.Is(err, connector.ErrMappingInvalidType),
		errors.Is(err, connector.ErrMappingInvalidDirection),
		errors.Is(err, connector.ErrInvalidRunKind):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, connector.ErrNoActiveMappings),
		errors.Is(err, connector.ErrConnectionIncomplete):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, err.Error())
	case errors.Is(err, connector.ErrPlatformUnreachable):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUpstreamUnreachable, err.Error())
	case connector.IsRemoteAPIError(err):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeUpstream, err.Error())
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
