package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"brewhub-system/internal/commission"
	"brewhub-system/internal/contract"
	"brewhub-system/internal/reports"
	"brewhub-system/internal/server/middleware"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
}

// handleServiceError maps domain errors onto HTTP statuses and aborts.
func handleServiceError(c *gin.Context, err error) {
	var validationErr *commission.ValidationError
	var persistenceErr *commission.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, commission.ErrNotFound), errors.Is(err, contract.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, commission.ErrSettingsNotFound):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, commission.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, commission.ErrInvalidToken):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, contract.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, contract.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, reports.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.As(err, &persistenceErr):
		c.JSON(http.StatusInternalServerError, errorResponse("storage error, please retry"))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
	c.Abort()
}

func authUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.ContextUserID)
}

func authTenantID(c *gin.Context) int64 {
	return c.GetInt64(middleware.ContextTenantID)
}
