package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewhub-system/internal/commission"
)

type AlertHTTPHandler struct {
	store     commission.AlertSettingsStore
	evaluator *commission.Evaluator
}

func NewAlertHTTPHandler(store commission.AlertSettingsStore, evaluator *commission.Evaluator) *AlertHTTPHandler {
	return &AlertHTTPHandler{store: store, evaluator: evaluator}
}

func (h *AlertHTTPHandler) GetAlertSettings(c *gin.Context) {
	settings, err := h.store.Load(c.Request.Context(), authUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if settings == nil {
		// First visit: hand the client a disabled default so it can render
		// the form without a special case.
		settings = &commission.AlertSettings{}
	}
	c.JSON(http.StatusOK, successResponse("alert settings retrieved successfully", settings))
}

func (h *AlertHTTPHandler) SaveAlertSettings(c *gin.Context) {
	var settings commission.AlertSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	if err := settings.Validate(); err != nil {
		handleServiceError(c, err)
		return
	}

	userID := authUserID(c)
	previous, err := h.store.Load(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.store.Save(c.Request.Context(), userID, settings); err != nil {
		handleServiceError(c, err)
		return
	}

	// Changing the threshold re-arms the total-reached alert: the old flag
	// refers to a line that no longer exists.
	if previous != nil && !previous.Threshold.Equal(settings.Threshold) {
		if err := h.evaluator.ResetNotification(c.Request.Context(), userID); err != nil {
			handleServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, successResponse("alert settings saved successfully", settings))
}

func (h *AlertHTTPHandler) ResetNotification(c *gin.Context) {
	if err := h.evaluator.ResetNotification(c.Request.Context(), authUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("threshold alert re-armed", nil))
}
