package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewhub-system/internal/reports"
)

type ReportHTTPHandler struct {
	settings *reports.SettingsStore
}

func NewReportHTTPHandler(settings *reports.SettingsStore) *ReportHTTPHandler {
	return &ReportHTTPHandler{settings: settings}
}

type SaveReportSettingsRequest struct {
	Enabled       bool    `json:"enabled"`
	ReportDay     *int    `json:"report_day" binding:"required"`
	ReportHour    *int    `json:"report_hour" binding:"required"`
	Timezone      string  `json:"timezone" binding:"required"`
	EmailOverride *string `json:"email_override"`
}

func (h *ReportHTTPHandler) GetReportSettings(c *gin.Context) {
	row, err := h.settings.Get(c.Request.Context(), authUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if row == nil {
		c.JSON(http.StatusOK, successResponse("no scheduled report configured", nil))
		return
	}
	c.JSON(http.StatusOK, successResponse("report settings retrieved successfully", row))
}

func (h *ReportHTTPHandler) SaveReportSettings(c *gin.Context) {
	var req SaveReportSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	row, err := h.settings.Save(c.Request.Context(), authUserID(c), reports.SettingsInput{
		Enabled:       req.Enabled,
		ReportDay:     *req.ReportDay,
		ReportHour:    *req.ReportHour,
		Timezone:      req.Timezone,
		EmailOverride: req.EmailOverride,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("report settings saved successfully", row))
}
