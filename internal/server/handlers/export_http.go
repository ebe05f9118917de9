package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brewhub-system/internal/commission"
	"brewhub-system/internal/database/models"
	"brewhub-system/internal/export"
)

type ExportHTTPHandler struct {
	svc *commission.Service
}

func NewExportHTTPHandler(svc *commission.Service) *ExportHTTPHandler {
	return &ExportHTTPHandler{svc: svc}
}

// exportPageSize caps a single export. Filters narrow it further.
const exportPageSize = 10000

func (h *ExportHTTPHandler) fetch(c *gin.Context) ([]models.CommissionRecord, export.Locale, bool) {
	var query ListCommissionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return nil, "", false
	}
	query.Page = 1
	query.PageSize = exportPageSize

	filter, err := query.toFilter(authTenantID(c))
	if err != nil {
		handleServiceError(c, err)
		return nil, "", false
	}

	records, _, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return nil, "", false
	}

	locale := export.LocaleEnglish
	if c.Query("locale") == string(export.LocaleArabic) {
		locale = export.LocaleArabic
	}
	return records, locale, true
}

func exportFilename(ext string) string {
	return fmt.Sprintf(`attachment; filename="commissions-%s.%s"`, time.Now().Format("2006-01-02"), ext)
}

func (h *ExportHTTPHandler) ExportCSV(c *gin.Context) {
	records, locale, ok := h.fetch(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", exportFilename("csv"))
	if err := export.WriteCSV(c.Writer, records, locale); err != nil {
		// Headers are already out; nothing useful left to send.
		_ = c.Error(err)
	}
}

func (h *ExportHTTPHandler) ExportExcel(c *gin.Context) {
	records, locale, ok := h.fetch(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", exportFilename("xlsx"))
	if err := export.WriteExcel(c.Writer, records, locale); err != nil {
		_ = c.Error(err)
	}
}
