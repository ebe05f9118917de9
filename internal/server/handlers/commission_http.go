package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"brewhub-system/internal/commission"
)

type CommissionHTTPHandler struct {
	svc      *commission.Service
	settings *commission.SettingsStore
	summary  *commission.SummaryService
}

func NewCommissionHTTPHandler(svc *commission.Service, settings *commission.SettingsStore, summary *commission.SummaryService) *CommissionHTTPHandler {
	return &CommissionHTTPHandler{svc: svc, settings: settings, summary: summary}
}

// --- Request & Query Structs for Binding ---

type SaveRateSettingsRequest struct {
	SupplierRate string `json:"supplier_rate" binding:"required"`
	RoasterRate  string `json:"roaster_rate" binding:"required"`
}

type CreateCommissionRequest struct {
	OrderID    int64  `json:"order_id" binding:"required"`
	SupplierID int64  `json:"supplier_id" binding:"required"`
	RoasterID  int64  `json:"roaster_id" binding:"required"`
	OrderTotal string `json:"order_total" binding:"required"`
}

type RequestConfirmationRequest struct {
	RecordIDs []int64 `json:"record_ids" binding:"required"`
	NewStatus string  `json:"new_status" binding:"required"`
}

type SetStatusRequest struct {
	Status            string `json:"status" binding:"required"`
	ConfirmationToken string `json:"confirmation_token"`
}

type BulkSetStatusRequest struct {
	RecordIDs         []int64 `json:"record_ids" binding:"required"`
	Status            string  `json:"status" binding:"required"`
	ConfirmationToken string  `json:"confirmation_token"`
}

type ListCommissionsQuery struct {
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=20"`
	SupplierID *int64  `form:"supplier_id"`
	Status     *string `form:"status"`
	StartDate  string  `form:"start_date"`
	EndDate    string  `form:"end_date"`
	MinAmount  string  `form:"min_amount"`
	MaxAmount  string  `form:"max_amount"`
}

func (q ListCommissionsQuery) toFilter(tenantID int64) (commission.ListFilter, error) {
	filter := commission.ListFilter{
		TenantID:   tenantID,
		SupplierID: q.SupplierID,
		Status:     q.Status,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	if q.StartDate != "" {
		from, err := time.Parse("2006-01-02", q.StartDate)
		if err != nil {
			return filter, &commission.ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"}
		}
		filter.From = &from
	}
	if q.EndDate != "" {
		to, err := time.Parse("2006-01-02", q.EndDate)
		if err != nil {
			return filter, &commission.ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"}
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	if q.MinAmount != "" {
		min, err := decimal.NewFromString(q.MinAmount)
		if err != nil {
			return filter, &commission.ValidationError{Field: "min_amount", Reason: "not a number"}
		}
		filter.MinAmount = &min
	}
	if q.MaxAmount != "" {
		max, err := decimal.NewFromString(q.MaxAmount)
		if err != nil {
			return filter, &commission.ValidationError{Field: "max_amount", Reason: "not a number"}
		}
		filter.MaxAmount = &max
	}
	return filter, nil
}

// --- Rate Settings ---

func (h *CommissionHTTPHandler) GetRateSettings(c *gin.Context) {
	rates, err := h.settings.Get(c.Request.Context(), authTenantID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("settings retrieved successfully", gin.H{
		"supplier_rate": rates.Supplier.StringFixed(2),
		"roaster_rate":  rates.Roaster.StringFixed(2),
	}))
}

func (h *CommissionHTTPHandler) SaveRateSettings(c *gin.Context) {
	var req SaveRateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	rates, err := h.settings.Save(c.Request.Context(), authTenantID(c), req.SupplierRate, req.RoasterRate, authUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("settings saved; existing records keep their snapshotted rates", gin.H{
		"supplier_rate": rates.Supplier.StringFixed(2),
		"roaster_rate":  rates.Roaster.StringFixed(2),
	}))
}

// --- Commission Records ---

func (h *CommissionHTTPHandler) CreateCommission(c *gin.Context) {
	var req CreateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	orderTotal, err := decimal.NewFromString(req.OrderTotal)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("order_total is not a number"))
		return
	}

	record, err := h.svc.Create(c.Request.Context(), commission.CreateInput{
		TenantID:   authTenantID(c),
		OrderID:    req.OrderID,
		SupplierID: req.SupplierID,
		RoasterID:  req.RoasterID,
		OrderTotal: orderTotal,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("commission created successfully", record))
}

func (h *CommissionHTTPHandler) GetCommission(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid commission ID"))
		return
	}

	record, err := h.svc.Get(c.Request.Context(), recordID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("commission retrieved successfully", record))
}

func (h *CommissionHTTPHandler) ListCommissions(c *gin.Context) {
	var query ListCommissionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	filter, err := query.toFilter(authTenantID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	records, totalCount, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("commissions retrieved successfully", records, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: totalCount,
	}))
}

// RequestConfirmation is the first half of the human-in-the-loop gate: the
// client shows its "are you sure" dialog, then exchanges the user's answer
// for a single-use token accepted by the status endpoints.
func (h *CommissionHTTPHandler) RequestConfirmation(c *gin.Context) {
	var req RequestConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	token, err := h.svc.RequestConfirmation(c.Request.Context(), req.RecordIDs, req.NewStatus)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("confirmation token issued", gin.H{
		"confirmation_token": token,
	}))
}

func (h *CommissionHTTPHandler) SetStatus(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid commission ID"))
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	record, err := h.svc.SetStatus(c.Request.Context(), recordID, req.Status, req.ConfirmationToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("commission status updated", record))
}

func (h *CommissionHTTPHandler) BulkSetStatus(c *gin.Context) {
	var req BulkSetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	updated, err := h.svc.BulkSetStatus(c.Request.Context(), req.RecordIDs, req.Status, req.ConfirmationToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("bulk status change applied", gin.H{
		"updated": updated,
	}))
}

func (h *CommissionHTTPHandler) GetSummary(c *gin.Context) {
	summary, err := h.summary.Get(c.Request.Context(), authTenantID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("summary retrieved successfully", summary))
}
