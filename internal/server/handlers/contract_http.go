package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"brewhub-system/internal/contract"
)

type ContractHTTPHandler struct {
	svc *contract.Service
}

func NewContractHTTPHandler(svc *contract.Service) *ContractHTTPHandler {
	return &ContractHTTPHandler{svc: svc}
}

type CreateContractRequest struct {
	OrderID    int64  `json:"order_id" binding:"required"`
	SupplierID int64  `json:"supplier_id" binding:"required"`
	RoasterID  int64  `json:"roaster_id" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

func (h *ContractHTTPHandler) CreateContract(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("amount is not a number"))
		return
	}

	row, err := h.svc.Create(c.Request.Context(), contract.CreateInput{
		TenantID:   authTenantID(c),
		OrderID:    req.OrderID,
		SupplierID: req.SupplierID,
		RoasterID:  req.RoasterID,
		Amount:     amount,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("contract created successfully", row))
}

func (h *ContractHTTPHandler) GetContract(c *gin.Context) {
	contractID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid contract ID"))
		return
	}

	row, err := h.svc.Get(c.Request.Context(), contractID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("contract retrieved successfully", row))
}

func (h *ContractHTTPHandler) ListContracts(c *gin.Context) {
	rows, err := h.svc.ListByTenant(c.Request.Context(), authTenantID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("contracts retrieved successfully", rows))
}

func (h *ContractHTTPHandler) setStatus(c *gin.Context, status, message string) {
	contractID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid contract ID"))
		return
	}

	row, err := h.svc.SetStatus(c.Request.Context(), contractID, status)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(message, row))
}

func (h *ContractHTTPHandler) FundContract(c *gin.Context) {
	h.setStatus(c, contract.StatusFunded, "contract funded")
}

func (h *ContractHTTPHandler) ReleaseContract(c *gin.Context) {
	h.setStatus(c, contract.StatusReleased, "escrow released to supplier")
}

func (h *ContractHTTPHandler) RefundContract(c *gin.Context) {
	h.setStatus(c, contract.StatusRefunded, "escrow refunded to buyer")
}
