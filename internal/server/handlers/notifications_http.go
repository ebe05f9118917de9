package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brewhub-system/internal/notify"
)

type NotificationHTTPHandler struct {
	queue *notify.RetryQueue
}

func NewNotificationHTTPHandler(queue *notify.RetryQueue) *NotificationHTTPHandler {
	return &NotificationHTTPHandler{queue: queue}
}

func (h *NotificationHTTPHandler) ListFailedDeliveries(c *gin.Context) {
	permanentOnly, _ := strconv.ParseBool(c.DefaultQuery("permanent_only", "false"))

	rows, err := h.queue.ListFailed(c.Request.Context(), permanentOnly)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("failed deliveries retrieved successfully", rows))
}

func (h *NotificationHTTPHandler) RetryFailedDeliveries(c *gin.Context) {
	result, err := h.queue.RetryAllFailed(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("retry pass completed", result))
}
