package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewhub-system/internal/filters"
)

type FilterHTTPHandler struct {
	store *filters.Store
}

func NewFilterHTTPHandler(store *filters.Store) *FilterHTTPHandler {
	return &FilterHTTPHandler{store: store}
}

func (h *FilterHTTPHandler) SaveTemplate(c *gin.Context) {
	var template filters.Template
	if err := c.ShouldBindJSON(&template); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	if template.Name == "" {
		c.JSON(http.StatusBadRequest, errorResponse("template name is required"))
		return
	}

	if err := h.store.Save(c.Request.Context(), authUserID(c), template); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("filter template saved successfully", template))
}

func (h *FilterHTTPHandler) ListTemplates(c *gin.Context) {
	templates, err := h.store.List(c.Request.Context(), authUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("filter templates retrieved successfully", templates))
}

func (h *FilterHTTPHandler) DeleteTemplate(c *gin.Context) {
	name := c.Param("name")
	removed, err := h.store.Delete(c.Request.Context(), authUserID(c), name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, errorResponse("no template with that name"))
		return
	}
	c.JSON(http.StatusOK, successResponse("filter template deleted", nil))
}
