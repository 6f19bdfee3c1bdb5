package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mlevchenko/riskscan/internal/dto"
	"github.com/mlevchenko/riskscan/internal/repository"
	"github.com/mlevchenko/riskscan/internal/service"
)

// ContentHandler serves scored content read paths
type ContentHandler struct {
	contentService service.ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

// List returns one page of scored items, newest scan first.
func (h *ContentHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "page must be an integer",
		})
		return
	}
	pageSize, err := queryInt(c, "page_size", 20)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "page_size must be an integer",
		})
		return
	}

	page, pageSize = service.NormalizePage(page, pageSize)

	items, total, err := h.contentService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal error",
			Message: err.Error(),
		})
		return
	}

	views := make([]dto.ContentItemResponse, 0, len(items))
	for _, item := range items {
		views = append(views, dto.NewContentItemResponse(item))
	}

	c.JSON(http.StatusOK, dto.ContentListResponse{
		Items:    views,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// Get returns one scored item by its external item id.
func (h *ContentHandler) Get(c *gin.Context) {
	externalItemID := c.Param("external_item_id")

	item, err := h.contentService.Get(c.Request.Context(), externalItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "no scored item with this id",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.NewContentItemResponse(item))
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
