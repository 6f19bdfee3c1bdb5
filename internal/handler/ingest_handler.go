package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mlevchenko/riskscan/internal/dto"
	"github.com/mlevchenko/riskscan/internal/service"
	"github.com/mlevchenko/riskscan/internal/tiktok"
	"github.com/mlevchenko/riskscan/internal/utils"
)

// IngestHandler handles ingestion requests
type IngestHandler struct {
	ingestService service.IngestService
	tokens        *utils.ConnectionTokenManager
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService service.IngestService, tokens *utils.ConnectionTokenManager) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		tokens:        tokens,
	}
}

// Ingest pulls recent videos for the connected identity, scores new
// ones and reports how many were ingested.
func (h *IngestHandler) Ingest(c *gin.Context) {
	limit := 25
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Message: "limit must be an integer",
			})
			return
		}
		limit = parsed
	}

	// The connection cookie is optional. Without it the most recently
	// connected identity is used.
	var identityID string
	if cookie, err := c.Cookie(ConnectionCookie); err == nil {
		if parsed, err := h.tokens.Validate(cookie); err == nil {
			identityID = parsed
		}
	}

	ingested, err := h.ingestService.Ingest(c.Request.Context(), identityID, limit)
	if err != nil {
		var apiErr *tiktok.APIError
		switch {
		case errors.Is(err, service.ErrNoIdentity):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "No identity",
				Message: "no TikTok account is connected, complete the login flow first",
			})
		case errors.As(err, &apiErr):
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{
				Error:   "Upstream error",
				Message: apiErr.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal error",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, dto.IngestResponse{Ingested: ingested})
}
