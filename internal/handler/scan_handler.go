package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlevchenko/riskscan/internal/dto"
	"github.com/mlevchenko/riskscan/internal/risk"
	"github.com/mlevchenko/riskscan/internal/scanner"
)

// ScanHandler serves stateless direct-upload scans
type ScanHandler struct{}

// NewScanHandler creates a new scan handler
func NewScanHandler() *ScanHandler {
	return &ScanHandler{}
}

// Scan scores a caption and an optional image without persisting
// anything. The image is only inspected for GPS metadata.
func (h *ScanHandler) Scan(c *gin.Context) {
	caption := c.PostForm("caption")

	dets := scanner.ScanCaption(caption)

	hasImage := false
	if fh, err := c.FormFile("image"); err == nil {
		hasImage = true
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: "failed to read uploaded image",
			})
			return
		}
		defer f.Close()

		if gps := scanner.ScanImageGPS(f); gps != nil {
			dets = append(dets, *gps)
		}
	}

	if caption == "" && !hasImage {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "provide a caption or an image to scan",
		})
		return
	}

	assessment := risk.EvaluateWithPolicy(risk.UploadPolicy, dets)

	views := make([]dto.DetectionResponse, 0, len(dets))
	for _, d := range dets {
		views = append(views, dto.DetectionResponse{
			Detector: string(d.Signal),
			Value:    d.Value,
		})
	}

	c.JSON(http.StatusOK, dto.ScanResponse{
		Caption:    caption,
		Detections: views,
		Risk: dto.RiskResponse{
			Score: assessment.Score,
			Band:  string(assessment.Band),
			Why:   assessment.Reasons,
		},
		Recommendations: assessment.Recommendations,
	})
}
