package dto

import (
	"time"

	"github.com/mlevchenko/riskscan/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// IdentityResponse is the public view of a connected identity. Tokens
// never leave the service.
type IdentityResponse struct {
	ID          string  `json:"id"`
	ExternalID  string  `json:"external_id"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	ConnectedAt string  `json:"connected_at"`
}

// CallbackResponse is returned after a successful authorization callback.
type CallbackResponse struct {
	OK       bool             `json:"ok"`
	Identity IdentityResponse `json:"identity"`
	Scopes   []string         `json:"scopes"`
}

// NewIdentityResponse maps a domain identity to its public view.
func NewIdentityResponse(identity *domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:          identity.ID,
		ExternalID:  identity.ExternalID,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
		ConnectedAt: identity.CreatedAt.Format(time.RFC3339),
	}
}

// IngestResponse reports how many new items one ingestion run scored.
type IngestResponse struct {
	Ingested int `json:"ingested"`
}

// ContentItemResponse is the read view of one scored content item.
type ContentItemResponse struct {
	ExternalItemID  string         `json:"external_item_id"`
	Caption         string         `json:"caption"`
	CoverURL        *string        `json:"cover_url"`
	ShareURL        *string        `json:"share_url"`
	CreatedAtRemote *string        `json:"created_at_remote"`
	ScannedAt       string         `json:"scanned_at"`
	Score           float64        `json:"score"`
	Band            string         `json:"band"`
	Factors         domain.Factors `json:"factors"`
	Detections      []string       `json:"detections"`
	Recommendations []string       `json:"recommendations"`
}

// ContentListResponse is one page of scored items.
type ContentListResponse struct {
	Items    []ContentItemResponse `json:"items"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Total    int                   `json:"total"`
}

// NewContentItemResponse maps a domain content item to its read view.
func NewContentItemResponse(item *domain.ContentItem) ContentItemResponse {
	resp := ContentItemResponse{
		ExternalItemID:  item.ExternalItemID,
		Caption:         item.Caption,
		CoverURL:        item.CoverURL,
		ShareURL:        item.ShareURL,
		ScannedAt:       item.ScannedAt.Format(time.RFC3339),
		Score:           item.Score,
		Band:            item.Band,
		Factors:         item.Factors,
		Detections:      item.Detections,
		Recommendations: item.Recommendations,
	}

	if item.CreatedAtRemote != nil {
		s := item.CreatedAtRemote.Format(time.RFC3339)
		resp.CreatedAtRemote = &s
	}
	if resp.Detections == nil {
		resp.Detections = []string{}
	}

	return resp
}

// DetectionResponse is one piece of evidence in a direct-upload scan.
type DetectionResponse struct {
	Detector string `json:"detector"`
	Value    string `json:"value"`
}

// RiskResponse is the score block of a direct-upload scan.
type RiskResponse struct {
	Score float64  `json:"score"`
	Band  string   `json:"band"`
	Why   []string `json:"why"`
}

// ScanResponse is the result of scanning a directly uploaded caption/image.
type ScanResponse struct {
	Caption         string              `json:"caption"`
	Detections      []DetectionResponse `json:"detections"`
	Risk            RiskResponse        `json:"risk"`
	Recommendations []string            `json:"recommendations"`
}

// DebugResponse is the masked config diagnostic view.
type DebugResponse struct {
	ClientKeySet bool     `json:"client_key_set"`
	RedirectURI  string   `json:"redirect_uri"`
	Scopes       []string `json:"scopes"`
}
