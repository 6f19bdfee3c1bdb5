package domain

import "time"

// ContentItem is one ingested TikTok video together with its computed
// risk assessment. Items are written once; re-ingestion skips them.
type ContentItem struct {
	ID              string     `json:"id" db:"id"`
	IdentityID      string     `json:"identity_id" db:"identity_id"`
	ExternalItemID  string     `json:"external_item_id" db:"external_item_id"`
	Caption         string     `json:"caption" db:"caption"`
	CoverURL        *string    `json:"cover_url" db:"cover_url"`
	ShareURL        *string    `json:"share_url" db:"share_url"`
	CreatedAtRemote *time.Time `json:"created_at_remote" db:"created_at_remote"`
	ScannedAt       time.Time  `json:"scanned_at" db:"scanned_at"`

	Score           float64  `json:"score" db:"score"`
	Band            string   `json:"band" db:"band"`
	Factors         Factors  `json:"factors" db:"factors"`
	Detections      []string `json:"detections" db:"detections"`
	Recommendations []string `json:"recommendations" db:"recommendations"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Factors holds derived metrics stored alongside a score. OCRCoverText
// is reserved for future cover-image OCR and stays null for now.
type Factors struct {
	CaptionLength int     `json:"caption_length"`
	OCRCoverText  *string `json:"ocr_cover_text"`
}
