package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/pkg/database"
)

// contentRepository implements ContentRepository interface
type contentRepository struct {
	db *database.Postgres
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *database.Postgres) ContentRepository {
	return &contentRepository{db: db}
}

const contentColumns = `id, identity_id, external_item_id, caption, cover_url, share_url, created_at_remote, scanned_at, score, band, factors, detections, recommendations, created_at`

// Insert persists one scored content item. The unique constraint on
// external_item_id is the hard backstop against concurrent ingestion
// runs; violations surface as ErrDuplicateContent.
func (r *contentRepository) Insert(ctx context.Context, item *domain.ContentItem) error {
	query := `
		INSERT INTO content_items (` + contentColumns + `)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14)
	`

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	factors, err := json.Marshal(item.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors: %w", err)
	}
	detections, err := json.Marshal(item.Detections)
	if err != nil {
		return fmt.Errorf("failed to encode detections: %w", err)
	}
	recommendations, err := json.Marshal(item.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	var coverURL, shareURL string
	if item.CoverURL != nil {
		coverURL = *item.CoverURL
	}
	if item.ShareURL != nil {
		shareURL = *item.ShareURL
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		item.ID,
		item.IdentityID,
		item.ExternalItemID,
		item.Caption,
		coverURL,
		shareURL,
		item.CreatedAtRemote,
		item.ScannedAt,
		item.Score,
		item.Band,
		factors,
		detections,
		recommendations,
		item.CreatedAt,
	)

	if err != nil {
		// Check for unique constraint violation (duplicate external item id)
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("content item %s already exists: %w", item.ExternalItemID, ErrDuplicateContent)
			}
		}
		return fmt.Errorf("failed to insert content item: %w", err)
	}

	return nil
}

// Exists reports whether an item with this external id was already ingested.
func (r *contentRepository) Exists(ctx context.Context, externalItemID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM content_items WHERE external_item_id = $1)`

	var exists bool
	if err := r.db.DB.QueryRowContext(ctx, query, externalItemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check content existence: %w", err)
	}

	return exists, nil
}

// GetByExternalItemID retrieves one scored item by its platform id.
func (r *contentRepository) GetByExternalItemID(ctx context.Context, externalItemID string) (*domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE external_item_id = $1`

	item, err := scanContentItem(r.db.DB.QueryRowContext(ctx, query, externalItemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content item %s not found: %w", externalItemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}

	return item, nil
}

// List returns one page of scored items, newest first, plus the total
// row count independent of paging.
func (r *contentRepository) List(ctx context.Context, page, pageSize int) ([]*domain.ContentItem, int, error) {
	var total int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_items`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count content items: %w", err)
	}

	query := `
		SELECT ` + contentColumns + `
		FROM content_items
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.DB.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list content items: %w", err)
	}
	defer rows.Close()

	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanContentItemRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate content items: %w", err)
	}

	return items, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row *sql.Row) (*domain.ContentItem, error) {
	return scanContent(row)
}

func scanContentItemRows(rows *sql.Rows) (*domain.ContentItem, error) {
	return scanContent(rows)
}

func scanContent(row rowScanner) (*domain.ContentItem, error) {
	item := &domain.ContentItem{}
	var (
		coverURL        sql.NullString
		shareURL        sql.NullString
		createdAtRemote sql.NullTime
		factors         []byte
		detections      []byte
		recommendations []byte
	)

	err := row.Scan(
		&item.ID,
		&item.IdentityID,
		&item.ExternalItemID,
		&item.Caption,
		&coverURL,
		&shareURL,
		&createdAtRemote,
		&item.ScannedAt,
		&item.Score,
		&item.Band,
		&factors,
		&detections,
		&recommendations,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if coverURL.Valid {
		item.CoverURL = &coverURL.String
	}
	if shareURL.Valid {
		item.ShareURL = &shareURL.String
	}
	if createdAtRemote.Valid {
		item.CreatedAtRemote = &createdAtRemote.Time
	}

	if err := json.Unmarshal(factors, &item.Factors); err != nil {
		return nil, fmt.Errorf("failed to decode factors: %w", err)
	}
	if err := json.Unmarshal(detections, &item.Detections); err != nil {
		return nil, fmt.Errorf("failed to decode detections: %w", err)
	}
	if err := json.Unmarshal(recommendations, &item.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}

	return item, nil
}
