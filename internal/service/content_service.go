package service

import (
	"context"

	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// contentService implements ContentService interface
type contentService struct {
	content repository.ContentRepository
}

// NewContentService creates a new content service
func NewContentService(content repository.ContentRepository) ContentService {
	return &contentService{content: content}
}

// List returns one page of scored items plus the total count. Page and
// page size are normalized before hitting the store.
func (s *contentService) List(ctx context.Context, page, pageSize int) ([]*domain.ContentItem, int, error) {
	page, pageSize = NormalizePage(page, pageSize)
	return s.content.List(ctx, page, pageSize)
}

// Get returns one scored item by its platform-assigned id.
func (s *contentService) Get(ctx context.Context, externalItemID string) (*domain.ContentItem, error) {
	return s.content.GetByExternalItemID(ctx, externalItemID)
}

// NormalizePage clamps paging parameters to sane bounds.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
