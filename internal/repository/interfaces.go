package repository

import (
	"context"

	"github.com/mlevchenko/riskscan/internal/domain"
)

// IdentityRepository defines the narrow upsert-by-external-id contract
// over connected identities.
type IdentityRepository interface {
	Upsert(ctx context.Context, externalID string, tokens domain.TokenSet, profile domain.Profile) (*domain.Identity, error)
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	MostRecentlyConnected(ctx context.Context) (*domain.Identity, error)
}

// ContentRepository defines methods over scored content items.
type ContentRepository interface {
	Insert(ctx context.Context, item *domain.ContentItem) error
	Exists(ctx context.Context, externalItemID string) (bool, error)
	GetByExternalItemID(ctx context.Context, externalItemID string) (*domain.ContentItem, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.ContentItem, int, error)
}
