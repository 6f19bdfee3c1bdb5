package service

import (
	"context"

	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/internal/tiktok"
)

// RemoteClient is the outbound TikTok surface the services depend on.
type RemoteClient interface {
	AuthorizeURL(state, codeChallenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*domain.TokenSet, error)
	FetchProfile(ctx context.Context, accessToken string) (*domain.Profile, error)
	ListVideos(ctx context.Context, accessToken string, maxCount int) ([]tiktok.Video, error)
}

// ConnectService drives the authorization flow: login initiation and
// callback handling through identity upsert.
type ConnectService interface {
	BeginLogin(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, code, state string) (*domain.Identity, error)
}

// IngestService pulls recent videos for a connected identity and scores
// the ones not seen before.
type IngestService interface {
	Ingest(ctx context.Context, identityID string, limit int) (int, error)
}

// ContentService defines the read paths over persisted scored content.
type ContentService interface {
	List(ctx context.Context, page, pageSize int) ([]*domain.ContentItem, int, error)
	Get(ctx context.Context, externalItemID string) (*domain.ContentItem, error)
}
