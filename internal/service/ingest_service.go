package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/internal/repository"
	"github.com/mlevchenko/riskscan/internal/risk"
	"github.com/mlevchenko/riskscan/internal/tiktok"
)

// ErrNoIdentity is returned when ingestion is requested before any
// account has been connected. User-actionable, not a bug.
var ErrNoIdentity = errors.New("no connected identity")

const (
	minIngestLimit = 1
	maxIngestLimit = 100
)

// ingestService implements IngestService interface
type ingestService struct {
	identities repository.IdentityRepository
	content    repository.ContentRepository
	client     RemoteClient

	ingestedCounter metric.Int64Counter
	skippedCounter  metric.Int64Counter
}

// NewIngestService creates a new ingest service
func NewIngestService(
	identities repository.IdentityRepository,
	content repository.ContentRepository,
	client RemoteClient,
) IngestService {
	meter := otel.Meter("riskscan/ingest")
	ingested, _ := meter.Int64Counter("riskscan.ingest.items_ingested")
	skipped, _ := meter.Int64Counter("riskscan.ingest.items_skipped")

	return &ingestService{
		identities:      identities,
		content:         content,
		client:          client,
		ingestedCounter: ingested,
		skippedCounter:  skipped,
	}
}

// Ingest pulls one page of recent videos for the target identity and
// scores the ones not seen before. Already-ingested items are skipped
// without re-scoring; a malformed remote item only fails itself. A
// remote API failure aborts the whole call before anything is written.
func (s *ingestService) Ingest(ctx context.Context, identityID string, limit int) (int, error) {
	if limit < minIngestLimit {
		limit = minIngestLimit
	}
	if limit > maxIngestLimit {
		limit = maxIngestLimit
	}

	identity, err := s.resolveIdentity(ctx, identityID)
	if err != nil {
		return 0, err
	}

	videos, err := s.client.ListVideos(ctx, identity.AccessToken, limit)
	if err != nil {
		return 0, err
	}

	staged := make([]*domain.ContentItem, 0, len(videos))
	for _, video := range videos {
		if video.ID == "" {
			// Malformed remote record: fail the item, not the page.
			s.skippedCounter.Add(ctx, 1)
			continue
		}

		exists, err := s.content.Exists(ctx, video.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to check for existing item: %w", err)
		}
		if exists {
			s.skippedCounter.Add(ctx, 1)
			continue
		}

		staged = append(staged, s.buildItem(identity.ID, video))
	}

	ingested := 0
	for _, item := range staged {
		if err := s.content.Insert(ctx, item); err != nil {
			if errors.Is(err, repository.ErrDuplicateContent) {
				// A concurrent run won the insert race; the unique
				// constraint is the backstop, so count it as seen.
				s.skippedCounter.Add(ctx, 1)
				continue
			}
			return ingested, err
		}
		ingested++
	}

	s.ingestedCounter.Add(ctx, int64(ingested))
	return ingested, nil
}

func (s *ingestService) resolveIdentity(ctx context.Context, identityID string) (*domain.Identity, error) {
	if identityID != "" {
		identity, err := s.identities.GetByID(ctx, identityID)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// The referenced identity is gone; fall through to the most
		// recently connected one.
	}

	identity, err := s.identities.MostRecentlyConnected(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoIdentity
		}
		return nil, err
	}

	return identity, nil
}

func (s *ingestService) buildItem(identityID string, video tiktok.Video) *domain.ContentItem {
	assessment := risk.Evaluate(video.Caption)

	item := &domain.ContentItem{
		IdentityID:     identityID,
		ExternalItemID: video.ID,
		Caption:        video.Caption,
		ScannedAt:      time.Now(),
		Score:          assessment.Score,
		Band:           string(assessment.Band),
		Factors: domain.Factors{
			CaptionLength: utf8.RuneCountInString(video.Caption),
		},
		Detections:      assessment.Detections,
		Recommendations: assessment.Recommendations,
	}

	if video.CoverImageURL != "" {
		item.CoverURL = &video.CoverImageURL
	}
	if video.ShareURL != "" {
		item.ShareURL = &video.ShareURL
	}
	if video.CreateTime > 0 {
		t := time.Unix(video.CreateTime, 0).UTC()
		item.CreatedAtRemote = &t
	}

	return item
}
