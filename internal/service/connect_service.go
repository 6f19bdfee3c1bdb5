package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mlevchenko/riskscan/internal/config"
	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/internal/repository"
)

// ErrMissingCallbackParams is returned when the provider redirects back
// without a code or state.
var ErrMissingCallbackParams = errors.New("missing code or state")

// connectService implements ConnectService interface
type connectService struct {
	tiktokCfg  config.TikTokConfig
	sessions   *SessionStore
	client     RemoteClient
	identities repository.IdentityRepository
}

// NewConnectService creates a new connect service
func NewConnectService(
	tiktokCfg config.TikTokConfig,
	sessions *SessionStore,
	client RemoteClient,
	identities repository.IdentityRepository,
) ConnectService {
	return &connectService{
		tiktokCfg:  tiktokCfg,
		sessions:   sessions,
		client:     client,
		identities: identities,
	}
}

// BeginLogin opens a fresh PKCE session and returns the authorization
// redirect URL. It refuses to run on missing or placeholder credentials.
func (s *connectService) BeginLogin(ctx context.Context) (string, error) {
	if err := s.tiktokCfg.Validate(); err != nil {
		return "", err
	}

	state, _, challenge, err := s.sessions.Create()
	if err != nil {
		return "", fmt.Errorf("failed to create authorization session: %w", err)
	}

	return s.client.AuthorizeURL(state, challenge), nil
}

// HandleCallback consumes the PKCE session for state, exchanges the
// authorization code, fetches the remote profile and upserts the
// identity. The session is consumed exactly once whether or not the
// exchange succeeds.
func (s *connectService) HandleCallback(ctx context.Context, code, state string) (*domain.Identity, error) {
	if err := s.tiktokCfg.Validate(); err != nil {
		return nil, err
	}

	if code == "" || state == "" {
		return nil, ErrMissingCallbackParams
	}

	codeVerifier, err := s.sessions.Consume(state)
	if err != nil {
		return nil, err
	}

	tokens, err := s.client.Exchange(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}

	profile, err := s.client.FetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.Upsert(ctx, profile.ExternalID, *tokens, *profile)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert identity: %w", err)
	}

	return identity, nil
}
