package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevchenko/riskscan/internal/config"
	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/internal/tiktok"
)

func validTikTokConfig() config.TikTokConfig {
	return config.TikTokConfig{
		ClientKey:    "awabc123",
		ClientSecret: "secret",
		RedirectURI:  "https://example.com/api/v1/tiktok/callback",
		Scopes:       "user.info.basic,video.list",
	}
}

// scriptedRemote lets callback tests control each outbound step.
type scriptedRemote struct {
	fakeRemote
	exchangeErr  error
	profileErr   error
	gotCode      string
	gotVerifier  string
	profile      domain.Profile
	tokenExpires time.Time
}

func (s *scriptedRemote) Exchange(_ context.Context, code, codeVerifier string) (*domain.TokenSet, error) {
	s.gotCode = code
	s.gotVerifier = codeVerifier
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return &domain.TokenSet{
		AccessToken:  "act.fresh",
		RefreshToken: "rft.fresh",
		ExpiresAt:    s.tokenExpires,
	}, nil
}

func (s *scriptedRemote) FetchProfile(_ context.Context, accessToken string) (*domain.Profile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return &s.profile, nil
}

func TestBeginLogin_BuildsRedirect(t *testing.T) {
	sessions := NewSessionStore(10 * time.Minute)
	svc := NewConnectService(validTikTokConfig(), sessions, &fakeRemote{}, &fakeIdentityRepo{})

	redirect, err := svc.BeginLogin(context.Background())
	require.NoError(t, err)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	state := u.Query().Get("state")
	assert.NotEmpty(t, state)
	assert.Equal(t, 1, sessions.Len())
}

func TestBeginLogin_RefusesPlaceholderCredentials(t *testing.T) {
	cfg := validTikTokConfig()
	cfg.ClientSecret = "<your-client-secret>"

	sessions := NewSessionStore(10 * time.Minute)
	svc := NewConnectService(cfg, sessions, &fakeRemote{}, &fakeIdentityRepo{})

	_, err := svc.BeginLogin(context.Background())
	assert.ErrorIs(t, err, config.ErrCredentials)
	assert.Equal(t, 0, sessions.Len(), "no session may be created on config failure")
}

func TestHandleCallback_Success(t *testing.T) {
	sessions := NewSessionStore(10 * time.Minute)
	remote := &scriptedRemote{
		profile:      domain.Profile{ExternalID: "open-1", DisplayName: "Sam"},
		tokenExpires: time.Now().Add(24 * time.Hour),
	}
	identities := &fakeIdentityRepo{}
	svc := NewConnectService(validTikTokConfig(), sessions, remote, identities)

	state, verifier, _, err := sessions.Create()
	require.NoError(t, err)

	identity, err := svc.HandleCallback(context.Background(), "authcode", state)
	require.NoError(t, err)

	assert.Equal(t, "authcode", remote.gotCode)
	assert.Equal(t, verifier, remote.gotVerifier)
	assert.Equal(t, "open-1", identity.ExternalID)
	assert.Equal(t, "act.fresh", identity.AccessToken)
	require.NotNil(t, identity.DisplayName)
	assert.Equal(t, "Sam", *identity.DisplayName)
}

func TestHandleCallback_UnknownState(t *testing.T) {
	svc := NewConnectService(validTikTokConfig(), NewSessionStore(10*time.Minute), &scriptedRemote{}, &fakeIdentityRepo{})

	_, err := svc.HandleCallback(context.Background(), "authcode", "forged-state")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHandleCallback_StateIsSingleUse(t *testing.T) {
	sessions := NewSessionStore(10 * time.Minute)
	remote := &scriptedRemote{profile: domain.Profile{ExternalID: "open-1"}}
	svc := NewConnectService(validTikTokConfig(), sessions, remote, &fakeIdentityRepo{})

	state, _, _, err := sessions.Create()
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), "authcode", state)
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), "authcode", state)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHandleCallback_ExchangeFailureConsumesSession(t *testing.T) {
	sessions := NewSessionStore(10 * time.Minute)
	remote := &scriptedRemote{exchangeErr: &tiktok.APIError{Op: "token exchange", Status: 400, Body: "invalid_grant"}}
	svc := NewConnectService(validTikTokConfig(), sessions, remote, &fakeIdentityRepo{})

	state, _, _, err := sessions.Create()
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), "expired-code", state)

	var apiErr *tiktok.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	// The session is gone either way; a retry has to restart the login.
	assert.Equal(t, 0, sessions.Len())
}

func TestHandleCallback_MissingParams(t *testing.T) {
	svc := NewConnectService(validTikTokConfig(), NewSessionStore(10*time.Minute), &scriptedRemote{}, &fakeIdentityRepo{})

	_, err := svc.HandleCallback(context.Background(), "", "state")
	assert.ErrorIs(t, err, ErrMissingCallbackParams)

	_, err = svc.HandleCallback(context.Background(), "code", "")
	assert.ErrorIs(t, err, ErrMissingCallbackParams)
}

func TestHandleCallback_UpsertRefreshesCredentialsKeepsProfile(t *testing.T) {
	sessions := NewSessionStore(10 * time.Minute)
	identities := &fakeIdentityRepo{}
	remote := &scriptedRemote{profile: domain.Profile{ExternalID: "open-1", DisplayName: "Sam"}}
	svc := NewConnectService(validTikTokConfig(), sessions, remote, identities)

	state, _, _, err := sessions.Create()
	require.NoError(t, err)
	first, err := svc.HandleCallback(context.Background(), "code-1", state)
	require.NoError(t, err)

	// Re-authorize with an empty display name: credentials refresh, the
	// stored name survives.
	remote.profile = domain.Profile{ExternalID: "open-1"}
	state, _, _, err = sessions.Create()
	require.NoError(t, err)
	second, err := svc.HandleCallback(context.Background(), "code-2", state)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-authorization must not duplicate the identity")
	require.NotNil(t, second.DisplayName)
	assert.Equal(t, "Sam", *second.DisplayName)

	assert.Len(t, identities.identities, 1)
}

func TestHandleCallback_NotRetriedOnProfileFailure(t *testing.T) {
	sessions := NewSessionStore(10 * time.Minute)
	remote := &scriptedRemote{profileErr: errors.New("boom")}
	identities := &fakeIdentityRepo{}
	svc := NewConnectService(validTikTokConfig(), sessions, remote, identities)

	state, _, _, err := sessions.Create()
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), "code", state)
	require.Error(t, err)
	assert.Empty(t, identities.identities, "no identity may be written on profile failure")
}
