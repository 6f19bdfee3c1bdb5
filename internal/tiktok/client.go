// Package tiktok is the outbound client for the TikTok OAuth and
// content APIs: authorization-code exchange, profile fetch and the
// video list used by ingestion.
package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mlevchenko/riskscan/internal/config"
	"github.com/mlevchenko/riskscan/internal/domain"
)

const (
	defaultAuthURL      = "https://www.tiktok.com/v2/auth/authorize/"
	defaultTokenURL     = "https://open.tiktokapis.com/v2/oauth/token/"
	defaultProfileURL   = "https://open.tiktokapis.com/v2/user/info/"
	defaultVideoListURL = "https://open.tiktokapis.com/v2/video/list/"

	profileFields = "open_id,display_name,avatar_url"
	videoFields   = "video_id,caption,create_time,cover_image_url,share_url"

	// The API caps a single page at 50 items even when more is asked for.
	maxPageSize = 50
)

// APIError is a failed upstream call. The status and body are preserved
// for diagnostics; exchange failures are never retried because
// authorization codes are single-use.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiktok %s failed: status %d: %s", e.Op, e.Status, e.Body)
}

// Video is one item from the video list API.
type Video struct {
	ID            string `json:"video_id"`
	Caption       string `json:"caption"`
	CreateTime    int64  `json:"create_time"`
	CoverImageURL string `json:"cover_image_url"`
	ShareURL      string `json:"share_url"`
}

// Client talks to the TikTok APIs with a bounded request timeout. The
// endpoint fields default to the production API and are overridable in
// tests.
type Client struct {
	AuthURL      string
	TokenURL     string
	ProfileURL   string
	VideoListURL string

	h            *http.Client
	clientKey    string
	clientSecret string
	redirectURI  string
	scopes       string
	now          func() time.Time
}

// NewClient creates a client from the application OAuth credentials.
func NewClient(cfg config.TikTokConfig) *Client {
	timeout := cfg.HTTPTimeout.Duration
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		AuthURL:      defaultAuthURL,
		TokenURL:     defaultTokenURL,
		ProfileURL:   defaultProfileURL,
		VideoListURL: defaultVideoListURL,
		h: &http.Client{
			Timeout: timeout,
		},
		clientKey:    cfg.ClientKey,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		scopes:       cfg.Scopes,
		now:          time.Now,
	}
}

// AuthorizeURL builds the user-facing authorization redirect for a
// fresh PKCE session.
func (c *Client) AuthorizeURL(state, codeChallenge string) string {
	params := url.Values{}
	params.Set("client_key", c.clientKey)
	params.Set("scope", c.scopes)
	params.Set("response_type", "code")
	params.Set("redirect_uri", c.redirectURI)
	params.Set("state", state)
	params.Set("code_challenge", codeChallenge)
	params.Set("code_challenge_method", "S256")

	return c.AuthURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	OpenID       string `json:"open_id"`
}

// Exchange trades an authorization code plus its PKCE verifier for a
// token set. ExpiresAt is computed from expires_in at this moment, not
// trusted from any other field.
func (c *Client) Exchange(ctx context.Context, code, codeVerifier string) (*domain.TokenSet, error) {
	form := url.Values{}
	form.Set("client_key", c.clientKey)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, "token exchange")
	if err != nil {
		return nil, err
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, &APIError{Op: "token exchange", Status: http.StatusOK, Body: string(body)}
	}
	if tok.AccessToken == "" {
		return nil, &APIError{Op: "token exchange", Status: http.StatusOK, Body: string(body)}
	}

	return &domain.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    c.now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}

type profileResponse struct {
	Data struct {
		User struct {
			OpenID      string `json:"open_id"`
			DisplayName string `json:"display_name"`
			AvatarURL   string `json:"avatar_url"`
		} `json:"user"`
	} `json:"data"`
}

// FetchProfile fetches the remote identity profile with a bearer token.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*domain.Profile, error) {
	u := c.ProfileURL + "?fields=" + url.QueryEscape(profileFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	body, err := c.do(req, "profile fetch")
	if err != nil {
		return nil, err
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &APIError{Op: "profile fetch", Status: http.StatusOK, Body: string(body)}
	}
	if profile.Data.User.OpenID == "" {
		return nil, &APIError{Op: "profile fetch", Status: http.StatusOK, Body: string(body)}
	}

	return &domain.Profile{
		ExternalID:  profile.Data.User.OpenID,
		DisplayName: profile.Data.User.DisplayName,
		AvatarURL:   profile.Data.User.AvatarURL,
	}, nil
}

type videoListResponse struct {
	Data struct {
		Videos  []Video `json:"videos"`
		Cursor  int64   `json:"cursor"`
		HasMore bool    `json:"has_more"`
	} `json:"data"`
}

// ListVideos fetches one page of recent videos. maxCount is clamped to
// the API's 1..50 page size.
func (c *Client) ListVideos(ctx context.Context, accessToken string, maxCount int) ([]Video, error) {
	if maxCount < 1 {
		maxCount = 1
	}
	if maxCount > maxPageSize {
		maxCount = maxPageSize
	}

	payload, err := json.Marshal(map[string]int{"max_count": maxCount})
	if err != nil {
		return nil, fmt.Errorf("error encoding video list request: %w", err)
	}

	u := c.VideoListURL + "?fields=" + url.QueryEscape(videoFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating video list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, "video list")
	if err != nil {
		return nil, err
	}

	var list videoListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &APIError{Op: "video list", Status: http.StatusOK, Body: string(body)}
	}

	return list.Data.Videos, nil
}

// do executes a request and returns the body, converting non-2xx
// responses and transport failures into *APIError.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.h.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
