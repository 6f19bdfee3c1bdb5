package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevchenko/riskscan/internal/config"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.TikTokConfig{
		ClientKey:    "test-key",
		ClientSecret: "test-secret",
		RedirectURI:  "https://example.com/api/v1/tiktok/callback",
		Scopes:       "user.info.basic,video.list",
		HTTPTimeout:  config.Duration{Duration: 5 * time.Second},
	})
	c.AuthURL = srv.URL + "/authorize"
	c.TokenURL = srv.URL + "/oauth/token"
	c.ProfileURL = srv.URL + "/user/info"
	c.VideoListURL = srv.URL + "/video/list"

	return c, srv
}

func TestAuthorizeURL(t *testing.T) {
	c, _ := testClient(t, http.NotFoundHandler())

	raw := c.AuthorizeURL("state123", "challenge456")

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "test-key", q.Get("client_key"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "user.info.basic,video.list", q.Get("scope"))
	assert.Equal(t, "https://example.com/api/v1/tiktok/callback", q.Get("redirect_uri"))
	assert.Equal(t, "state123", q.Get("state"))
	assert.Equal(t, "challenge456", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestExchange_Success(t *testing.T) {
	var gotForm url.Values

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "act.abc",
			"refresh_token": "rft.def",
			"expires_in":    86400,
			"open_id":       "open-123",
		})
	}))

	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	tok, err := c.Exchange(context.Background(), "authcode", "verifier123")
	require.NoError(t, err)

	assert.Equal(t, "act.abc", tok.AccessToken)
	assert.Equal(t, "rft.def", tok.RefreshToken)
	assert.Equal(t, fixed.Add(86400*time.Second), tok.ExpiresAt)

	assert.Equal(t, "test-key", gotForm.Get("client_key"))
	assert.Equal(t, "test-secret", gotForm.Get("client_secret"))
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "authcode", gotForm.Get("code"))
	assert.Equal(t, "verifier123", gotForm.Get("code_verifier"))
	assert.Equal(t, "https://example.com/api/v1/tiktok/callback", gotForm.Get("redirect_uri"))
}

func TestExchange_UpstreamError(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))

	_, err := c.Exchange(context.Background(), "expired", "verifier")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Body, "invalid_grant")
}

func TestExchange_MalformedBody(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"shape"}`))
	}))

	_, err := c.Exchange(context.Background(), "code", "verifier")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Body, "unexpected")
}

func TestFetchProfile_Success(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer act.abc", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("fields"), "open_id")

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user": map[string]any{
					"open_id":      "open-123",
					"display_name": "Sam",
					"avatar_url":   "https://cdn.example.com/a.jpg",
				},
			},
		})
	}))

	profile, err := c.FetchProfile(context.Background(), "act.abc")
	require.NoError(t, err)

	assert.Equal(t, "open-123", profile.ExternalID)
	assert.Equal(t, "Sam", profile.DisplayName)
	assert.Equal(t, "https://cdn.example.com/a.jpg", profile.AvatarURL)
}

func TestListVideos_ClampsMaxCount(t *testing.T) {
	var gotBody map[string]int

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "Bearer act.abc", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"videos": []map[string]any{
					{"video_id": "v1", "caption": "hello", "create_time": 1756600000},
				},
				"has_more": false,
			},
		})
	}))

	videos, err := c.ListVideos(context.Background(), "act.abc", 100)
	require.NoError(t, err)

	assert.Equal(t, 50, gotBody["max_count"])
	require.Len(t, videos, 1)
	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, "hello", videos[0].Caption)
}

func TestListVideos_UpstreamError(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"access_token_invalid"}}`))
	}))

	_, err := c.ListVideos(context.Background(), "bad", 10)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "access_token_invalid")
}
