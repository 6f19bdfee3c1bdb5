package domain

import "time"

// Identity is the durable record of one connected TikTok account: its
// credentials and the profile metadata captured at connect time.
type Identity struct {
	ID           string     `json:"id" db:"id"`
	ExternalID   string     `json:"external_id" db:"external_id"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at" db:"expires_at"`
	DisplayName  *string    `json:"display_name" db:"display_name"`
	AvatarURL    *string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// TokenSet is the result of an authorization-code exchange. ExpiresAt is
// computed locally from expires_in at the moment of exchange.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Profile is the remote account profile fetched after token exchange.
type Profile struct {
	ExternalID  string
	DisplayName string
	AvatarURL   string
}
