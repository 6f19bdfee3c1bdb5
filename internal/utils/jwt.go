package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ConnectionTokenManager signs and validates the cookie that ties a
// browser session to a connected identity. Carrying the identity id in
// a signed token lets ingestion target the caller's account explicitly
// instead of guessing from insertion order.
type ConnectionTokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewConnectionTokenManager creates a new connection token manager
func NewConnectionTokenManager(secret string, expiry time.Duration) *ConnectionTokenManager {
	return &ConnectionTokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Generate signs a token for the given identity row id.
func (m *ConnectionTokenManager) Generate(identityID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"identity_id": identityID,
		"exp":         now.Add(m.expiry).Unix(),
		"iat":         now.Unix(),
		"jti":         uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign connection token: %w", err)
	}

	return tokenString, nil
}

// Validate parses a token and returns the identity id it carries.
func (m *ConnectionTokenManager) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse connection token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid connection token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid connection token claims")
	}

	identityID, ok := claims["identity_id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid identity_id in connection token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return "", fmt.Errorf("invalid exp in connection token")
	}
	if time.Now().Unix() > int64(exp) {
		return "", fmt.Errorf("connection token is expired")
	}

	return identityID, nil
}

// Expiry returns the configured cookie lifetime in seconds.
func (m *ConnectionTokenManager) Expiry() int {
	return int(m.expiry.Seconds())
}
