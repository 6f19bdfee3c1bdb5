package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func TestConnectionToken_RoundTrip(t *testing.T) {
	m := NewConnectionTokenManager(testSecret, time.Hour)

	token, err := m.Generate("identity-abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "identity-abc", got)
}

func TestConnectionToken_Expired(t *testing.T) {
	m := NewConnectionTokenManager(testSecret, -time.Minute)

	token, err := m.Generate("identity-abc")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestConnectionToken_WrongSecret(t *testing.T) {
	m := NewConnectionTokenManager(testSecret, time.Hour)
	other := NewConnectionTokenManager("another-secret-key-also-32-characters-long!", time.Hour)

	token, err := m.Generate("identity-abc")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestConnectionToken_Garbage(t *testing.T) {
	m := NewConnectionTokenManager(testSecret, time.Hour)

	_, err := m.Validate("not-a-jwt")
	assert.Error(t, err)
}
