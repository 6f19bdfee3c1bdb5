package service

import (
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateAndConsume(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)

	state, verifier, challenge, err := store.Create()
	require.NoError(t, err)

	assert.NotEmpty(t, state)
	// PKCE requires at least 43 characters of verifier entropy.
	assert.GreaterOrEqual(t, len(verifier), 43)

	h := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(h[:]), challenge)

	got, err := store.Consume(state)
	require.NoError(t, err)
	assert.Equal(t, verifier, got)
}

func TestSessionStore_SingleUse(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)

	state, _, _, err := store.Create()
	require.NoError(t, err)

	_, err = store.Consume(state)
	require.NoError(t, err)

	_, err = store.Consume(state)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_UnknownState(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)

	_, err := store.Consume("never-issued")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)

	current := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	state, _, _, err := store.Create()
	require.NoError(t, err)

	current = current.Add(10*time.Minute + time.Second)

	_, err = store.Consume(state)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_LazyEviction(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)

	current := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	for i := 0; i < 5; i++ {
		_, _, _, err := store.Create()
		require.NoError(t, err)
	}
	assert.Equal(t, 5, store.Len())

	current = current.Add(11 * time.Minute)

	// The next Create sweeps everything stale.
	_, _, _, err := store.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_ConcurrentConsume(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)

	state, _, _, err := store.Create()
	require.NoError(t, err)

	const callers = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := store.Consume(state); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one concurrent consume may succeed")
}

func TestSessionStore_StatesAreUnique(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		state, _, _, err := store.Create()
		require.NoError(t, err)
		require.False(t, seen[state], "state collision")
		seen[state] = true
	}
}
