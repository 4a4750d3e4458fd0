package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	redisclient "github.com/voo-ward/voo-citizen-backend/pkg/redis"
)

var testJWT = config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 24 * 60}

func newTestManager(t *testing.T) (*Manager, *redisclient.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisclient.New(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	manager, err := NewManager(client, testJWT)
	require.NoError(t, err)
	return manager, client, mr
}

func TestManagerGenerateStoresDigest(t *testing.T) {
	manager, client, mr := newTestManager(t)
	userID := uuid.New()

	token, err := manager.Generate(context.Background(), userID, "access-1")
	require.NoError(t, err)

	key := client.AccessSessionKey("access-1")
	raw, err := mr.Get(key)
	require.NoError(t, err)
	assert.NotContains(t, raw, token)

	var rec record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, digest(token), rec.TokenHash)
	assert.Equal(t, 24*time.Hour, mr.TTL(key))
}

func TestManagerRotate(t *testing.T) {
	manager, client, mr := newTestManager(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := manager.Generate(ctx, userID, "access-1")
	require.NoError(t, err)

	_, err = manager.Rotate(ctx, "access-1", "wrong")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	rotation, err := manager.Rotate(ctx, "access-1", token)
	require.NoError(t, err)
	assert.Equal(t, userID, rotation.UserID)
	assert.NotEqual(t, token, rotation.RefreshToken)
	assert.False(t, mr.Exists(client.AccessSessionKey("access-1")))
	assert.True(t, mr.Exists(client.AccessSessionKey(rotation.AccessID)))

	_, err = manager.Rotate(ctx, "access-1", token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "replayed refresh token")
}

func TestManagerRotateConcurrentRefreshesWinOnce(t *testing.T) {
	manager, _, _ := newTestManager(t)
	ctx := context.Background()

	token, err := manager.Generate(ctx, uuid.New(), "access-1")
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.Rotate(ctx, "access-1", token); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestManagerRotateExpired(t *testing.T) {
	manager, _, mr := newTestManager(t)
	ctx := context.Background()

	token, err := manager.Generate(ctx, uuid.New(), "access-1")
	require.NoError(t, err)
	mr.FastForward(25 * time.Hour)

	_, err = manager.Rotate(ctx, "access-1", token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestManagerRejectsCorruptRecord(t *testing.T) {
	manager, client, mr := newTestManager(t)
	require.NoError(t, mr.Set(client.AccessSessionKey("access-1"), "not-a-record"))

	_, err := manager.Rotate(context.Background(), "access-1", "not-a-record")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestManagerHasSessionAndRevoke(t *testing.T) {
	manager, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := manager.Generate(ctx, uuid.New(), "access-1")
	require.NoError(t, err)

	ok, err := manager.HasSession(ctx, "access-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, manager.Revoke(ctx, "access-1"))
	require.NoError(t, manager.Revoke(ctx, "access-1"))

	ok, err = manager.HasSession(ctx, "access-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = manager.HasSession(ctx, " ")
	assert.Error(t, err)
}

func TestNewManagerValidatesTTL(t *testing.T) {
	_, err := NewManager(nil, testJWT)
	assert.Error(t, err)

	_, err = newManager(nil, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30})
	assert.Error(t, err)

	_, err = newManager(nil, config.JWTConfig{ExpirationMinutes: 60})
	assert.Error(t, err)
}
