package leadstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-capture-workers/internal/common/database"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/models"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestStore_SaveAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	payload := models.LeadPayload{
		CorrelationID: "gw_123",
		CustomerID:    "cust_1",
		SourceURL:     "https://example.com",
		Signals:       models.NewSignals(),
	}
	payload.Signals.Email = append(payload.Signals.Email, "jane@x.com")

	require.NoError(t, store.Save(ctx, payload))

	got, err := store.Get(ctx, "gw_123")
	require.NoError(t, err)
	assert.Equal(t, "cust_1", got.CustomerID)
	assert.Equal(t, []string{"jane@x.com"}, got.Signals.Email)
}

func TestStore_GetMissingIsPayloadNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "gw_nope")
	require.Error(t, err)

	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodePayloadNotFound, stdErr.Code)
	assert.Contains(t, stdErr.Details, "gw_nope")
}

func TestStore_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	t.Cleanup(func() { client.Close() })
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.LeadPayload{CorrelationID: "gw_ttl"}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "gw_ttl")
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodePayloadNotFound, stdErr.Code)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.LeadPayload{CorrelationID: "gw_del"}))
	require.NoError(t, store.Delete(ctx, "gw_del"))

	_, err := store.Get(ctx, "gw_del")
	assert.Error(t, err)
}

func TestStore_UnreachableIsStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	store := NewRedisStore(client, time.Hour)
	mr.Close()

	err := store.Save(context.Background(), models.LeadPayload{CorrelationID: "gw_x"})
	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeStoreUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
