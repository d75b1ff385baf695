// internal/leadstore/store.go

// Package leadstore persists capture payloads between the gateway and the
// workers. The workflow engine only carries the AI result and the
// correlation id; the full payload is joined back from here.
package leadstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"lead-capture-workers/internal/common/database"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/models"
)

const keyPrefix = "lead:payload:"

// Store is the payload join store interface the workers consume.
type Store interface {
	Save(ctx context.Context, payload models.LeadPayload) error
	Get(ctx context.Context, correlationID string) (models.LeadPayload, error)
	Delete(ctx context.Context, correlationID string) error
}

// RedisStore keeps payloads in Redis keyed by correlation id, with a TTL so
// abandoned submissions age out on their own.
type RedisStore struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisStore(client *database.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, payload models.LeadPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	if err := s.client.Set(ctx, keyPrefix+payload.CorrelationID, data, s.ttl); err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	return nil
}

// Get returns the payload for a correlation id. A missing key is a
// PAYLOAD_NOT_FOUND, distinct from the store being unreachable: the former
// means the TTL expired or the id is bogus, the latter is retryable.
func (s *RedisStore) Get(ctx context.Context, correlationID string) (models.LeadPayload, error) {
	data, err := s.client.Get(ctx, keyPrefix+correlationID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.LeadPayload{}, commonerrors.NewPayloadNotFoundError(correlationID)
		}
		return models.LeadPayload{}, commonerrors.NewStoreUnavailableError(err)
	}

	var payload models.LeadPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return models.LeadPayload{}, commonerrors.NewStoreUnavailableError(err)
	}
	return payload, nil
}

func (s *RedisStore) Delete(ctx context.Context, correlationID string) error {
	if err := s.client.Del(ctx, keyPrefix+correlationID); err != nil {
		return commonerrors.NewStoreUnavailableError(err)
	}
	return nil
}
