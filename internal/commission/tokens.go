package commission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	confirmTokenPrefix = "commission:confirm:"
	confirmTokenTTL    = 5 * time.Minute
)

// RedisTokenStore keeps confirmation tokens single-use by deleting the key on
// consumption. A token names the exact record set and target status it was
// requested for.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

type confirmPayload struct {
	RecordIDs []int64 `json:"record_ids"`
	NewStatus string  `json:"new_status"`
}

func (s *RedisTokenStore) Issue(ctx context.Context, recordIDs []int64, newStatus string) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(confirmPayload{RecordIDs: recordIDs, NewStatus: newStatus})
	if err != nil {
		return "", err
	}
	key := confirmTokenPrefix + token
	if err := s.client.Set(ctx, key, payload, confirmTokenTTL).Err(); err != nil {
		return "", &PersistenceError{Op: "store confirmation token", Err: err}
	}
	return token, nil
}

func (s *RedisTokenStore) Consume(ctx context.Context, token, newStatus string) ([]int64, error) {
	key := confirmTokenPrefix + token
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load confirmation token", Err: err}
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return nil, &PersistenceError{Op: "consume confirmation token", Err: err}
	}

	var payload confirmPayload
	if err := json.Unmarshal([]byte(val), &payload); err != nil {
		return nil, fmt.Errorf("corrupt confirmation token: %w", err)
	}
	if payload.NewStatus != newStatus {
		return nil, ErrInvalidToken
	}
	return payload.RecordIDs, nil
}
