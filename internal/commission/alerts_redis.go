package commission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	alertSettingsPrefix = "alerts:settings:"
	alertNotifiedPrefix = "alerts:notified:"
)

// RedisAlertStore backs both the per-user settings blob and the
// already-notified flag. No TTL on either: the flag survives sessions and is
// cleared only by explicit reset.
type RedisAlertStore struct {
	client *redis.Client
}

func NewRedisAlertStore(client *redis.Client) *RedisAlertStore {
	return &RedisAlertStore{client: client}
}

func (s *RedisAlertStore) Load(ctx context.Context, userID int64) (*AlertSettings, error) {
	val, err := s.client.Get(ctx, fmt.Sprintf("%s%d", alertSettingsPrefix, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load alert settings", Err: err}
	}
	var settings AlertSettings
	if err := json.Unmarshal([]byte(val), &settings); err != nil {
		return nil, fmt.Errorf("corrupt alert settings for user %d: %w", userID, err)
	}
	return &settings, nil
}

func (s *RedisAlertStore) Save(ctx context.Context, userID int64, settings AlertSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, fmt.Sprintf("%s%d", alertSettingsPrefix, userID), data, 0).Err(); err != nil {
		return &PersistenceError{Op: "save alert settings", Err: err}
	}
	return nil
}

func (s *RedisAlertStore) AlreadyNotified(ctx context.Context, userID int64) (bool, error) {
	val, err := s.client.Get(ctx, fmt.Sprintf("%s%d", alertNotifiedPrefix, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "load notified flag", Err: err}
	}
	return val == "1", nil
}

func (s *RedisAlertStore) MarkNotified(ctx context.Context, userID int64) error {
	if err := s.client.Set(ctx, fmt.Sprintf("%s%d", alertNotifiedPrefix, userID), "1", 0).Err(); err != nil {
		return &PersistenceError{Op: "mark notified", Err: err}
	}
	return nil
}

func (s *RedisAlertStore) ClearNotified(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, fmt.Sprintf("%s%d", alertNotifiedPrefix, userID)).Err(); err != nil {
		return &PersistenceError{Op: "clear notified flag", Err: err}
	}
	return nil
}
