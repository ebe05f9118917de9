package filters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Template is a named snapshot of the commission log filter tuple, saved for
// one-click reapplication. Names are not required to be unique.
type Template struct {
	Name       string  `json:"name"`
	StartDate  string  `json:"start_date,omitempty"`
	EndDate    string  `json:"end_date,omitempty"`
	SupplierID *int64  `json:"supplier_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	MinAmount  *string `json:"min_amount,omitempty"`
	MaxAmount  *string `json:"max_amount,omitempty"`
}

// Store keeps templates in redis, deliberately apart from the relational
// entities: they are a per-user convenience with an independent lifecycle.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(userID int64) string {
	return fmt.Sprintf("filters:templates:%d", userID)
}

func (s *Store) Save(ctx context.Context, userID int64, t Template) error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, key(userID), data).Err()
}

func (s *Store) List(ctx context.Context, userID int64) ([]Template, error) {
	raw, err := s.client.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	templates := make([]Template, 0, len(raw))
	for _, item := range raw {
		var t Template
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Delete removes the first stored template with the given name. Names are
// not unique, so repeated deletes peel off duplicates one at a time.
func (s *Store) Delete(ctx context.Context, userID int64, name string) (bool, error) {
	raw, err := s.client.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return false, err
	}
	for _, item := range raw {
		var t Template
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		if t.Name == name {
			removed, err := s.client.LRem(ctx, key(userID), 1, item).Result()
			if err != nil {
				return false, err
			}
			return removed > 0, nil
		}
	}
	return false, nil
}
