// Package inbox is the recipient-scoped in-app message store. Unlike the
// external channels it has no provider: a send is a direct, synchronous
// write here.
package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campushq/notification-engine/internal/domain"
)

// Message is one entry in a recipient's inbox.
type Message struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	Category  domain.NotificationType `json:"category"`
	CreatedAt time.Time               `json:"created_at"`
}

// Store is the inbox contract consumed by the In-App adapter and the API.
type Store interface {
	Push(ctx context.Context, userID string, msg Message) error
	List(ctx context.Context, userID string, page, pageSize int) ([]Message, int64, error)
	Ping(ctx context.Context) error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func inboxKey(userID string) string {
	return "inbox:" + userID
}

// Push appends the message to the recipient's sorted set, scored by
// creation time so listing is newest-first.
func (s *redisStore) Push(ctx context.Context, userID string, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal inbox message: %w", err)
	}

	member := redis.Z{
		Score:  float64(msg.CreatedAt.UnixNano()),
		Member: raw,
	}
	if err := s.client.ZAdd(ctx, inboxKey(userID), member).Err(); err != nil {
		return fmt.Errorf("push inbox message for user %s: %w", userID, err)
	}
	return nil
}

func (s *redisStore) List(ctx context.Context, userID string, page, pageSize int) ([]Message, int64, error) {
	key := inboxKey(userID)

	total, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return nil, 0, err
	}

	start := (page - 1) * pageSize
	stop := start + pageSize - 1

	raws, err := s.client.ZRevRange(ctx, key, int64(start), int64(stop)).Result()
	if err != nil {
		return nil, 0, err
	}

	messages := make([]Message, 0, len(raws))
	for _, raw := range raws {
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			// A corrupt member should not hide the rest of the inbox.
			continue
		}
		messages = append(messages, msg)
	}

	return messages, total, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
