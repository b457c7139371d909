package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventDedupeStore implements ports.EventDedupeStore using Redis SET NX.
// It is a best-effort fast path: a miss or a Redis outage degrades to
// the conditional transition in PostgreSQL, never to a double-apply.
type EventDedupeStore struct {
	client *goredis.Client
	prefix string
}

// NewEventDedupeStore creates a new Redis-backed dedupe store.
func NewEventDedupeStore(client *goredis.Client) *EventDedupeStore {
	return &EventDedupeStore{
		client: client,
		prefix: "webhook:event:",
	}
}

// ClaimEvent atomically claims a delivery. Returns true if this is the
// first time the delivery was seen within the TTL window.
func (s *EventDedupeStore) ClaimEvent(ctx context.Context, provider, eventID string, ttl time.Duration) (bool, error) {
	key := s.prefix + provider + ":" + eventID
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — delivery was already claimed
			return false, nil
		}
		return false, fmt.Errorf("redis event claim: %w", err)
	}
	return result == "OK", nil
}

// ReleaseEvent drops a claim so the provider's retry of a failed
// delivery is processed rather than short-circuited.
func (s *EventDedupeStore) ReleaseEvent(ctx context.Context, provider, eventID string) error {
	key := s.prefix + provider + ":" + eventID
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis event release: %w", err)
	}
	return nil
}
