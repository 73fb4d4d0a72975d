package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers which issue key a webhook event already produced,
// so re-delivered events take the update path instead of creating duplicates.
type IdempotencyStore interface {
	IssueKeyForEvent(ctx context.Context, companyID, eventID string) (string, error)
	RememberIssueKey(ctx context.Context, companyID, eventID, issueKey string) error
}

const issueKeyTTL = 7 * 24 * time.Hour

type redisIdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore builds a Redis-backed store.
func NewIdempotencyStore(client *redis.Client) IdempotencyStore {
	return &redisIdempotencyStore{client: client}
}

func (s *redisIdempotencyStore) key(companyID, eventID string) string {
	return "voicemail:issue:" + companyID + ":" + eventID
}

// IssueKeyForEvent returns the remembered issue key, or empty when the event
// has not been seen. Redis being unreachable is reported as an error so the
// caller can decide whether to proceed without dedup.
func (s *redisIdempotencyStore) IssueKeyForEvent(ctx context.Context, companyID, eventID string) (string, error) {
	if eventID == "" {
		return "", nil
	}
	val, err := s.client.Get(ctx, s.key(companyID, eventID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *redisIdempotencyStore) RememberIssueKey(ctx context.Context, companyID, eventID, issueKey string) error {
	if eventID == "" {
		return nil
	}
	return s.client.Set(ctx, s.key(companyID, eventID), issueKey, issueKeyTTL).Err()
}
