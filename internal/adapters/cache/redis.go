package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

const (
	issuedIndexKey = "quote:issued"
	issuedKeyFmt   = "quote:issued:%d"
)

// ErrNotIssued is returned when an issued quote is unknown or expired.
var ErrNotIssued = errors.New("issued quote not found")

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) port.IssuedQuoteCache {
	return &RedisAdapter{
		client: client,
		ttl:    ttl,
	}
}

// RecordIssued stores an issued quote view with expiration and indexes it by id
func (r *RedisAdapter) RecordIssued(ctx context.Context, q domain.Quote) error {
	dataBytes, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal issued quote: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(issuedKeyFmt, q.ID), dataBytes, r.ttl)
	pipe.ZAdd(ctx, issuedIndexKey, redis.Z{
		Score:  float64(q.ID),
		Member: strconv.FormatInt(q.ID, 10),
	})
	pipe.Expire(ctx, issuedIndexKey, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record issued quote: %w", err)
	}
	return nil
}

// GetIssued retrieves an issued quote by its view id
func (r *RedisAdapter) GetIssued(ctx context.Context, id int64) (*domain.Quote, error) {
	dataStr, err := r.client.Get(ctx, fmt.Sprintf(issuedKeyFmt, id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotIssued
		}
		return nil, fmt.Errorf("failed to get issued quote: %w", err)
	}

	var q domain.Quote
	if err := json.Unmarshal([]byte(dataStr), &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issued quote: %w", err)
	}
	return &q, nil
}

// RecentIssued returns up to limit issued quotes, newest first.
// Index entries whose payload already expired are skipped and pruned.
func (r *RedisAdapter) RecentIssued(ctx context.Context, limit int64) ([]domain.Quote, error) {
	if limit <= 0 {
		return []domain.Quote{}, nil
	}

	members, err := r.client.ZRevRange(ctx, issuedIndexKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read issued index: %w", err)
	}

	quotes := make([]domain.Quote, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}

		q, err := r.GetIssued(ctx, id)
		if errors.Is(err, ErrNotIssued) {
			r.client.ZRem(ctx, issuedIndexKey, member)
			continue
		}
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

// Ping checks Redis connection health
func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
