// Package redis provides the read-model cache for delivery state queries.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deliveries/internal/core/application/usecases/queries"
	"deliveries/internal/core/domain/model/kernel"

	"github.com/go-redis/redis/v8"
)

// DeliveryCache stores serialized delivery read models under a per-delivery
// key. Entries are written by the query handler on cache misses and dropped
// by the outbox dispatcher after each published event; the TTL bounds
// staleness when an invalidation is lost.
type DeliveryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeliveryCache connects to redis and verifies the connection.
func NewDeliveryCache(ctx context.Context, addr string, ttl time.Duration) (*DeliveryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &DeliveryCache{client: client, ttl: ttl}, nil
}

// Get returns the cached read model and whether the entry was present.
func (c *DeliveryCache) Get(ctx context.Context, id kernel.UUID) (queries.GetDeliveryQueryResponse, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return queries.GetDeliveryQueryResponse{}, false, nil
		}
		return queries.GetDeliveryQueryResponse{}, false, err
	}

	var response queries.GetDeliveryQueryResponse
	if err = json.Unmarshal(data, &response); err != nil {
		return queries.GetDeliveryQueryResponse{}, false, err
	}

	return response, true, nil
}

// Set stores the read model under the delivery's identifier.
func (c *DeliveryCache) Set(ctx context.Context, id kernel.UUID, response queries.GetDeliveryQueryResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, cacheKey(id), data, c.ttl).Err()
}

// Invalidate drops the cached read model for a delivery.
func (c *DeliveryCache) Invalidate(ctx context.Context, id kernel.UUID) error {
	return c.client.Del(ctx, cacheKey(id)).Err()
}

// Close closes the underlying client.
func (c *DeliveryCache) Close() error {
	return c.client.Close()
}

func cacheKey(id kernel.UUID) string {
	return "delivery:" + id.String()
}
