// Copyright (c) 2026 EduSeek. All rights reserved.
// Author: quang.leminh.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eduseek/eduseek/internal/platform/constants"
)

// retryDelay is the pause before the single retry of a failed registry
// operation. Auth failures themselves are never retried; only transient
// registry I/O is, and exactly once.
const retryDelay = 50 * time.Millisecond

// RedisTokenRegistry implements [TokenRegistry] using Redis.
//
// Keys follow the shape "auth:token:<PURPOSE>:<principal>", and every entry
// carries a TTL so the store cleans up after itself.
type RedisTokenRegistry struct {
	client *redis.Client
}

// NewTokenRegistry creates a new Redis-backed TokenRegistry.
func NewTokenRegistry(client *redis.Client) *RedisTokenRegistry {
	return &RedisTokenRegistry{client: client}
}

// Put stores the value under (purpose, principal), overwriting any prior
// entry. SET is a single atomic operation, so a concurrent rotation cannot
// observe a half-written state.
func (registry *RedisTokenRegistry) Put(ctx context.Context, purpose, principal, value string, ttl time.Duration) error {
	key := registryKey(purpose, principal)

	err := registry.client.Set(ctx, key, value, ttl).Err()
	if isTransient(err) {
		time.Sleep(retryDelay)
		err = registry.client.Set(ctx, key, value, ttl).Err()
	}
	if err != nil {
		return fmt.Errorf("redis_token_registry_put_failed: %w", err)
	}

	return nil
}

// Get retrieves the current value for (purpose, principal).
//
// Returns [ErrEntryAbsent] when no entry exists. A transient failure is
// retried once and then propagated — never mapped to absence here, so the
// caller can distinguish "deny because unknown token" from "deny because
// the registry is down".
func (registry *RedisTokenRegistry) Get(ctx context.Context, purpose, principal string) (string, error) {
	key := registryKey(purpose, principal)

	value, err := registry.client.Get(ctx, key).Result()
	if isTransient(err) {
		time.Sleep(retryDelay)
		value, err = registry.client.Get(ctx, key).Result()
	}

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEntryAbsent
		}
		return "", fmt.Errorf("redis_token_registry_get_failed: %w", err)
	}

	return value, nil
}

// Delete removes the entry for (purpose, principal).
// Deleting a missing entry is not an error (idempotent logout).
func (registry *RedisTokenRegistry) Delete(ctx context.Context, purpose, principal string) error {
	key := registryKey(purpose, principal)

	err := registry.client.Del(ctx, key).Err()
	if isTransient(err) {
		time.Sleep(retryDelay)
		err = registry.client.Del(ctx, key).Err()
	}
	if err != nil {
		return fmt.Errorf("redis_token_registry_delete_failed: %w", err)
	}

	return nil
}

// registryKey builds the namespaced Redis key for a registry entry.
func registryKey(purpose, principal string) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixToken, purpose, principal)
}

// isTransient reports whether err is worth a single retry.
// redis.Nil is a definitive answer, not a failure.
func isTransient(err error) bool {
	return err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled)
}
