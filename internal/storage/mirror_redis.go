// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/spark/internal/platform/constants"
)

// RedisKV is the part of a go-redis client the mirror uses.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisMirror keeps one JSON array per collection in Redis.
type RedisMirror struct {
	client RedisKV
}

// NewRedisMirror returns a mirror writing to client.
func NewRedisMirror(client RedisKV) *RedisMirror {
	return &RedisMirror{client: client}
}

func redisKey(resource string) string {
	return constants.RedisPrefixStore + resource
}

// Load implements [Mirror]. A missing key is an empty collection.
func (r *RedisMirror) Load(ctx context.Context, resource string) ([]Row, error) {
	data, err := r.client.Get(ctx, redisKey(resource)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage_redis_read_failed: %w", err)
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("storage_redis_decode_failed: %s: %w", resource, err)
	}
	return rows, nil
}

// Save implements [Mirror]. The snapshot never expires.
func (r *RedisMirror) Save(ctx context.Context, resource string, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("storage_redis_encode_failed: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(resource), data, 0).Err(); err != nil {
		return fmt.Errorf("storage_redis_write_failed: %w", err)
	}
	return nil
}
