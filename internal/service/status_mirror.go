package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wallfetch/api/internal/model"
)

const statusKey = "wallfetch:status"

// RedisStatusMirror keeps a copy of the job status in Redis so it survives a restart.
// A nil client turns every call into a no-op.
type RedisStatusMirror struct {
	redis   *redis.Client
	timeout time.Duration
}

func NewRedisStatusMirror(redisClient *redis.Client) *RedisStatusMirror {
	return &RedisStatusMirror{
		redis:   redisClient,
		timeout: 2 * time.Second,
	}
}

// PublishStatus implements StatusPublisher
func (m *RedisStatusMirror) PublishStatus(status model.JobStatus) {
	if m == nil || m.redis == nil {
		return
	}

	data, err := json.Marshal(status)
	if err != nil {
		log.Printf("Failed to marshal status: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := m.redis.Set(ctx, statusKey, data, 0).Err(); err != nil {
		log.Printf("Failed to mirror status to redis: %v", err)
	}
}

// Load returns the last mirrored status, or nil when none was stored
func (m *RedisStatusMirror) Load(ctx context.Context) (*model.JobStatus, error) {
	if m == nil || m.redis == nil {
		return nil, nil
	}

	data, err := m.redis.Get(ctx, statusKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var status model.JobStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &status, nil
}
