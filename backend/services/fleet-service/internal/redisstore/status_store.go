package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pumpsign/backend/services/fleet-service/internal/monitor"
)

// StatusStore caches station liveness in redis so dashboards and other
// services can read fleet state without touching the monitor.
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusStore returns a redis-backed status cache.
func NewStatusStore(client *redis.Client, ttl time.Duration) *StatusStore {
	return &StatusStore{client: client, ttl: ttl}
}

func (s *StatusStore) key(stationID string) string {
	return fmt.Sprintf("fleet:status:%s", stationID)
}

// Save caches one station's status.
func (s *StatusStore) Save(ctx context.Context, stationID string, status monitor.ConnectionStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(stationID), data, s.ttl).Err()
}

// Get returns a cached status.
func (s *StatusStore) Get(ctx context.Context, stationID string) (*monitor.ConnectionStatus, error) {
	result, err := s.client.Get(ctx, s.key(stationID)).Result()
	if err != nil {
		return nil, err
	}
	var status monitor.ConnectionStatus
	if err := json.Unmarshal([]byte(result), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Delete removes a cached status, used when a station leaves monitoring.
func (s *StatusStore) Delete(ctx context.Context, stationID string) error {
	return s.client.Del(ctx, s.key(stationID)).Err()
}
