package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roomcontrol/backend/services/control-service/internal/models"
)

// ErrNotFound is returned when no status is cached for a device.
var ErrNotFound = errors.New("redisstore: not found")

// DeviceStateStore caches the last reported status of each device.
type DeviceStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeviceStateStore returns redis-backed store.
func NewDeviceStateStore(client *redis.Client, ttl time.Duration) *DeviceStateStore {
	return &DeviceStateStore{client: client, ttl: ttl}
}

func (s *DeviceStateStore) key(deviceID int64) string {
	return fmt.Sprintf("devices:status:%d", deviceID)
}

// Save caches status.
func (s *DeviceStateStore) Save(ctx context.Context, status models.DeviceStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(status.DeviceID), data, s.ttl).Err()
}

// Get returns cached status.
func (s *DeviceStateStore) Get(ctx context.Context, deviceID int64) (*models.DeviceStatus, error) {
	result, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var status models.DeviceStatus
	if err := json.Unmarshal([]byte(result), &status); err != nil {
		return nil, err
	}
	return &status, nil
}
