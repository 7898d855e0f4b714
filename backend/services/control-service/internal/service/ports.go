package service

import (
	"context"
	"time"

	"roomcontrol/backend/services/control-service/internal/models"
)

// ReadingWriter persists sensor samples.
type ReadingWriter interface {
	Insert(ctx context.Context, reading *models.Reading) error
}

// DeviceStatusWriter records the last status reported by a device.
type DeviceStatusWriter interface {
	UpsertStatus(ctx context.Context, deviceID int64, status string) error
}

// StatusCache mirrors device status for fast reads.
type StatusCache interface {
	Save(ctx context.Context, status models.DeviceStatus) error
}

// ReadingSource returns the newest reading of every placed sensor within [from, to].
type ReadingSource interface {
	LatestWithin(ctx context.Context, from, to time.Time) ([]models.SensorReading, error)
}

// SettingSource returns room settings with auto control enabled.
type SettingSource interface {
	ListEnabled(ctx context.Context) ([]models.RoomSetting, error)
}

// DeviceSource lists the devices installed in the given rooms.
type DeviceSource interface {
	ListByRooms(ctx context.Context, roomIDs []int64) ([]models.Device, error)
}

// CommandPublisher sends one command payload to a topic.
type CommandPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// AuditWriter stores the aggregated rooms of a cycle.
type AuditWriter interface {
	InsertBatch(ctx context.Context, cycleID string, rooms []models.AggregatedRoom) error
}

// EventSink receives control events for live subscribers.
type EventSink interface {
	Broadcast(event any)
}

// CycleLock is an optional cross-process guard around a cycle.
type CycleLock interface {
	Acquire(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}
