package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"roomcontrol/backend/services/control-service/internal/models"
)

type fakeReadings struct {
	mu       sync.Mutex
	inserted []models.Reading
	latest   []models.SensorReading
	from, to time.Time
	err      error
}

func (f *fakeReadings) Insert(_ context.Context, r *models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, *r)
	return nil
}

func (f *fakeReadings) LatestWithin(_ context.Context, from, to time.Time) ([]models.SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.SensorReading, len(f.latest))
	copy(out, f.latest)
	return out, nil
}

func (f *fakeReadings) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type statusUpdate struct {
	deviceID int64
	status   string
}

type fakeDevices struct {
	mu      sync.Mutex
	updates []statusUpdate
	devices []models.Device
	rooms   []int64
	err     error
}

func (f *fakeDevices) UpsertStatus(_ context.Context, deviceID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, statusUpdate{deviceID: deviceID, status: status})
	return nil
}

func (f *fakeDevices) ListByRooms(_ context.Context, roomIDs []int64) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append([]int64(nil), roomIDs...)
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[int64]bool, len(roomIDs))
	for _, id := range roomIDs {
		wanted[id] = true
	}
	var out []models.Device
	for _, d := range f.devices {
		if wanted[d.RoomID] {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu    sync.Mutex
	saved []models.DeviceStatus
	err   error
}

func (f *fakeCache) Save(_ context.Context, status models.DeviceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, status)
	return nil
}

type fakeSettings struct {
	settings []models.RoomSetting
	err      error
}

func (f *fakeSettings) ListEnabled(context.Context) ([]models.RoomSetting, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.RoomSetting
	for _, s := range f.settings {
		if s.AutoControlEnabled {
			out = append(out, s)
		}
	}
	return out, nil
}

type published struct {
	topic   string
	payload string
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	failFor  map[string]error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[topic]; ok {
		return err
	}
	f.messages = append(f.messages, published{topic: topic, payload: string(payload)})
	return nil
}

func (f *fakePublisher) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]published, len(f.messages))
	copy(out, f.messages)
	return out
}

type fakeAudit struct {
	cycleID string
	rooms   []models.AggregatedRoom
	err     error
}

func (f *fakeAudit) InsertBatch(_ context.Context, cycleID string, rooms []models.AggregatedRoom) error {
	f.cycleID = cycleID
	f.rooms = rooms
	return f.err
}

type fakeSink struct {
	mu     sync.Mutex
	events []any
}

func (f *fakeSink) Broadcast(event any) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeSink) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		switch ev := e.(type) {
		case CommandEvent:
			if ev.Type == kind {
				n++
			}
		case ExcursionEvent:
			if ev.Type == kind {
				n++
			}
		case CycleEvent:
			if ev.Type == kind {
				n++
			}
		}
	}
	return n
}

type fakeLock struct {
	held     bool
	err      error
	released int
}

func (f *fakeLock) Acquire(context.Context) (func(context.Context) error, bool, error) {
	if f.err != nil || f.held {
		return nil, false, f.err
	}
	return func(context.Context) error {
		f.released++
		return nil
	}, true, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
