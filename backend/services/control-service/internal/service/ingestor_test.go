package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"roomcontrol/backend/services/control-service/internal/models"
)

func newTestIngestor(readings *fakeReadings, devices *fakeDevices, cache *fakeCache) *Ingestor {
	var sc StatusCache
	if cache != nil {
		sc = cache
	}
	ing := NewIngestor(readings, devices, sc, true, zap.NewNop())
	ing.now = fixedClock(time.Date(2024, 3, 1, 10, 15, 30, 987654321, time.UTC))
	return ing
}

func TestIngestorStoresSensorReading(t *testing.T) {
	readings := &fakeReadings{}
	ing := newTestIngestor(readings, &fakeDevices{}, nil)

	err := ing.Handle(context.Background(), models.Message{Topic: "room/sensor/12/data", Payload: []byte(" 12.5, 400,1013.25,22.5,40 ")})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(readings.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(readings.inserted))
	}
	got := readings.inserted[0]
	want := models.Reading{
		DeviceID:    12,
		RecordedAt:  time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC),
		PM25:        12.5,
		CO2:         400,
		Pressure:    1013.25,
		Temperature: 22.5,
		Humidity:    40,
	}
	if got != want {
		t.Fatalf("unexpected reading %+v, want %+v", got, want)
	}
}

func TestIngestorRejectsMalformedSensorPayloads(t *testing.T) {
	payloads := []string{
		"12.5,400,1013,22.5",
		"12.5,400,1013,22.5,40,1",
		"12.5,abc,1013,22.5,40",
		"12.5,,1013,22.5,40",
		"NaN,400,1013,22.5,40",
		"",
	}
	for _, payload := range payloads {
		readings := &fakeReadings{}
		ing := newTestIngestor(readings, &fakeDevices{}, nil)

		err := ing.Handle(context.Background(), models.Message{Topic: "room/sensor/3/data", Payload: []byte(payload)})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("payload %q: expected validation error, got %v", payload, err)
		}
		if readings.insertedCount() != 0 {
			t.Fatalf("payload %q: expected no insert", payload)
		}
	}
}

func TestIngestorSkipsInsertWhenStorageDisabled(t *testing.T) {
	readings := &fakeReadings{}
	ing := NewIngestor(readings, &fakeDevices{}, nil, false, zap.NewNop())

	if err := ing.Handle(context.Background(), models.Message{Topic: "room/sensor/3/data", Payload: []byte("1,2,3,4,5")}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if readings.insertedCount() != 0 {
		t.Fatalf("expected no insert when readings are not stored")
	}
}

func TestIngestorUpsertsTrimmedStatus(t *testing.T) {
	devices := &fakeDevices{}
	cache := &fakeCache{}
	ing := newTestIngestor(&fakeReadings{}, devices, cache)

	if err := ing.Handle(context.Background(), models.Message{Topic: "room/device/5/status", Payload: []byte("  on\n")}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(devices.updates) != 1 || devices.updates[0] != (statusUpdate{deviceID: 5, status: "on"}) {
		t.Fatalf("unexpected updates %+v", devices.updates)
	}
	if len(cache.saved) != 1 || cache.saved[0].DeviceID != 5 || cache.saved[0].Status != "on" {
		t.Fatalf("unexpected cache writes %+v", cache.saved)
	}
}

func TestIngestorStatusErrors(t *testing.T) {
	t.Run("storage failure", func(t *testing.T) {
		devices := &fakeDevices{err: errors.New("db down")}
		cache := &fakeCache{}
		ing := newTestIngestor(&fakeReadings{}, devices, cache)

		err := ing.Handle(context.Background(), models.Message{Topic: "room/device/5/status", Payload: []byte("off")})
		if !errors.Is(err, ErrStorage) {
			t.Fatalf("expected storage error, got %v", err)
		}
		if len(cache.saved) != 0 {
			t.Fatalf("cache must not be written when the upsert fails")
		}
	})

	t.Run("cache failure is not fatal", func(t *testing.T) {
		devices := &fakeDevices{}
		ing := newTestIngestor(&fakeReadings{}, devices, &fakeCache{err: errors.New("redis down")})

		if err := ing.Handle(context.Background(), models.Message{Topic: "room/device/5/status", Payload: []byte("off")}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(devices.updates) != 1 {
			t.Fatalf("expected status upsert")
		}
	})

	t.Run("bad id", func(t *testing.T) {
		devices := &fakeDevices{}
		ing := newTestIngestor(&fakeReadings{}, devices, nil)

		err := ing.Handle(context.Background(), models.Message{Topic: "room/device/abc/status", Payload: []byte("on")})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("empty status", func(t *testing.T) {
		devices := &fakeDevices{}
		ing := newTestIngestor(&fakeReadings{}, devices, nil)

		err := ing.Handle(context.Background(), models.Message{Topic: "room/device/5/status", Payload: []byte("  ")})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(devices.updates) != 0 {
			t.Fatalf("expected no upsert")
		}
	})
}

func TestIngestorIgnoresOtherTopics(t *testing.T) {
	readings := &fakeReadings{}
	devices := &fakeDevices{}
	ing := newTestIngestor(readings, devices, nil)

	for _, topic := range []string{"room/device/5/battery", "room/sensor/5/status", "room/other/5/data", "room/device/5", "lobby/device/5/status"} {
		if err := ing.Handle(context.Background(), models.Message{Topic: topic, Payload: []byte("on")}); err != nil {
			t.Fatalf("topic %q: expected silent ignore, got %v", topic, err)
		}
	}
	if len(devices.updates) != 0 || readings.insertedCount() != 0 {
		t.Fatalf("expected no writes")
	}
}

func TestIngestorRunKeepsGoingAfterErrors(t *testing.T) {
	readings := &fakeReadings{}
	ing := newTestIngestor(readings, &fakeDevices{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan models.Message, 3)
	messages <- models.Message{Topic: "room/sensor/1/data", Payload: []byte("12.5,400,1013,22.5")}
	messages <- models.Message{Topic: "room/sensor/1/data", Payload: []byte("12.5,400,1013,22.5,40")}

	done := make(chan struct{})
	go func() {
		ing.Run(ctx, messages)
		close(done)
	}()

	waitFor(t, time.Second, func() bool { return readings.insertedCount() == 1 })

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ingestor did not stop after cancel")
	}
}
