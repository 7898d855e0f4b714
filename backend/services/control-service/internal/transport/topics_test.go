package transport

import (
	"testing"

	"go.uber.org/zap"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		ok     bool
		status bool
		data   bool
		id     string
	}{
		{name: "device status", raw: "room/device/5/status", ok: true, status: true, id: "5"},
		{name: "sensor data", raw: "room/sensor/12/data", ok: true, data: true, id: "12"},
		{name: "other kind", raw: "room/device/5/battery", ok: true, id: "5"},
		{name: "wrong root", raw: "house/device/5/status"},
		{name: "too short", raw: "room/device/5"},
		{name: "too long", raw: "room/device/5/status/extra"},
		{name: "empty id", raw: "room/device//status"},
		{name: "leading slash", raw: "/room/device/5/status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, ok := ParseTopic(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseTopic(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if !ok {
				return
			}
			if topic.IsDeviceStatus() != tt.status {
				t.Fatalf("IsDeviceStatus = %v, want %v", topic.IsDeviceStatus(), tt.status)
			}
			if topic.IsSensorData() != tt.data {
				t.Fatalf("IsSensorData = %v, want %v", topic.IsSensorData(), tt.data)
			}
			if topic.ID != tt.id {
				t.Fatalf("ID = %q, want %q", topic.ID, tt.id)
			}
		})
	}
}

func TestDeviceStatusTopic(t *testing.T) {
	if got := DeviceStatusTopic(5); got != "room/device/5/status" {
		t.Fatalf("unexpected topic %q", got)
	}
}

func TestSourceEnqueueCopiesPayloadAndDropsWhenFull(t *testing.T) {
	src := NewSource("", 0, 1, zap.NewNop())

	payload := []byte("on")
	if !src.Enqueue("room/device/1/status", payload) {
		t.Fatalf("first enqueue should succeed")
	}
	payload[0] = 'x'

	if src.Enqueue("room/device/2/status", []byte("off")) {
		t.Fatalf("second enqueue should be dropped on a full queue")
	}

	msg := <-src.Messages()
	if string(msg.Payload) != "on" {
		t.Fatalf("payload was not copied, got %q", msg.Payload)
	}
	if msg.Topic != "room/device/1/status" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}
	if msg.ReceivedAt.IsZero() {
		t.Fatalf("expected receive timestamp")
	}
}
