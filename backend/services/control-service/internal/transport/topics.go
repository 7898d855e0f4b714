package transport

import (
	"fmt"
	"strings"
)

// Topic grammar: room/<category>/<id>/<kind>.
const (
	Root              = "room"
	SubscribeAll      = "room/+/+/+"
	CategoryDevice    = "device"
	CategorySensor    = "sensor"
	KindStatus        = "status"
	KindData          = "data"
	topicSegmentCount = 4
)

// Topic is a parsed room/<category>/<id>/<kind> address.
type Topic struct {
	Category string
	ID       string
	Kind     string
}

// IsDeviceStatus reports room/device/<id>/status.
func (t Topic) IsDeviceStatus() bool {
	return t.Category == CategoryDevice && t.Kind == KindStatus
}

// IsSensorData reports room/sensor/<id>/data.
func (t Topic) IsSensorData() bool {
	return t.Category == CategorySensor && t.Kind == KindData
}

// ParseTopic splits a topic into its parts. ok is false for anything outside the
// four-level room namespace or with empty segments.
func ParseTopic(raw string) (Topic, bool) {
	parts := strings.Split(raw, "/")
	if len(parts) != topicSegmentCount || parts[0] != Root {
		return Topic{}, false
	}
	for _, p := range parts[1:] {
		if p == "" {
			return Topic{}, false
		}
	}
	return Topic{Category: parts[1], ID: parts[2], Kind: parts[3]}, true
}

// DeviceStatusTopic is where commands for a device are published.
func DeviceStatusTopic(deviceID int64) string {
	return fmt.Sprintf("%s/%s/%d/%s", Root, CategoryDevice, deviceID, KindStatus)
}
