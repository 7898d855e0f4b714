package models

import "time"

// DeviceState is the on/off token exchanged with actuators.
type DeviceState string

const (
	DeviceOn  DeviceState = "on"
	DeviceOff DeviceState = "off"
)

// Capability labels stored in device.device_type.
const (
	DeviceTypeAirPurifier = "Air Purifier"
	DeviceTypeExhaustFan  = "Exhaust fan"
)

// Device is an installed sensor or actuator. Type and room are static configuration;
// Status is whatever the device last reported.
type Device struct {
	ID       int64  `db:"device_id" json:"device_id"`
	Type     string `db:"device_type" json:"device_type"`
	RoomID   int64  `db:"device_in_room" json:"room_id"`
	IsSensor bool   `db:"is_sensor_device" json:"is_sensor_device"`
	Status   string `db:"device_status" json:"device_status"`
}

// DeviceStatus is the cached view of the last status message of a device.
type DeviceStatus struct {
	DeviceID  int64     `json:"device_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
