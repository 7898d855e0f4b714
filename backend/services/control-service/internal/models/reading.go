package models

import "time"

// Reading is one sensor sample. Rows are immutable; newer samples supersede older ones.
type Reading struct {
	ID          int64     `db:"id" json:"id"`
	DeviceID    int64     `db:"device_id" json:"device_id"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
	PM25        float64   `db:"pm25" json:"pm25"`
	CO2         float64   `db:"co2" json:"co2"`
	Pressure    float64   `db:"pressure" json:"pressure"`
	Temperature float64   `db:"temperature" json:"temperature"`
	Humidity    float64   `db:"humidity" json:"humidity"`
}

// SensorReading is a Reading joined with the placement of the device that produced it.
type SensorReading struct {
	Reading
	IsOutside  bool   `db:"is_outside" json:"is_outside"`
	RoomID     int64  `db:"device_in_room" json:"room_id"`
	DeviceType string `db:"device_type" json:"device_type"`
}
