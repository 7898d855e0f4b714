package models

import "time"

// Quantities evaluated against room settings.
const (
	QuantityPM25         = "pm25"
	QuantityCO2          = "co2"
	QuantityDiffPressure = "diff_pressure"
	QuantityTemperature  = "temperature"
	QuantityHumidity     = "humidity"
)

// Instruction asks every device of DeviceType in RoomID to switch to State.
type Instruction struct {
	RoomID     int64       `json:"room_id"`
	DeviceType string      `json:"device_type"`
	State      DeviceState `json:"state"`
	Quantity   string      `json:"quantity"`
	Value      float64     `json:"value"`
	Bound      float64     `json:"bound"`
}

// Excursion reports a monitored quantity outside its band. Excursions never actuate.
type Excursion struct {
	RoomID    int64   `json:"room_id"`
	Quantity  string  `json:"quantity"`
	Value     float64 `json:"value"`
	Bound     float64 `json:"bound"`
	Direction string  `json:"direction"`
}

// Command is one publish to one actuator.
type Command struct {
	DeviceID   int64       `json:"device_id"`
	RoomID     int64       `json:"room_id"`
	DeviceType string      `json:"device_type"`
	State      DeviceState `json:"state"`
	Topic      string      `json:"topic"`
	Err        string      `json:"error,omitempty"`
}

// CycleReport summarises one control cycle.
type CycleReport struct {
	ID             string    `json:"cycle_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	RoomsEvaluated int       `json:"rooms_evaluated"`
	Instructions   int       `json:"instructions"`
	CommandsSent   int       `json:"commands_sent"`
	CommandsFailed int       `json:"commands_failed"`
	Excursions     int       `json:"excursions"`
	Skipped        string    `json:"skipped,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Message is one inbound pub/sub delivery.
type Message struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}
