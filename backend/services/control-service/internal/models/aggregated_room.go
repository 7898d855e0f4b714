package models

// AggregatedRoom is recomputed every cycle from the freshest indoor reading of a room,
// the matching outdoor reading (if any) and the room's settings.
type AggregatedRoom struct {
	RoomID  int64          `json:"room_id"`
	Indoor  SensorReading  `json:"indoor"`
	Outdoor *SensorReading `json:"outdoor,omitempty"`
	// DiffPressure is indoor minus outdoor pressure rounded to 2 decimals.
	// Nil when no outdoor reading was fresh.
	DiffPressure *float64    `json:"diff_pressure,omitempty"`
	Setting      RoomSetting `json:"setting"`
}
