package models

// Band is a high/low threshold pair. A nil bound disables the rule that uses it.
type Band struct {
	High *float64 `json:"high,omitempty"`
	Low  *float64 `json:"low,omitempty"`
}

// RoomSetting holds per-room control thresholds. Edited outside this service.
type RoomSetting struct {
	RoomID             int64 `db:"room_id" json:"room_id"`
	DiffPressure       Band  `json:"diff_pressure"`
	Temperature        Band  `json:"temperature"`
	Humidity           Band  `json:"humidity"`
	PM25               Band  `json:"pm25"`
	CO2                Band  `json:"co2"`
	AutoControlEnabled bool  `db:"auto_control_enabled" json:"auto_control_enabled"`
}

// Float returns a pointer to v, handy for building bands.
func Float(v float64) *float64 {
	return &v
}
