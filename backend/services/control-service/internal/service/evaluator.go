package service

import (
	"context"
	"fmt"

	"roomcontrol/backend/services/control-service/internal/models"
)

// Excursion directions.
const (
	DirectionAbove = "above"
	DirectionBelow = "below"
)

// Decision is what the evaluator concluded for one cycle.
type Decision struct {
	Rooms        []models.AggregatedRoom
	Instructions []models.Instruction
	Excursions   []models.Excursion
}

// Evaluator applies room settings to aggregated readings.
type Evaluator struct {
	settings SettingSource
}

// NewEvaluator returns an evaluator backed by settings.
func NewEvaluator(settings SettingSource) *Evaluator {
	return &Evaluator{settings: settings}
}

// Evaluate merges enabled settings into rooms and decides actuation for each of them.
func (e *Evaluator) Evaluate(ctx context.Context, rooms []models.AggregatedRoom) (Decision, error) {
	settings, err := e.settings.ListEnabled(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: room settings: %v", ErrStorage, err)
	}

	merged := MergeSettings(rooms, settings)
	decision := Decision{Rooms: merged}
	for _, room := range merged {
		instructions, excursions := Decide(room)
		decision.Instructions = append(decision.Instructions, instructions...)
		decision.Excursions = append(decision.Excursions, excursions...)
	}
	return decision, nil
}

// MergeSettings attaches the setting of each room and drops rooms that have no enabled setting.
func MergeSettings(rooms []models.AggregatedRoom, settings []models.RoomSetting) []models.AggregatedRoom {
	byRoom := make(map[int64]models.RoomSetting, len(settings))
	for _, s := range settings {
		if s.AutoControlEnabled {
			byRoom[s.RoomID] = s
		}
	}

	merged := make([]models.AggregatedRoom, 0, len(rooms))
	for _, room := range rooms {
		setting, ok := byRoom[room.RoomID]
		if !ok {
			continue
		}
		room.Setting = setting
		merged = append(merged, room)
	}
	return merged
}

// Decide evaluates the actuation rules of one room:
//
//	pm25 >  high  -> Air Purifier on
//	pm25 <= low   -> Air Purifier off
//	co2  >= high  -> Exhaust fan on
//	co2  <= low   -> Exhaust fan off
//
// A nil bound skips its rule. Differential pressure, temperature and humidity only
// produce excursions.
func Decide(room models.AggregatedRoom) ([]models.Instruction, []models.Excursion) {
	var out []models.Instruction
	indoor := room.Indoor
	s := room.Setting

	if s.PM25.High != nil && indoor.PM25 > *s.PM25.High {
		out = append(out, instruction(room.RoomID, models.DeviceTypeAirPurifier, models.DeviceOn, models.QuantityPM25, indoor.PM25, *s.PM25.High))
	}
	if s.PM25.Low != nil && indoor.PM25 <= *s.PM25.Low {
		out = append(out, instruction(room.RoomID, models.DeviceTypeAirPurifier, models.DeviceOff, models.QuantityPM25, indoor.PM25, *s.PM25.Low))
	}
	if s.CO2.High != nil && indoor.CO2 >= *s.CO2.High {
		out = append(out, instruction(room.RoomID, models.DeviceTypeExhaustFan, models.DeviceOn, models.QuantityCO2, indoor.CO2, *s.CO2.High))
	}
	if s.CO2.Low != nil && indoor.CO2 <= *s.CO2.Low {
		out = append(out, instruction(room.RoomID, models.DeviceTypeExhaustFan, models.DeviceOff, models.QuantityCO2, indoor.CO2, *s.CO2.Low))
	}

	var excursions []models.Excursion
	if room.DiffPressure != nil {
		excursions = appendExcursion(excursions, room.RoomID, models.QuantityDiffPressure, *room.DiffPressure, s.DiffPressure)
	}
	excursions = appendExcursion(excursions, room.RoomID, models.QuantityTemperature, indoor.Temperature, s.Temperature)
	excursions = appendExcursion(excursions, room.RoomID, models.QuantityHumidity, indoor.Humidity, s.Humidity)

	return out, excursions
}

func instruction(roomID int64, deviceType string, state models.DeviceState, quantity string, value, bound float64) models.Instruction {
	return models.Instruction{
		RoomID:     roomID,
		DeviceType: deviceType,
		State:      state,
		Quantity:   quantity,
		Value:      value,
		Bound:      bound,
	}
}

func appendExcursion(dst []models.Excursion, roomID int64, quantity string, value float64, band models.Band) []models.Excursion {
	if band.High != nil && value > *band.High {
		return append(dst, models.Excursion{RoomID: roomID, Quantity: quantity, Value: value, Bound: *band.High, Direction: DirectionAbove})
	}
	if band.Low != nil && value < *band.Low {
		return append(dst, models.Excursion{RoomID: roomID, Quantity: quantity, Value: value, Bound: *band.Low, Direction: DirectionBelow})
	}
	return dst
}
