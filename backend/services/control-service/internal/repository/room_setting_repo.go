package repository

import (
	"context"
	"database/sql"

	"roomcontrol/backend/services/control-service/internal/models"
)

// RoomSettingRepository reads per-room thresholds.
type RoomSettingRepository struct {
	db *sql.DB
}

// NewRoomSettingRepository returns repository.
func NewRoomSettingRepository(db *sql.DB) *RoomSettingRepository {
	return &RoomSettingRepository{db: db}
}

// ListEnabled returns settings of rooms with automatic control switched on.
func (r *RoomSettingRepository) ListEnabled(ctx context.Context) ([]models.RoomSetting, error) {
	const query = `
		SELECT room_id,
		       diff_pressure_threshold_high, diff_pressure_threshold_low,
		       temperature_threshold_high, temperature_threshold_low,
		       humidity_threshold_high, humidity_threshold_low,
		       pm25_threshold_high, pm25_threshold_low,
		       co2_threshold_high, co2_threshold_low,
		       auto_control_enabled
		FROM rooms_setting
		WHERE auto_control_enabled = TRUE
		ORDER BY room_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.RoomSetting
	for rows.Next() {
		var (
			s                 models.RoomSetting
			dpHigh, dpLow     sql.NullFloat64
			tempHigh, tempLow sql.NullFloat64
			humHigh, humLow   sql.NullFloat64
			pm25High, pm25Low sql.NullFloat64
			co2High, co2Low   sql.NullFloat64
		)
		if err := rows.Scan(
			&s.RoomID,
			&dpHigh, &dpLow,
			&tempHigh, &tempLow,
			&humHigh, &humLow,
			&pm25High, &pm25Low,
			&co2High, &co2Low,
			&s.AutoControlEnabled,
		); err != nil {
			return nil, err
		}
		s.DiffPressure = band(dpHigh, dpLow)
		s.Temperature = band(tempHigh, tempLow)
		s.Humidity = band(humHigh, humLow)
		s.PM25 = band(pm25High, pm25Low)
		s.CO2 = band(co2High, co2Low)
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settings, nil
}

func band(high, low sql.NullFloat64) models.Band {
	return models.Band{High: nullable(high), Low: nullable(low)}
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
