package repository

import (
	"context"
	"database/sql"
	"time"

	"roomcontrol/backend/services/control-service/internal/models"
)

// ReadingRepository persists and queries air quality samples.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Insert stores a new sample and fills its ID.
func (r *ReadingRepository) Insert(ctx context.Context, reading *models.Reading) error {
	const query = `
		INSERT INTO air_quality (device_id, recorded_at, pm25, co2, pressure, temperature, humidity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		reading.DeviceID,
		reading.RecordedAt,
		reading.PM25,
		reading.CO2,
		reading.Pressure,
		reading.Temperature,
		reading.Humidity,
	).Scan(&reading.ID)
}

// LatestWithin returns, per sensor device, the newest sample recorded in [from, to].
// Devices without a room are left out.
func (r *ReadingRepository) LatestWithin(ctx context.Context, from, to time.Time) ([]models.SensorReading, error) {
	const query = `
		SELECT DISTINCT ON (aq.device_id)
			aq.id, aq.device_id, aq.recorded_at,
			aq.pm25, aq.co2, aq.pressure, aq.temperature, aq.humidity,
			d.is_outside, d.device_in_room, COALESCE(d.device_type, '')
		FROM air_quality aq
		JOIN device d ON d.device_id = aq.device_id
		WHERE d.is_sensor_device = TRUE
		  AND d.device_in_room IS NOT NULL
		  AND aq.recorded_at >= $1
		  AND aq.recorded_at <= $2
		ORDER BY aq.device_id, aq.recorded_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.SensorReading
	for rows.Next() {
		var sr models.SensorReading
		if err := rows.Scan(
			&sr.ID,
			&sr.DeviceID,
			&sr.RecordedAt,
			&sr.PM25,
			&sr.CO2,
			&sr.Pressure,
			&sr.Temperature,
			&sr.Humidity,
			&sr.IsOutside,
			&sr.RoomID,
			&sr.DeviceType,
		); err != nil {
			return nil, err
		}
		readings = append(readings, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}
