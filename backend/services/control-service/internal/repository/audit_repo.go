package repository

import (
	"context"
	"database/sql"
	"fmt"

	"roomcontrol/backend/services/control-service/internal/models"
)

// AuditRepository stores per-cycle snapshots of evaluated rooms.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository returns repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// InsertBatch writes one row per room in a single transaction.
func (r *AuditRepository) InsertBatch(ctx context.Context, cycleID string, rooms []models.AggregatedRoom) error {
	if len(rooms) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO air_quality_diff (cycle_id, recorded_at, pm25, co2, diff_pressure, temperature, humidity, device_id, room_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, room := range rooms {
		var diff sql.NullFloat64
		if room.DiffPressure != nil {
			diff = sql.NullFloat64{Float64: *room.DiffPressure, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			cycleID,
			room.Indoor.RecordedAt,
			room.Indoor.PM25,
			room.Indoor.CO2,
			diff,
			room.Indoor.Temperature,
			room.Indoor.Humidity,
			room.Indoor.DeviceID,
			room.RoomID,
		); err != nil {
			return fmt.Errorf("audit room %d: %w", room.RoomID, err)
		}
	}
	return tx.Commit()
}
