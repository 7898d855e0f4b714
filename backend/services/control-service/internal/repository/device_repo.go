package repository

import (
	"context"
	"database/sql"

	"roomcontrol/backend/services/control-service/internal/models"
)

// DeviceRepository manages device rows.
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository returns repository.
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// UpsertStatus records the last reported status of a device, creating a bare row for
// devices that are not configured yet.
func (r *DeviceRepository) UpsertStatus(ctx context.Context, deviceID int64, status string) error {
	const query = `
		INSERT INTO device (device_id, device_status, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (device_id) DO UPDATE SET
			device_status = EXCLUDED.device_status,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, deviceID, status)
	return err
}

// ListByRooms returns every device installed in one of the given rooms.
func (r *DeviceRepository) ListByRooms(ctx context.Context, roomIDs []int64) ([]models.Device, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	const query = `
		SELECT device_id, COALESCE(device_type, ''), device_in_room, is_sensor_device, COALESCE(device_status, '')
		FROM device
		WHERE device_in_room = ANY($1)
		ORDER BY device_in_room, device_id
	`
	rows, err := r.db.QueryContext(ctx, query, roomIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.Type, &d.RoomID, &d.IsSensor, &d.Status); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}
