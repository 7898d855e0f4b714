package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"roomcontrol/backend/services/control-service/internal/models"
	redisstore "roomcontrol/backend/services/control-service/internal/redis"
)

// StatusReader reads cached device status.
type StatusReader interface {
	Get(ctx context.Context, deviceID int64) (*models.DeviceStatus, error)
}

// NewDeviceStatusHandler returns GET /devices/{id}/status handler.
func NewDeviceStatusHandler(store StatusReader, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid device id")
			return
		}

		status, err := store.Get(r.Context(), deviceID)
		if errors.Is(err, redisstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "device status not found")
			return
		}
		if err != nil {
			logger.Error("failed to read device status", zap.Int64("device_id", deviceID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read device status")
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
