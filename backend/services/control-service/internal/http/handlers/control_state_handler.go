package handlers

import (
	"net/http"

	"roomcontrol/backend/services/control-service/internal/service"
)

// StateSource exposes the scheduler state.
type StateSource interface {
	Snapshot() service.ControlState
}

// NewControlStateHandler returns GET /control/state handler.
func NewControlStateHandler(state StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, state.Snapshot())
	}
}
