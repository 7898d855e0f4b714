package service

import "roomcontrol/backend/services/control-service/internal/models"

// Event types sent to live subscribers.
const (
	EventCommand   = "command"
	EventExcursion = "excursion"
	EventCycle     = "cycle"
)

// CommandEvent is emitted for every dispatched command.
type CommandEvent struct {
	Type    string `json:"type"`
	CycleID string `json:"cycle_id"`
	models.Command
}

// ExcursionEvent is emitted for every out-of-band monitored quantity.
type ExcursionEvent struct {
	Type    string `json:"type"`
	CycleID string `json:"cycle_id"`
	models.Excursion
}

// CycleEvent is emitted once a cycle finishes.
type CycleEvent struct {
	Type string `json:"type"`
	models.CycleReport
}
