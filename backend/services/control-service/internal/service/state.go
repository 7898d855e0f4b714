package service

import (
	"sync"

	"roomcontrol/backend/services/control-service/internal/models"
)

// ControlState is a snapshot of scheduler activity.
type ControlState struct {
	Running      bool                `json:"running"`
	CyclesRun    int64               `json:"cycles_run"`
	CyclesFailed int64               `json:"cycles_failed"`
	TicksSkipped int64               `json:"ticks_skipped"`
	LastCycle    *models.CycleReport `json:"last_cycle,omitempty"`
}

// StateTracker keeps the latest cycle outcome for the HTTP surface.
type StateTracker struct {
	mu    sync.RWMutex
	state ControlState
}

// NewStateTracker creates an empty tracker.
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

func (t *StateTracker) started() {
	t.mu.Lock()
	t.state.Running = true
	t.mu.Unlock()
}

func (t *StateTracker) finished(report models.CycleReport, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Running = false
	t.state.CyclesRun++
	if err != nil {
		t.state.CyclesFailed++
	}
	t.state.LastCycle = &report
}

func (t *StateTracker) skipped() {
	t.mu.Lock()
	t.state.TicksSkipped++
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (t *StateTracker) Snapshot() ControlState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state := t.state
	if state.LastCycle != nil {
		last := *state.LastCycle
		state.LastCycle = &last
	}
	return state
}
