package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roomcontrol/backend/services/control-service/internal/models"
)

// Reasons a cycle ended without dispatching.
const (
	SkipNoReadings    = "no fresh readings"
	SkipNoEnabledRoom = "no enabled rooms"
	SkipLocked        = "locked by another instance"
)

const lockReleaseTimeout = 2 * time.Second

// CycleOptions carries the optional collaborators of a cycle. Nil fields are disabled.
type CycleOptions struct {
	Audit  AuditWriter
	Lock   CycleLock
	Events EventSink
}

// Cycle runs one aggregate, evaluate and dispatch pass.
type Cycle struct {
	aggregator *Aggregator
	evaluator  *Evaluator
	dispatcher *Dispatcher
	audit      AuditWriter
	lock       CycleLock
	events     EventSink
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewCycle wires a cycle.
func NewCycle(aggregator *Aggregator, evaluator *Evaluator, dispatcher *Dispatcher, opts CycleOptions, logger *zap.Logger) *Cycle {
	return &Cycle{
		aggregator: aggregator,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		audit:      opts.Audit,
		lock:       opts.Lock,
		events:     opts.Events,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// RunOnce executes one cycle. The returned report is always filled in, even on error.
func (c *Cycle) RunOnce(ctx context.Context) (report models.CycleReport, err error) {
	report = models.CycleReport{ID: c.newID(), StartedAt: c.now().UTC()}
	logger := c.logger.With(zap.String("cycle_id", report.ID))

	defer func() {
		report.FinishedAt = c.now().UTC()
		if err != nil {
			report.Error = err.Error()
		}
		c.emit(CycleEvent{Type: EventCycle, CycleReport: report})
	}()

	if c.lock != nil {
		release, ok, lockErr := c.lock.Acquire(ctx)
		if lockErr != nil {
			return report, wrapStorage("acquire cycle lock", lockErr)
		}
		if !ok {
			report.Skipped = SkipLocked
			logger.Debug("cycle skipped", zap.String("reason", report.Skipped))
			return report, nil
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
			defer cancel()
			if err := release(releaseCtx); err != nil {
				logger.Warn("failed to release cycle lock", zap.Error(err))
			}
		}()
	}

	rooms, err := c.aggregator.Aggregate(ctx, report.StartedAt)
	if err != nil {
		return report, err
	}
	if len(rooms) == 0 {
		report.Skipped = SkipNoReadings
		logger.Debug("cycle skipped", zap.String("reason", report.Skipped))
		return report, nil
	}

	decision, err := c.evaluator.Evaluate(ctx, rooms)
	if err != nil {
		return report, err
	}
	report.RoomsEvaluated = len(decision.Rooms)
	report.Instructions = len(decision.Instructions)
	report.Excursions = len(decision.Excursions)
	if len(decision.Rooms) == 0 {
		report.Skipped = SkipNoEnabledRoom
		logger.Debug("cycle skipped", zap.String("reason", report.Skipped))
		return report, nil
	}

	if c.audit != nil {
		if auditErr := c.audit.InsertBatch(ctx, report.ID, decision.Rooms); auditErr != nil {
			logger.Warn("failed to write audit rows", zap.Error(auditErr))
		}
	}

	for _, ex := range decision.Excursions {
		logger.Warn("threshold excursion",
			zap.Int64("room_id", ex.RoomID),
			zap.String("quantity", ex.Quantity),
			zap.Float64("value", ex.Value),
			zap.Float64("bound", ex.Bound),
			zap.String("direction", ex.Direction))
		c.emit(ExcursionEvent{Type: EventExcursion, CycleID: report.ID, Excursion: ex})
	}

	commands, err := c.dispatcher.Dispatch(ctx, decision.Instructions)
	for _, cmd := range commands {
		if cmd.Err == "" {
			report.CommandsSent++
		} else {
			report.CommandsFailed++
		}
		c.emit(CommandEvent{Type: EventCommand, CycleID: report.ID, Command: cmd})
	}
	if err != nil {
		return report, err
	}

	logger.Info("cycle finished",
		zap.Int("rooms", report.RoomsEvaluated),
		zap.Int("instructions", report.Instructions),
		zap.Int("commands_sent", report.CommandsSent),
		zap.Int("commands_failed", report.CommandsFailed))
	return report, nil
}

func (c *Cycle) emit(event any) {
	if c.events != nil {
		c.events.Broadcast(event)
	}
}
