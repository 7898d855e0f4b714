package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"roomcontrol/backend/services/control-service/internal/models"
	"roomcontrol/backend/services/control-service/internal/transport"
)

// Number of comma-separated fields in a sensor payload: pm25,co2,pressure,temperature,humidity.
const sensorFieldCount = 5

// Ingestor turns inbound messages into device status updates and sensor readings.
type Ingestor struct {
	readings      ReadingWriter
	devices       DeviceStatusWriter
	cache         StatusCache
	storeReadings bool
	logger        *zap.Logger
	now           func() time.Time
}

// NewIngestor builds the ingestor. cache may be nil. When storeReadings is false sensor
// payloads are validated and then discarded.
func NewIngestor(readings ReadingWriter, devices DeviceStatusWriter, cache StatusCache, storeReadings bool, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		readings:      readings,
		devices:       devices,
		cache:         cache,
		storeReadings: storeReadings,
		logger:        logger,
		now:           time.Now,
	}
}

// Run drains messages until ctx is cancelled or the channel is closed. Errors are logged
// per message and never stop the loop.
func (i *Ingestor) Run(ctx context.Context, messages <-chan models.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := i.Handle(ctx, msg); err != nil {
				level := zap.ErrorLevel
				if errors.Is(err, ErrValidation) {
					level = zap.WarnLevel
				}
				i.logger.Log(level, "message dropped", zap.String("topic", msg.Topic), zap.Error(err))
			}
		}
	}
}

// Handle processes one message. Topics outside the two recognised shapes are ignored.
func (i *Ingestor) Handle(ctx context.Context, msg models.Message) error {
	topic, ok := transport.ParseTopic(msg.Topic)
	if !ok {
		return nil
	}
	switch {
	case topic.IsDeviceStatus():
		return i.handleStatus(ctx, topic.ID, msg.Payload)
	case topic.IsSensorData():
		return i.handleSensor(ctx, topic.ID, msg.Payload)
	default:
		return nil
	}
}

func (i *Ingestor) handleStatus(ctx context.Context, rawID string, payload []byte) error {
	deviceID, err := parseDeviceID(rawID)
	if err != nil {
		return err
	}
	status := strings.TrimSpace(string(payload))
	if status == "" {
		return fmt.Errorf("%w: empty status for device %d", ErrValidation, deviceID)
	}

	if err := i.devices.UpsertStatus(ctx, deviceID, status); err != nil {
		return fmt.Errorf("%w: upsert status of device %d: %v", ErrStorage, deviceID, err)
	}

	if i.cache != nil {
		cached := models.DeviceStatus{DeviceID: deviceID, Status: status, UpdatedAt: i.now().UTC()}
		if err := i.cache.Save(ctx, cached); err != nil {
			i.logger.Warn("failed to cache device status", zap.Int64("device_id", deviceID), zap.Error(err))
		}
	}
	i.logger.Debug("device status updated", zap.Int64("device_id", deviceID), zap.String("status", status))
	return nil
}

func (i *Ingestor) handleSensor(ctx context.Context, rawID string, payload []byte) error {
	deviceID, err := parseDeviceID(rawID)
	if err != nil {
		return err
	}
	reading, err := ParseSensorPayload(string(payload))
	if err != nil {
		return fmt.Errorf("device %d: %w", deviceID, err)
	}
	if !i.storeReadings {
		return nil
	}

	reading.DeviceID = deviceID
	reading.RecordedAt = i.now().UTC().Truncate(time.Second)
	if err := i.readings.Insert(ctx, &reading); err != nil {
		return fmt.Errorf("%w: insert reading of device %d: %v", ErrStorage, deviceID, err)
	}
	return nil
}

// ParseSensorPayload parses "pm25,co2,pressure,temperature,humidity". Every field must be
// a finite decimal; anything else is an ErrValidation.
func ParseSensorPayload(payload string) (models.Reading, error) {
	fields := strings.Split(strings.TrimSpace(payload), ",")
	if len(fields) != sensorFieldCount {
		return models.Reading{}, fmt.Errorf("%w: expected %d fields, got %d", ErrValidation, sensorFieldCount, len(fields))
	}

	values := make([]float64, sensorFieldCount)
	for idx, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Reading{}, fmt.Errorf("%w: field %d is not a number: %q", ErrValidation, idx+1, field)
		}
		values[idx] = v
	}

	return models.Reading{
		PM25:        values[0],
		CO2:         values[1],
		Pressure:    values[2],
		Temperature: values[3],
		Humidity:    values[4],
	}, nil
}

func parseDeviceID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid device id %q", ErrValidation, raw)
	}
	return id, nil
}
