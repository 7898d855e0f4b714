package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"roomcontrol/backend/services/control-service/internal/models"
	"roomcontrol/backend/services/control-service/internal/transport"
)

type deviceKey struct {
	roomID     int64
	deviceType string
}

// Dispatcher resolves instructions to devices and publishes one command per device.
type Dispatcher struct {
	devices   DeviceSource
	publisher CommandPublisher
	logger    *zap.Logger
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(devices DeviceSource, publisher CommandPublisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{devices: devices, publisher: publisher, logger: logger}
}

// Dispatch publishes the commands for instructions. Publish failures are recorded on the
// returned command and logged; they are never retried. Only a failed device lookup or a
// cancelled context returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, instructions []models.Instruction) ([]models.Command, error) {
	instructions = uniqueInstructions(instructions)
	if len(instructions) == 0 {
		return nil, nil
	}

	devices, err := d.devices.ListByRooms(ctx, roomIDs(instructions))
	if err != nil {
		return nil, fmt.Errorf("%w: devices by room: %v", ErrStorage, err)
	}
	byKey := make(map[deviceKey][]models.Device)
	for _, dev := range devices {
		key := deviceKey{roomID: dev.RoomID, deviceType: dev.Type}
		byKey[key] = append(byKey[key], dev)
	}

	var commands []models.Command
	for _, in := range instructions {
		targets := byKey[deviceKey{roomID: in.RoomID, deviceType: in.DeviceType}]
		if len(targets) == 0 {
			d.logger.Debug("no devices for instruction",
				zap.Int64("room_id", in.RoomID), zap.String("device_type", in.DeviceType))
			continue
		}
		for _, dev := range targets {
			if err := ctx.Err(); err != nil {
				return commands, err
			}
			cmd := models.Command{
				DeviceID:   dev.ID,
				RoomID:     in.RoomID,
				DeviceType: in.DeviceType,
				State:      in.State,
				Topic:      transport.DeviceStatusTopic(dev.ID),
			}
			if err := d.publisher.Publish(ctx, cmd.Topic, []byte(in.State)); err != nil {
				err = fmt.Errorf("%w: %v", ErrTransport, err)
				cmd.Err = err.Error()
				d.logger.Warn("command publish failed",
					zap.Int64("device_id", dev.ID), zap.String("topic", cmd.Topic), zap.Error(err))
			} else {
				d.logger.Info("command sent",
					zap.Int64("device_id", dev.ID),
					zap.Int64("room_id", in.RoomID),
					zap.String("device_type", in.DeviceType),
					zap.String("state", string(in.State)),
					zap.String("quantity", in.Quantity),
					zap.Float64("value", in.Value),
					zap.Float64("bound", in.Bound))
			}
			commands = append(commands, cmd)
		}
	}
	return commands, nil
}

// Several indoor sensors in one room may ask for the same transition; send it once.
func uniqueInstructions(in []models.Instruction) []models.Instruction {
	type key struct {
		roomID     int64
		deviceType string
		state      models.DeviceState
	}
	seen := make(map[key]struct{}, len(in))
	out := make([]models.Instruction, 0, len(in))
	for _, ins := range in {
		k := key{roomID: ins.RoomID, deviceType: ins.DeviceType, state: ins.State}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ins)
	}
	return out
}

func roomIDs(instructions []models.Instruction) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, in := range instructions {
		if _, ok := seen[in.RoomID]; ok {
			continue
		}
		seen[in.RoomID] = struct{}{}
		ids = append(ids, in.RoomID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
