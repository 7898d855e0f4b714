package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"roomcontrol/backend/services/control-service/internal/models"
)

// DefaultFreshness is the trailing window a reading must fall in to be used.
const DefaultFreshness = time.Minute

// Aggregator builds per-room snapshots from the freshest readings.
type Aggregator struct {
	readings  ReadingSource
	freshness time.Duration
}

// NewAggregator returns an aggregator reading within freshness of the cycle time.
func NewAggregator(readings ReadingSource, freshness time.Duration) *Aggregator {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Aggregator{readings: readings, freshness: freshness}
}

// Aggregate returns one AggregatedRoom per fresh indoor reading. An empty result is not an error.
func (a *Aggregator) Aggregate(ctx context.Context, now time.Time) ([]models.AggregatedRoom, error) {
	readings, err := a.readings.LatestWithin(ctx, now.Add(-a.freshness), now)
	if err != nil {
		return nil, fmt.Errorf("%w: latest readings: %v", ErrStorage, err)
	}
	return PairReadings(readings), nil
}

// PairReadings joins every indoor reading with the outdoor reading of the same room.
// When a room has several outdoor sensors the most recent one wins. The result is ordered
// by room and indoor device.
func PairReadings(readings []models.SensorReading) []models.AggregatedRoom {
	outdoor := make(map[int64]models.SensorReading)
	for _, r := range readings {
		if !r.IsOutside {
			continue
		}
		current, ok := outdoor[r.RoomID]
		if !ok || r.RecordedAt.After(current.RecordedAt) ||
			(r.RecordedAt.Equal(current.RecordedAt) && r.DeviceID > current.DeviceID) {
			outdoor[r.RoomID] = r
		}
	}

	rooms := make([]models.AggregatedRoom, 0, len(readings))
	for _, r := range readings {
		if r.IsOutside {
			continue
		}
		room := models.AggregatedRoom{RoomID: r.RoomID, Indoor: r}
		if out, ok := outdoor[r.RoomID]; ok {
			out := out
			diff := roundTo2(r.Pressure - out.Pressure)
			room.Outdoor = &out
			room.DiffPressure = &diff
		}
		rooms = append(rooms, room)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].RoomID != rooms[j].RoomID {
			return rooms[i].RoomID < rooms[j].RoomID
		}
		return rooms[i].Indoor.DeviceID < rooms[j].Indoor.DeviceID
	})
	return rooms
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
