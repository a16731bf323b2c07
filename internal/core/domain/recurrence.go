package domain

import (
	"time"

	"github.com/google/uuid"
)

type SlotType string

const (
	SlotDaily  SlotType = "daily"
	SlotHourly SlotType = "hourly"
)

func (t SlotType) Valid() bool {
	return t == SlotDaily || t == SlotHourly
}

// Other returns the slot type that may not be enabled alongside t on the same day.
func (t SlotType) Other() SlotType {
	if t == SlotDaily {
		return SlotHourly
	}
	return SlotDaily
}

// RecurrenceRule is a weekly availability definition for one asset, keyed by
// (AssetID, DayOfWeek, SlotType).
type RecurrenceRule struct {
	ID           uuid.UUID    `json:"id"`
	AssetID      uuid.UUID    `json:"asset_id"`
	DayOfWeek    time.Weekday `json:"day_of_week"`
	SlotType     SlotType     `json:"slot_type"`
	SlotDuration int          `json:"slot_duration"`
	StartTime    TimeOfDay    `json:"start_time"`
	EndTime      TimeOfDay    `json:"end_time"`
	Enabled      bool         `json:"is_enabled"`
	CreatedBy    uuid.UUID    `json:"created_by"`
	UpdatedBy    uuid.UUID    `json:"updated_by"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (r *RecurrenceRule) SlotLength() time.Duration {
	return time.Duration(r.SlotDuration) * time.Hour
}

// Candidates expands the rule into slot intervals on date d. Daily rules yield
// one interval; hourly rules yield back-to-back slices and drop any remainder
// shorter than SlotDuration. Hourly slices are stepped in elapsed time from
// the window start, so every slice lasts exactly SlotDuration even when a
// DST shift falls inside the window.
func (r *RecurrenceRule) Candidates(d Date, loc *time.Location) []Interval {
	switch r.SlotType {
	case SlotDaily:
		return []Interval{{Start: r.StartTime.On(d, loc), End: r.EndTime.On(d, loc)}}
	case SlotHourly:
		step := r.SlotLength()
		if step <= 0 {
			return nil
		}
		end := r.EndTime.On(d, loc)
		var out []Interval
		for from := r.StartTime.On(d, loc); !from.Add(step).After(end); from = from.Add(step) {
			out = append(out, Interval{Start: from, End: from.Add(step)})
		}
		return out
	default:
		return nil
	}
}

// UnavailabilityException blocks an asset for a whole calendar date.
type UnavailabilityException struct {
	ID          uuid.UUID `json:"id"`
	AssetID     uuid.UUID `json:"asset_id"`
	Date        Date      `json:"date"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `json:"created_by"`
	UpdatedBy   uuid.UUID `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
