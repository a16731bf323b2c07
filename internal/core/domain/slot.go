package domain

import "time"

type AvailabilityStatus string

const (
	SlotAvailable AvailabilityStatus = "available"
	SlotBooked    AvailabilityStatus = "booked"
)

// Slot is a derived bookable interval. It has no identity across requests.
type Slot struct {
	Start              time.Time          `json:"start"`
	End                time.Time          `json:"end"`
	SlotType           SlotType           `json:"slot_type"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
}

func (s *Slot) IsAvailable() bool {
	return s.AvailabilityStatus == SlotAvailable
}

func (s *Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}
