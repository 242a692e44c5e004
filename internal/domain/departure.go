package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DepartureStatus string

const (
	DepartureStatusAvailable DepartureStatus = "AVAILABLE"
	DepartureStatusFull      DepartureStatus = "FULL"
	DepartureStatusCancelled DepartureStatus = "CANCELLED"
)

// Departure is a scheduled instance of a trip with its own seat inventory.
// Invariant: 0 <= SeatsReserved <= Capacity.
type Departure struct {
	ID              uuid.UUID       `json:"id"`
	TripID          uuid.UUID       `json:"tripId"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Capacity        int             `json:"capacity"`
	SeatsReserved   int             `json:"seatsReserved"`
	BasePriceCents  int64           `json:"basePriceCents"`
	ChildPriceCents *int64          `json:"childPriceCents,omitempty"`
	Currency        string          `json:"currency"`
	Status          DepartureStatus `json:"status"`
	BookingCount    int             `json:"bookingCount,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Trip *Trip `json:"trip,omitempty"`
}

func (d *Departure) AvailableSeats() int {
	return d.Capacity - d.SeatsReserved
}

// MarshalJSON adds the derived availableSeats field.
func (d Departure) MarshalJSON() ([]byte, error) {
	type plain Departure
	return json.Marshal(struct {
		plain
		AvailableSeats int `json:"availableSeats"`
	}{plain(d), d.AvailableSeats()})
}

// Reserve takes n seats, flipping the departure to FULL when it fills up.
func (d *Departure) Reserve(n int) error {
	if d.Status != DepartureStatusAvailable {
		return InvalidState("this departure is not available for booking")
	}
	if available := d.AvailableSeats(); available < n {
		return CapacityExceeded(available)
	}
	d.SeatsReserved += n
	d.RefreshStatus()
	return nil
}

// Release gives back n seats and recomputes the status from the new count.
func (d *Departure) Release(n int) {
	d.SeatsReserved -= n
	if d.SeatsReserved < 0 {
		d.SeatsReserved = 0
	}
	d.RefreshStatus()
}

// RefreshStatus derives AVAILABLE/FULL from occupancy. A cancelled departure
// stays cancelled.
func (d *Departure) RefreshStatus() {
	if d.Status == DepartureStatusCancelled {
		return
	}
	if d.SeatsReserved >= d.Capacity {
		d.Status = DepartureStatusFull
		return
	}
	d.Status = DepartureStatusAvailable
}

// SeatPrice returns the price of one seat for an adult or a child.
func (d *Departure) SeatPrice(isChild bool) int64 {
	if isChild && d.ChildPriceCents != nil {
		return *d.ChildPriceCents
	}
	return d.BasePriceCents
}
