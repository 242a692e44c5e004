package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type Booking struct {
	ID                 uuid.UUID     `json:"id"`
	BookingCode        string        `json:"bookingCode"`
	CustomerID         uuid.UUID     `json:"customerId"`
	DepartureID        uuid.UUID     `json:"departureId"`
	Status             BookingStatus `json:"status"`
	TotalCents         int64         `json:"totalCents"`
	PaidCents          int64         `json:"paidCents"`
	Currency           string        `json:"currency"`
	Notes              *string       `json:"notes,omitempty"`
	CancellationReason *string       `json:"cancellationReason,omitempty"`
	CreatedByID        *uuid.UUID    `json:"createdById,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	PassengerCount     int           `json:"passengerCount"`

	Passengers []Passenger    `json:"passengers,omitempty"`
	Addons     []BookingAddon `json:"addons,omitempty"`
	Payments   []Payment      `json:"payments,omitempty"`
	Customer   *User          `json:"customer,omitempty"`
	Departure  *Departure     `json:"departure,omitempty"`
}

type Passenger struct {
	ID          uuid.UUID  `json:"id"`
	BookingID   uuid.UUID  `json:"bookingId"`
	FullName    string     `json:"fullName"`
	Gender      Gender     `json:"gender"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	PassportNo  *string    `json:"passportNo,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	IsChild     bool       `json:"isChild"`
}

// BookingAddon is the price snapshot of an addon taken when the booking was made.
type BookingAddon struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"bookingId"`
	AddonID    uuid.UUID `json:"addonId"`
	Name       string    `json:"name,omitempty"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"priceCents"`
}

func (b *Booking) RemainingCents() int64 {
	return b.TotalCents - b.PaidCents
}

// Transition validates and applies a status change. CANCELLED and COMPLETED
// are terminal.
func (b *Booking) Transition(to BookingStatus) error {
	switch b.Status {
	case BookingStatusCancelled:
		if to == BookingStatusCancelled {
			return InvalidState("booking already cancelled")
		}
		return InvalidState("booking is cancelled")
	case BookingStatusCompleted:
		if to == BookingStatusCancelled {
			return InvalidState("cannot cancel completed booking")
		}
		return InvalidState("booking is completed")
	}
	if to == BookingStatusPending {
		return InvalidState("booking cannot return to pending")
	}
	b.Status = to
	return nil
}

// ApplyPayment adds a settled amount and confirms a pending booking once the
// balance is cleared. It reports whether the booking became confirmed.
func (b *Booking) ApplyPayment(amount int64) bool {
	b.PaidCents += amount
	if b.PaidCents >= b.TotalCents && b.Status == BookingStatusPending {
		b.Status = BookingStatusConfirmed
		return true
	}
	return false
}
