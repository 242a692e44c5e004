package kafka

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingConfirmed     = "booking.confirmed"
	EventPaymentRecorded      = "payment.recorded"
	EventPaymentConfirmed     = "payment.confirmed"
)

type BookingEvent struct {
	Type          string     `json:"type"`
	BookingID     uuid.UUID  `json:"bookingId"`
	BookingCode   string     `json:"bookingCode"`
	CustomerID    uuid.UUID  `json:"customerId"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"`
	Status        string     `json:"status"`
	TotalCents    int64      `json:"totalCents"`
	PaidCents     int64      `json:"paidCents"`
	Currency      string     `json:"currency"`
	PaymentID     *uuid.UUID `json:"paymentId,omitempty"`
	AmountCents   int64      `json:"amountCents,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
}

// NewBookingEvent snapshots b. Customer details are copied when loaded.
func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	e := BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		BookingCode: b.BookingCode,
		CustomerID:  b.CustomerID,
		Status:      string(b.Status),
		TotalCents:  b.TotalCents,
		PaidCents:   b.PaidCents,
		Currency:    b.Currency,
		OccurredAt:  time.Now().UTC(),
	}
	if b.Customer != nil {
		e.CustomerEmail, e.CustomerName = b.Customer.Email, b.Customer.Name
	}
	if b.CancellationReason != nil {
		e.Reason = *b.CancellationReason
	}
	return e
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Emitter fans booking events out to every configured topic, keyed by
// booking id. Failures are logged only.
type Emitter struct {
	publisher Publisher
	topics    []string
}

func NewEmitter(publisher Publisher, topics ...string) *Emitter {
	var nonEmpty []string
	for _, t := range topics {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return &Emitter{publisher: publisher, topics: nonEmpty}
}

func (e *Emitter) Emit(ctx context.Context, event BookingEvent) {
	if e == nil || e.publisher == nil {
		return
	}
	for _, topic := range e.topics {
		if err := e.publisher.Publish(ctx, topic, event.BookingID.String(), event); err != nil {
			log.Printf("WARNING: failed to publish %s for booking %s to %s: %v", event.Type, event.BookingCode, topic, err)
		}
	}
}
