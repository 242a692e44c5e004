package email

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/travelbooking/internal/kafka"
)

// Sender renders booking notifications. Delivery is a log line.
type Sender struct {
	logf func(format string, args ...any)
}

func NewSender() *Sender {
	return &Sender{logf: log.Printf}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.CustomerEmail == "" {
		s.logf("[EMAIL] skip event=%s booking=%s: no recipient", event.Type, event.BookingCode)
		return nil
	}
	s.logf("[EMAIL] to=%s subject=%q", event.CustomerEmail, Subject(event))
	return nil
}

func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s received", event.BookingCode)
	case kafka.EventBookingConfirmed:
		return fmt.Sprintf("Booking %s confirmed", event.BookingCode)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.BookingCode)
	case kafka.EventPaymentRecorded, kafka.EventPaymentConfirmed:
		return fmt.Sprintf("Payment received for booking %s", event.BookingCode)
	default:
		return fmt.Sprintf("Booking %s is now %s", event.BookingCode, event.Status)
	}
}
