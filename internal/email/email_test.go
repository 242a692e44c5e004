package email

import (
	"context"
	"testing"

	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var lines []string
	s := &Sender{logf: func(format string, args ...any) { lines = append(lines, format) }}

	require.NoError(t, s.Send(context.Background(), kafka.BookingEvent{Type: kafka.EventBookingCreated, BookingCode: "BK1"}))
	require.NoError(t, s.Send(context.Background(), kafka.BookingEvent{Type: kafka.EventBookingCreated, BookingCode: "BK1", CustomerEmail: "a@b.c"}))
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "skip")
	assert.Contains(t, lines[1], "to=")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Booking BK1 confirmed", Subject(kafka.BookingEvent{Type: kafka.EventBookingConfirmed, BookingCode: "BK1"}))
	assert.Equal(t, "Payment received for booking BK1", Subject(kafka.BookingEvent{Type: kafka.EventPaymentRecorded, BookingCode: "BK1"}))
	assert.Equal(t, "Booking BK1 is now COMPLETED", Subject(kafka.BookingEvent{Type: kafka.EventBookingStatusChanged, BookingCode: "BK1", Status: "COMPLETED"}))
}
