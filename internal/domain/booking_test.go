package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBooking_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		wantErr string
	}{
		{"confirm pending", BookingStatusPending, BookingStatusConfirmed, ""},
		{"cancel pending", BookingStatusPending, BookingStatusCancelled, ""},
		{"complete confirmed", BookingStatusConfirmed, BookingStatusCompleted, ""},
		{"cancel cancelled", BookingStatusCancelled, BookingStatusCancelled, "booking already cancelled"},
		{"confirm cancelled", BookingStatusCancelled, BookingStatusConfirmed, "booking is cancelled"},
		{"cancel completed", BookingStatusCompleted, BookingStatusCancelled, "cannot cancel completed booking"},
		{"reopen completed", BookingStatusCompleted, BookingStatusConfirmed, "booking is completed"},
		{"back to pending", BookingStatusConfirmed, BookingStatusPending, "booking cannot return to pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from}
			err := b.Transition(tt.to)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, b.Status)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidState)
			assert.EqualError(t, err, tt.wantErr)
			assert.Equal(t, tt.from, b.Status)
		})
	}
}

func TestBooking_ApplyPayment(t *testing.T) {
	b := &Booking{Status: BookingStatusPending, TotalCents: 250000}

	assert.False(t, b.ApplyPayment(100000))
	assert.Equal(t, BookingStatusPending, b.Status)
	assert.Equal(t, int64(150000), b.RemainingCents())

	assert.True(t, b.ApplyPayment(150000))
	assert.Equal(t, BookingStatusConfirmed, b.Status)
	assert.Zero(t, b.RemainingCents())

	completed := &Booking{Status: BookingStatusCompleted, TotalCents: 100}
	assert.False(t, completed.ApplyPayment(100))
	assert.Equal(t, BookingStatusCompleted, completed.Status)
}

func TestNewPayment(t *testing.T) {
	ref := "EVC-123"
	now := mustTime("2026-01-01T10:00:00Z")

	cash := NewPayment(uuid.New(), PaymentMethodCash, 5000, nil, now)
	assert.Equal(t, PaymentStatusPaid, cash.Status)
	if assert.NotNil(t, cash.PaidAt) {
		assert.Equal(t, now, *cash.PaidAt)
	}

	evc := NewPayment(uuid.New(), PaymentMethodEVC, 5000, &ref, now)
	assert.Equal(t, PaymentStatusInitiated, evc.Status)
	assert.Nil(t, evc.PaidAt)
	assert.Equal(t, &ref, evc.Reference)
}
