package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodEVC          PaymentMethod = "EVC"
	PaymentMethodZaad         PaymentMethod = "ZAAD"
	PaymentMethodSahal        PaymentMethod = "SAHAL"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "INITIATED"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID          uuid.UUID     `json:"id"`
	BookingID   uuid.UUID     `json:"bookingId"`
	Method      PaymentMethod `json:"method"`
	AmountCents int64         `json:"amountCents"`
	Reference   *string       `json:"reference,omitempty"`
	Status      PaymentStatus `json:"status"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`

	Booking *Booking `json:"booking,omitempty"`
}

// NewPayment builds a payment record. Cash is settled on the spot, every other
// method waits for manual confirmation.
func NewPayment(bookingID uuid.UUID, method PaymentMethod, amount int64, reference *string, now time.Time) *Payment {
	p := &Payment{
		ID:          uuid.New(),
		BookingID:   bookingID,
		Method:      method,
		AmountCents: amount,
		Reference:   reference,
		Status:      PaymentStatusInitiated,
		CreatedAt:   now,
	}
	if method == PaymentMethodCash {
		p.Status = PaymentStatusPaid
		p.PaidAt = &now
	}
	return p
}
