package payment

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
)

type PaymentUseCase interface {
	CreatePayment(ctx context.Context, actor policy.Actor, input CreatePaymentInput) (*domain.Payment, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter repository.PaymentFilter, page domain.Page) ([]domain.Payment, domain.Pagination, error)
}

type CreatePaymentInput struct {
	BookingID   uuid.UUID
	Method      domain.PaymentMethod
	AmountCents int64
	Reference   *string
}

type PaymentService struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
	tx       repository.TxManager
	events   *kafka.Emitter
	now      func() time.Time
}

func NewPaymentService(payments repository.PaymentRepository, bookings repository.BookingRepository, tx repository.TxManager, events *kafka.Emitter) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		tx:       tx,
		events:   events,
		now:      time.Now,
	}
}

// CreatePayment records a payment against a booking. Cash is settled on the
// spot and advances the booking balance in the same transaction.
func (s *PaymentService) CreatePayment(ctx context.Context, actor policy.Actor, input CreatePaymentInput) (*domain.Payment, error) {
	if input.AmountCents <= 0 {
		return nil, domain.Validation(domain.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}

	var (
		payment   *domain.Payment
		confirmed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetForUpdate(ctx, input.BookingID)
		if err != nil {
			return err
		}
		if !actor.CanActOn(booking.CustomerID, policy.PaymentsCreateAny) {
			return domain.Forbidden("access denied")
		}
		if booking.Status == domain.BookingStatusCancelled {
			return domain.InvalidState("cannot pay for a cancelled booking")
		}
		if remaining := booking.RemainingCents(); input.AmountCents > remaining {
			return domain.InvalidAmount(remaining)
		}

		payment = domain.NewPayment(booking.ID, input.Method, input.AmountCents, input.Reference, s.now().UTC())
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		if payment.Status != domain.PaymentStatusPaid {
			return nil
		}
		confirmed = booking.ApplyPayment(payment.AmountCents)
		return s.bookings.UpdatePayment(ctx, booking.ID, booking.PaidCents, booking.Status)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYMENT] recorded id=%s booking=%s method=%s amount=%d status=%s", payment.ID, payment.BookingID, payment.Method, payment.AmountCents, payment.Status)
	s.publish(ctx, kafka.EventPaymentRecorded, payment, confirmed)
	return payment, nil
}

// ConfirmPayment marks a pending payment as paid. The booking is locked
// before its balance is advanced so concurrent confirmations add up.
func (s *PaymentService) ConfirmPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var (
		payment   *domain.Payment
		confirmed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.payments.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if payment.Status == domain.PaymentStatusPaid {
			return domain.InvalidState("payment already confirmed")
		}
		booking, err := s.bookings.GetForUpdate(ctx, payment.BookingID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if err := s.payments.MarkPaid(ctx, payment.ID, now); err != nil {
			return err
		}
		payment.Status, payment.PaidAt = domain.PaymentStatusPaid, &now

		confirmed = booking.ApplyPayment(payment.AmountCents)
		return s.bookings.UpdatePayment(ctx, booking.ID, booking.PaidCents, booking.Status)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYMENT] confirmed id=%s booking=%s amount=%d", payment.ID, payment.BookingID, payment.AmountCents)
	s.publish(ctx, kafka.EventPaymentConfirmed, payment, confirmed)
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, filter repository.PaymentFilter, page domain.Page) ([]domain.Payment, domain.Pagination, error) {
	payments, total, err := s.payments.List(ctx, filter, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return payments, page.Paginate(total), nil
}

// publish attaches the committed booking to the payment and emits the
// payment event, plus booking.confirmed when the balance was cleared.
func (s *PaymentService) publish(ctx context.Context, eventType string, payment *domain.Payment, confirmed bool) {
	booking, err := s.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		log.Printf("WARNING: failed to load booking %s for %s event: %v", payment.BookingID, eventType, err)
		return
	}
	payment.Booking = booking

	event := kafka.NewBookingEvent(eventType, booking)
	paymentID := payment.ID
	event.PaymentID, event.AmountCents = &paymentID, payment.AmountCents
	s.events.Emit(ctx, event)

	if confirmed {
		s.events.Emit(ctx, kafka.NewBookingEvent(kafka.EventBookingConfirmed, booking))
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
