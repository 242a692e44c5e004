package payment

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter repository.PaymentFilter, page domain.Page) ([]domain.Payment, int, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]domain.Payment), args.Int(1), args.Error(2)
}

func (m *MockPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountPassengers(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason *string) error {
	return m.Called(ctx, id, status, reason).Error(0)
}

func (m *MockBookingRepository) UpdatePayment(ctx context.Context, id uuid.UUID, paidCents int64, status domain.BookingStatus) error {
	return m.Called(ctx, id, paidCents, status).Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, filter repository.BookingFilter, page domain.Page) ([]domain.Booking, int, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]domain.Booking), args.Int(1), args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	return m.Called(ctx, topic, key, payload).Error(0)
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e kafka.BookingEvent) bool { return e.Type == eventType })
}

type fixture struct {
	payments  *MockPaymentRepository
	bookings  *MockBookingRepository
	publisher *MockPublisher
	svc       *PaymentService
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		payments:  new(MockPaymentRepository),
		bookings:  new(MockBookingRepository),
		publisher: new(MockPublisher),
		now:       time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
	}
	f.svc = NewPaymentService(f.payments, f.bookings, passthroughTx{}, kafka.NewEmitter(f.publisher, "booking-events"))
	f.svc.now = func() time.Time { return f.now }
	return f
}

func pendingBooking(customer uuid.UUID, total, paid int64) *domain.Booking {
	return &domain.Booking{
		ID:          uuid.New(),
		BookingCode: "BKTEST000001",
		CustomerID:  customer,
		Status:      domain.BookingStatusPending,
		TotalCents:  total,
		PaidCents:   paid,
		Currency:    "USD",
	}
}

func TestCreatePayment_CashSettlesAndConfirms(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := policy.Actor{UserID: uuid.New(), Role: domain.RoleCustomer}
	booking := pendingBooking(actor.UserID, 250000, 0)

	f.bookings.On("GetForUpdate", ctx, booking.ID).Return(booking, nil)
	f.payments.On("Create", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil)
	f.bookings.On("UpdatePayment", ctx, booking.ID, int64(250000), domain.BookingStatusConfirmed).Return(nil)
	f.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	f.publisher.On("Publish", ctx, "booking-events", booking.ID.String(), eventOfType(kafka.EventPaymentRecorded)).Return(nil).Once()
	f.publisher.On("Publish", ctx, "booking-events", booking.ID.String(), eventOfType(kafka.EventBookingConfirmed)).Return(nil).Once()

	p, err := f.svc.CreatePayment(ctx, actor, CreatePaymentInput{
		BookingID:   booking.ID,
		Method:      domain.PaymentMethodCash,
		AmountCents: 250000,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, p.Status)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, f.now, *p.PaidAt)
	assert.Equal(t, int64(250000), booking.PaidCents)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	f.bookings.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCreatePayment_NonCashWaits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := policy.Actor{UserID: uuid.New(), Role: domain.RoleFinance}
	booking := pendingBooking(uuid.New(), 250000, 0)
	ref := "EVC-7731"

	f.bookings.On("GetForUpdate", ctx, booking.ID).Return(booking, nil)
	f.payments.On("Create", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil)
	f.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	f.publisher.On("Publish", ctx, "booking-events", mock.Anything, eventOfType(kafka.EventPaymentRecorded)).Return(nil).Once()

	p, err := f.svc.CreatePayment(ctx, actor, CreatePaymentInput{
		BookingID:   booking.ID,
		Method:      domain.PaymentMethodEVC,
		AmountCents: 100000,
		Reference:   &ref,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusInitiated, p.Status)
	assert.Nil(t, p.PaidAt)
	assert.Zero(t, booking.PaidCents)
	f.bookings.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertExpectations(t)
}

func TestCreatePayment_ExceedsRemaining(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := policy.Actor{UserID: uuid.New(), Role: domain.RoleCustomer}
	booking := pendingBooking(actor.UserID, 250000, 200000)

	f.bookings.On("GetForUpdate", ctx, booking.ID).Return(booking, nil)

	_, err := f.svc.CreatePayment(ctx, actor, CreatePaymentInput{BookingID: booking.ID, Method: domain.PaymentMethodCash, AmountCents: 50001})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePayment_Rejections(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("non positive amount", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreatePayment(ctx, policy.Actor{UserID: owner}, CreatePaymentInput{BookingID: uuid.New(), AmountCents: 0})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture()
		booking := pendingBooking(owner, 1000, 0)
		f.bookings.On("GetForUpdate", ctx, booking.ID).Return(booking, nil)

		stranger := policy.Actor{UserID: uuid.New(), Role: domain.RoleCustomer}
		_, err := f.svc.CreatePayment(ctx, stranger, CreatePaymentInput{BookingID: booking.ID, Method: domain.PaymentMethodCash, AmountCents: 500})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		f := newFixture()
		booking := pendingBooking(owner, 1000, 0)
		booking.Status = domain.BookingStatusCancelled
		f.bookings.On("GetForUpdate", ctx, booking.ID).Return(booking, nil)

		_, err := f.svc.CreatePayment(ctx, policy.Actor{UserID: owner, Role: domain.RoleCustomer}, CreatePaymentInput{BookingID: booking.ID, Method: domain.PaymentMethodCash, AmountCents: 500})
		require.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.bookings.On("GetForUpdate", ctx, id).Return(nil, domain.NotFound("booking"))

		_, err := f.svc.CreatePayment(ctx, policy.Actor{UserID: owner}, CreatePaymentInput{BookingID: id, Method: domain.PaymentMethodCash, AmountCents: 500})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	booking := pendingBooking(uuid.New(), 250000, 150000)
	payment := &domain.Payment{ID: uuid.New(), BookingID: booking.ID, Method: domain.PaymentMethodZaad, AmountCents: 100000, Status: domain.PaymentStatusInitiated}

	f.payments.On("GetForUpdate", ctx, payment.ID).Return(payment, nil)
	f.bookings.On("GetForUpdate", ctx, booking.ID).Return(booking, nil)
	f.payments.On("MarkPaid", ctx, payment.ID, f.now).Return(nil)
	f.bookings.On("UpdatePayment", ctx, booking.ID, int64(250000), domain.BookingStatusConfirmed).Return(nil)
	f.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	f.publisher.On("Publish", ctx, "booking-events", mock.Anything, eventOfType(kafka.EventPaymentConfirmed)).Return(nil).Once()
	f.publisher.On("Publish", ctx, "booking-events", mock.Anything, eventOfType(kafka.EventBookingConfirmed)).Return(nil).Once()

	got, err := f.svc.ConfirmPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.Status)
	assert.Equal(t, booking, got.Booking)
	f.payments.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestConfirmPayment_PartialKeepsPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	booking := pendingBooking(uuid.New(), 250000, 0)
	payment := &domain.Payment{ID: uuid.New(), BookingID: booking.ID, AmountCents: 100000, Status: domain.PaymentStatusInitiated}

	f.payments.On("GetForUpdate", ctx, payment.ID).Return(payment, nil)
	f.bookings.On("GetForUpdate", ctx, booking.ID).Return(booking, nil)
	f.payments.On("MarkPaid", ctx, payment.ID, f.now).Return(nil)
	f.bookings.On("UpdatePayment", ctx, booking.ID, int64(100000), domain.BookingStatusPending).Return(nil)
	f.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	f.publisher.On("Publish", ctx, "booking-events", mock.Anything, eventOfType(kafka.EventPaymentConfirmed)).Return(nil).Once()

	_, err := f.svc.ConfirmPayment(ctx, payment.ID)
	require.NoError(t, err)
	f.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestConfirmPayment_AlreadyPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	payment := &domain.Payment{ID: uuid.New(), Status: domain.PaymentStatusPaid}

	f.payments.On("GetForUpdate", ctx, payment.ID).Return(payment, nil)

	_, err := f.svc.ConfirmPayment(ctx, payment.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	f.payments.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestListPayments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	method := domain.PaymentMethodCash
	filter := repository.PaymentFilter{Method: &method}
	page := domain.NewPage(1, 20)

	f.payments.On("List", ctx, filter, page).Return([]domain.Payment{{Method: method}}, 21, nil)

	got, pagination, err := f.svc.ListPayments(ctx, filter, page)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.True(t, pagination.HasNext)
}
