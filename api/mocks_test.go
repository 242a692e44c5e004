package api

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/catalog"
	"github.com/Domenick1991/travelbooking/internal/service/payment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAccountUseCase struct {
	mock.Mock
	account.AccountUseCase
}

func (m *MockAccountUseCase) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccountUseCase) Login(ctx context.Context, email, password string) (*account.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Session), args.Error(1)
}

func (m *MockAccountUseCase) Register(ctx context.Context, input account.RegisterInput) (*account.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Session), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
	booking.BookingUseCase
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, actor policy.Actor, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, actor policy.Actor, id uuid.UUID, reason *string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason *string) (*domain.Booking, error) {
	args := m.Called(ctx, id, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Invoice(ctx context.Context, actor policy.Actor, id uuid.UUID) ([]byte, *domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(1) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(*domain.Booking), args.Error(2)
}

type MockCatalogUseCase struct {
	mock.Mock
	catalog.CatalogUseCase
}

func (m *MockCatalogUseCase) ListTrips(ctx context.Context, filter repository.TripFilter, page domain.Page) (*domain.TripPage, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TripPage), args.Error(1)
}

func (m *MockCatalogUseCase) ListTripDepartures(ctx context.Context, tripID uuid.UUID, from *time.Time) ([]domain.Departure, error) {
	args := m.Called(ctx, tripID, from)
	return args.Get(0).([]domain.Departure), args.Error(1)
}

func (m *MockCatalogUseCase) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockPaymentUseCase struct {
	mock.Mock
	payment.PaymentUseCase
}

func (m *MockPaymentUseCase) ConfirmPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, time.Duration, error) {
	s.keys = append(s.keys, key)
	return s.allowed, 30 * time.Second, s.err
}
