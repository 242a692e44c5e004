package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	now := time.Now().UTC()

	booking := &domain.Booking{
		BookingCode: "BKTEST01",
		CustomerID:  uuid.New(),
		DepartureID: uuid.New(),
		Status:      domain.BookingStatusPending,
		TotalCents:  250000,
		Currency:    "USD",
		Passengers: []domain.Passenger{
			{FullName: "Amina Hassan", Gender: domain.GenderFemale},
			{FullName: "Omar Hassan", Gender: domain.GenderMale, IsChild: true},
		},
		Addons: []domain.BookingAddon{{AddonID: uuid.New(), Quantity: 2, PriceCents: 5000}},
	}

	anyArg := pgxmock.AnyArg()
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyArg, "BKTEST01", booking.CustomerID, booking.DepartureID, domain.BookingStatusPending,
			int64(250000), int64(0), "USD", anyArg, anyArg).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("INSERT INTO passengers").
		WithArgs(anyArg, anyArg, "Amina Hassan", domain.GenderFemale, anyArg, anyArg, anyArg, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO passengers").
		WithArgs(anyArg, anyArg, "Omar Hassan", domain.GenderMale, anyArg, anyArg, anyArg, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booking_addons").
		WithArgs(anyArg, anyArg, booking.Addons[0].AddonID, 2, int64(5000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), booking))
	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.Equal(t, now, booking.CreatedAt)
	assert.Equal(t, 2, booking.PassengerCount)
	for _, p := range booking.Passengers {
		assert.Equal(t, booking.ID, p.BookingID)
	}
	assert.Equal(t, booking.ID, booking.Addons[0].BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CreateDuplicateCode(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(pgxmock.AnyArg(), "BKDUP", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_booking_code_key"})

	err := repo.Create(context.Background(), &domain.Booking{BookingCode: "BKDUP"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "booking code already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetForUpdateNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM bookings b WHERE b.id = \$1 FOR UPDATE`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetForUpdate(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_UpdatePaymentMissingRow(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings SET paid_cents").
		WithArgs(id, int64(1000), domain.BookingStatusConfirmed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePayment(context.Background(), id, 1000, domain.BookingStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListSearchFilter(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	status := domain.BookingStatusPending

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings b JOIN users u ON u.id = b.customer_id WHERE b.status = \$1 AND \(b.booking_code ILIKE \$2`).
		WithArgs(status, "%amina%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY b.created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(status, "%amina%", 10, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	bookings, total, err := repo.List(context.Background(), BookingFilter{Status: &status, Search: "amina"}, domain.NewPage(2, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}
