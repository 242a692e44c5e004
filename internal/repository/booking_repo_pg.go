package repository

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type BookingFilter struct {
	CustomerID *uuid.UUID
	Status     *domain.BookingStatus
	// Search matches the booking code or the customer's name or email.
	Search string
}

type BookingRepository interface {
	// Create inserts the booking together with its passengers and addon lines.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// GetForUpdate row-locks the booking for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	CountPassengers(ctx context.Context, id uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason *string) error
	UpdatePayment(ctx context.Context, id uuid.UUID, paidCents int64, status domain.BookingStatus) error
	List(ctx context.Context, filter BookingFilter, page domain.Page) ([]domain.Booking, int, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `b.id, b.booking_code, b.customer_id, b.departure_id, b.status, b.total_cents, b.paid_cents,
	b.currency, b.notes, b.cancellation_reason, b.created_by_id, b.created_at, b.updated_at`

func bookingDest(b *domain.Booking) []any {
	return []any{&b.ID, &b.BookingCode, &b.CustomerID, &b.DepartureID, &b.Status, &b.TotalCents, &b.PaidCents,
		&b.Currency, &b.Notes, &b.CancellationReason, &b.CreatedByID, &b.CreatedAt, &b.UpdatedAt}
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	db := conn(ctx, r.db)
	err := db.QueryRow(ctx, `INSERT INTO bookings
		(id, booking_code, customer_id, departure_id, status, total_cents, paid_cents, currency, notes, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		b.ID, b.BookingCode, b.CustomerID, b.DepartureID, b.Status, b.TotalCents, b.PaidCents,
		b.Currency, b.Notes, b.CreatedByID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return mapError(err, "booking")
	}

	for i := range b.Passengers {
		p := &b.Passengers[i]
		p.ID, p.BookingID = uuid.New(), b.ID
		if _, err := db.Exec(ctx, `INSERT INTO passengers
			(id, booking_id, full_name, gender, date_of_birth, passport_no, nationality, is_child)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, b.ID, p.FullName, p.Gender, p.DateOfBirth, p.PassportNo, p.Nationality, p.IsChild); err != nil {
			return err
		}
	}
	for i := range b.Addons {
		a := &b.Addons[i]
		a.ID, a.BookingID = uuid.New(), b.ID
		if _, err := db.Exec(ctx, `INSERT INTO booking_addons (id, booking_id, addon_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			a.ID, b.ID, a.AddonID, a.Quantity, a.PriceCents); err != nil {
			return err
		}
	}
	b.PassengerCount = len(b.Passengers)
	return nil
}

// GetByID loads the booking with its customer, departure, passengers, addon
// lines and payments.
func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	db := conn(ctx, r.db)
	var (
		b    domain.Booking
		cust domain.User
		dep  domain.Departure
		trip domain.Trip
		dest domain.Destination
	)
	scan := bookingDest(&b)
	scan = append(scan, &cust.ID, &cust.Name, &cust.Email, &cust.Phone)
	scan = append(scan, departureDest(&dep)...)
	scan = append(scan, &trip.Title, &trip.Slug, &trip.DurationDays, &trip.Category)
	scan = append(scan, destinationDest(&dest)...)
	err := db.QueryRow(ctx, `SELECT `+bookingColumns+`, u.id, u.name, u.email, u.phone, `+departureColumns+`,
		t.title, t.slug, t.duration_days, t.category, `+destinationColumns+`
		FROM bookings b
		JOIN users u ON u.id = b.customer_id
		JOIN trip_departures d ON d.id = b.departure_id
		JOIN trips t ON t.id = d.trip_id
		JOIN destinations ds ON ds.id = t.destination_id
		WHERE b.id = $1`, id).Scan(scan...)
	if err != nil {
		return nil, mapError(err, "booking")
	}
	trip.ID, trip.DestinationID, trip.Destination = dep.TripID, dest.ID, &dest
	dep.Trip = &trip
	b.Customer, b.Departure = &cust, &dep

	if b.Passengers, err = r.passengers(ctx, b.ID); err != nil {
		return nil, err
	}
	b.PassengerCount = len(b.Passengers)
	if b.Addons, err = r.addons(ctx, b.ID); err != nil {
		return nil, err
	}
	if b.Payments, err = listPayments(ctx, db, `p.booking_id = $1`, b.ID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) passengers(ctx context.Context, bookingID uuid.UUID) ([]domain.Passenger, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id, booking_id, full_name, gender, date_of_birth, passport_no, nationality, is_child
		FROM passengers WHERE booking_id = $1 ORDER BY full_name`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := []domain.Passenger{}
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FullName, &p.Gender, &p.DateOfBirth, &p.PassportNo, &p.Nationality, &p.IsChild); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGBookingRepository) addons(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingAddon, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT ba.id, ba.booking_id, ba.addon_id, a.name, ba.quantity, ba.price_cents
		FROM booking_addons ba JOIN addons a ON a.id = ba.addon_id WHERE ba.booking_id = $1 ORDER BY a.name`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []domain.BookingAddon{}
	for rows.Next() {
		var a domain.BookingAddon
		if err := rows.Scan(&a.ID, &a.BookingID, &a.AddonID, &a.Name, &a.Quantity, &a.PriceCents); err != nil {
			return nil, err
		}
		lines = append(lines, a)
	}
	return lines, rows.Err()
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1 FOR UPDATE`, id).
		Scan(bookingDest(&b)...)
	if err != nil {
		return nil, mapError(err, "booking")
	}
	return &b, nil
}

func (r *PGBookingRepository) CountPassengers(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM passengers WHERE booking_id = $1`, id).Scan(&n)
	return n, err
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason *string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE bookings SET status = $2, cancellation_reason = COALESCE($3, cancellation_reason), updated_at = now()
		WHERE id = $1`, id, status, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("booking")
	}
	return nil
}

func (r *PGBookingRepository) UpdatePayment(ctx context.Context, id uuid.UUID, paidCents int64, status domain.BookingStatus) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE bookings SET paid_cents = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, paidCents, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("booking")
	}
	return nil
}

// List returns booking rows with customer contact and trip summary, newest first.
func (r *PGBookingRepository) List(ctx context.Context, filter BookingFilter, page domain.Page) ([]domain.Booking, int, error) {
	var w where
	if filter.CustomerID != nil {
		w.add("b.customer_id = " + w.arg(*filter.CustomerID))
	}
	if filter.Status != nil {
		w.add("b.status = " + w.arg(*filter.Status))
	}
	if filter.Search != "" {
		p := w.arg(likePattern(filter.Search))
		w.add("(b.booking_code ILIKE " + p + " OR u.name ILIKE " + p + " OR u.email ILIKE " + p + ")")
	}

	db := conn(ctx, r.db)
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings b JOIN users u ON u.id = b.customer_id`+w.String(), w.args...).
		Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookingColumns + `,
		(SELECT COUNT(*) FROM passengers p WHERE p.booking_id = b.id),
		u.id, u.name, u.email, u.phone,
		d.id, d.trip_id, d.start_date, d.end_date, d.capacity, d.seats_reserved, d.currency, d.status, t.title, t.slug, ds.name
		FROM bookings b
		JOIN users u ON u.id = b.customer_id
		JOIN trip_departures d ON d.id = b.departure_id
		JOIN trips t ON t.id = d.trip_id
		JOIN destinations ds ON ds.id = t.destination_id` + w.String() +
		` ORDER BY b.created_at DESC` + w.page(page.Limit, page.Offset())
	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0, page.Limit)
	for rows.Next() {
		var (
			b    domain.Booking
			cust domain.User
			dep  domain.Departure
			trip domain.Trip
			dest domain.Destination
		)
		scan := append(bookingDest(&b), &b.PassengerCount, &cust.ID, &cust.Name, &cust.Email, &cust.Phone,
			&dep.ID, &dep.TripID, &dep.StartDate, &dep.EndDate, &dep.Capacity, &dep.SeatsReserved, &dep.Currency, &dep.Status, &trip.Title, &trip.Slug, &dest.Name)
		if err := rows.Scan(scan...); err != nil {
			return nil, 0, err
		}
		trip.ID, trip.Destination = dep.TripID, &dest
		dep.Trip = &trip
		b.Customer, b.Departure = &cust, &dep
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
