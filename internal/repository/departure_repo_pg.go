package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type DepartureFilter struct {
	TripID *uuid.UUID
	Status *domain.DepartureStatus
}

type DepartureRepository interface {
	// ListAvailableByTrip returns AVAILABLE departures starting at or after from.
	ListAvailableByTrip(ctx context.Context, tripID uuid.UUID, from time.Time) ([]domain.Departure, error)
	List(ctx context.Context, filter DepartureFilter, page domain.Page) ([]domain.Departure, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Departure, error)
	// GetForUpdate row-locks the departure for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Departure, error)
	Create(ctx context.Context, departure *domain.Departure) error
	Update(ctx context.Context, departure *domain.Departure) error
	UpdateOccupancy(ctx context.Context, id uuid.UUID, seatsReserved int, status domain.DepartureStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountBookings(ctx context.Context, id uuid.UUID) (int, error)
}

type PGDepartureRepository struct {
	db DB
}

func NewDepartureRepository(db DB) DepartureRepository {
	return &PGDepartureRepository{db: db}
}

const departureColumns = `d.id, d.trip_id, d.start_date, d.end_date, d.capacity, d.seats_reserved,
	d.base_price_cents, d.child_price_cents, d.currency, d.status, d.created_at, d.updated_at`

func departureDest(d *domain.Departure) []any {
	return []any{&d.ID, &d.TripID, &d.StartDate, &d.EndDate, &d.Capacity, &d.SeatsReserved,
		&d.BasePriceCents, &d.ChildPriceCents, &d.Currency, &d.Status, &d.CreatedAt, &d.UpdatedAt}
}

func (r *PGDepartureRepository) ListAvailableByTrip(ctx context.Context, tripID uuid.UUID, from time.Time) ([]domain.Departure, error) {
	return listDepartures(ctx, conn(ctx, r.db), `SELECT `+departureColumns+` FROM trip_departures d
		WHERE d.trip_id = $1 AND d.status = $2 AND d.start_date >= $3 ORDER BY d.start_date`,
		tripID, domain.DepartureStatusAvailable, from)
}

func listDepartures(ctx context.Context, q Querier, query string, args ...any) ([]domain.Departure, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departures := []domain.Departure{}
	for rows.Next() {
		var d domain.Departure
		if err := rows.Scan(departureDest(&d)...); err != nil {
			return nil, err
		}
		departures = append(departures, d)
	}
	return departures, rows.Err()
}

func (r *PGDepartureRepository) List(ctx context.Context, filter DepartureFilter, page domain.Page) ([]domain.Departure, int, error) {
	var w where
	if filter.TripID != nil {
		w.add("d.trip_id = " + w.arg(*filter.TripID))
	}
	if filter.Status != nil {
		w.add("d.status = " + w.arg(*filter.Status))
	}

	db := conn(ctx, r.db)
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM trip_departures d`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + departureColumns + `, t.title, t.slug, ` + destinationColumns + `,
		(SELECT COUNT(*) FROM bookings b WHERE b.departure_id = d.id)
		FROM trip_departures d
		JOIN trips t ON t.id = d.trip_id
		JOIN destinations ds ON ds.id = t.destination_id` + w.String() +
		` ORDER BY d.start_date DESC` + w.page(page.Limit, page.Offset())
	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	departures := make([]domain.Departure, 0, page.Limit)
	for rows.Next() {
		var (
			d    domain.Departure
			trip domain.Trip
			dest domain.Destination
		)
		scan := append(departureDest(&d), &trip.Title, &trip.Slug)
		scan = append(scan, destinationDest(&dest)...)
		if err := rows.Scan(append(scan, &d.BookingCount)...); err != nil {
			return nil, 0, err
		}
		trip.ID, trip.DestinationID, trip.Destination = d.TripID, dest.ID, &dest
		d.Trip = &trip
		departures = append(departures, d)
	}
	return departures, total, rows.Err()
}

func (r *PGDepartureRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Departure, error) {
	var (
		d    domain.Departure
		trip domain.Trip
	)
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT `+departureColumns+`, t.title, t.slug
		FROM trip_departures d JOIN trips t ON t.id = d.trip_id WHERE d.id = $1`, id).
		Scan(append(departureDest(&d), &trip.Title, &trip.Slug)...)
	if err != nil {
		return nil, mapError(err, "departure")
	}
	trip.ID = d.TripID
	d.Trip = &trip
	return &d, nil
}

func (r *PGDepartureRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Departure, error) {
	var d domain.Departure
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT `+departureColumns+` FROM trip_departures d WHERE d.id = $1 FOR UPDATE`, id).
		Scan(departureDest(&d)...)
	if err != nil {
		return nil, mapError(err, "departure")
	}
	return &d, nil
}

func (r *PGDepartureRepository) Create(ctx context.Context, d *domain.Departure) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO trip_departures
		(id, trip_id, start_date, end_date, capacity, seats_reserved, base_price_cents, child_price_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		d.ID, d.TripID, d.StartDate, d.EndDate, d.Capacity, d.SeatsReserved,
		d.BasePriceCents, d.ChildPriceCents, d.Currency, d.Status).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	return mapError(err, "departure")
}

func (r *PGDepartureRepository) Update(ctx context.Context, d *domain.Departure) error {
	err := conn(ctx, r.db).QueryRow(ctx, `UPDATE trip_departures SET
		start_date = $2, end_date = $3, capacity = $4, base_price_cents = $5, child_price_cents = $6,
		currency = $7, status = $8, updated_at = now()
		WHERE id = $1 RETURNING updated_at`,
		d.ID, d.StartDate, d.EndDate, d.Capacity, d.BasePriceCents, d.ChildPriceCents, d.Currency, d.Status).
		Scan(&d.UpdatedAt)
	return mapError(err, "departure")
}

func (r *PGDepartureRepository) UpdateOccupancy(ctx context.Context, id uuid.UUID, seatsReserved int, status domain.DepartureStatus) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE trip_departures SET seats_reserved = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, seatsReserved, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("departure")
	}
	return nil
}

func (r *PGDepartureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM trip_departures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("departure")
	}
	return nil
}

func (r *PGDepartureRepository) CountBookings(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE departure_id = $1`, id).Scan(&n)
	return n, err
}

var _ DepartureRepository = (*PGDepartureRepository)(nil)
