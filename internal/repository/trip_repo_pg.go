package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type TripFilter struct {
	Status      *domain.TripStatus
	Category    *domain.TripCategory
	Destination string
	Search      string
	// Price and date bounds select the departure a summary is priced from.
	MinPrice  *int64
	MaxPrice  *int64
	StartDate *time.Time
}

type TripRepository interface {
	ListPublished(ctx context.Context, filter TripFilter, page domain.Page) ([]domain.TripSummary, int, error)
	GetPublishedBySlug(ctx context.Context, slug string, now time.Time) (*domain.Trip, error)
	List(ctx context.Context, filter TripFilter, page domain.Page) ([]domain.Trip, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	Create(ctx context.Context, trip *domain.Trip) error
	Update(ctx context.Context, trip *domain.Trip) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountBookings(ctx context.Context, id uuid.UUID) (int, error)
	// ActiveAddons returns the active addons of the trip among ids.
	ActiveAddons(ctx context.Context, tripID uuid.UUID, ids []uuid.UUID) ([]domain.Addon, error)
}

type PGTripRepository struct {
	db DB
}

func NewTripRepository(db DB) TripRepository {
	return &PGTripRepository{db: db}
}

const tripColumns = `t.id, t.title, t.slug, t.destination_id, t.description, t.duration_days, t.category,
	t.inclusions, t.exclusions, t.highlights, t.status, t.created_at, t.updated_at`

func tripDest(t *domain.Trip) []any {
	return []any{&t.ID, &t.Title, &t.Slug, &t.DestinationID, &t.Description, &t.DurationDays, &t.Category,
		&t.Inclusions, &t.Exclusions, &t.Highlights, &t.Status, &t.CreatedAt, &t.UpdatedAt}
}

func (f TripFilter) apply(w *where) {
	if f.Status != nil {
		w.add("t.status = " + w.arg(*f.Status))
	}
	if f.Category != nil {
		w.add("t.category = " + w.arg(*f.Category))
	}
	if f.Destination != "" {
		w.add("ds.name ILIKE " + w.arg(likePattern(f.Destination)))
	}
	if f.Search != "" {
		p := w.arg(likePattern(f.Search))
		w.add("(t.title ILIKE " + p + " OR t.description ILIKE " + p + ")")
	}
}

func (r *PGTripRepository) ListPublished(ctx context.Context, filter TripFilter, page domain.Page) ([]domain.TripSummary, int, error) {
	published := domain.TripStatusPublished
	filter.Status = &published

	var w where
	filter.apply(&w)

	db := conn(ctx, r.db)
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM trips t JOIN destinations ds ON ds.id = t.destination_id`+w.String(), w.args...).
		Scan(&total); err != nil {
		return nil, 0, err
	}

	from := time.Now().UTC()
	if filter.StartDate != nil {
		from = *filter.StartDate
	}
	next := "nd.status = 'AVAILABLE' AND nd.start_date >= " + w.arg(from)
	if filter.MinPrice != nil {
		next += " AND nd.base_price_cents >= " + w.arg(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		next += " AND nd.base_price_cents <= " + w.arg(*filter.MaxPrice)
	}

	query := `SELECT t.id, t.title, t.slug, t.description, t.duration_days, t.category, ` + destinationColumns + `,
		img.url, dep.base_price_cents, COALESCE(dep.currency, 'USD'), dep.start_date
		FROM trips t
		JOIN destinations ds ON ds.id = t.destination_id
		LEFT JOIN LATERAL (
			SELECT i.url FROM trip_images i WHERE i.trip_id = t.id ORDER BY i.sort_order LIMIT 1
		) img ON true
		LEFT JOIN LATERAL (
			SELECT nd.base_price_cents, nd.currency, nd.start_date FROM trip_departures nd
			WHERE nd.trip_id = t.id AND ` + next + `
			ORDER BY nd.start_date LIMIT 1
		) dep ON true` + w.String() + ` ORDER BY t.created_at DESC` + w.page(page.Limit, page.Offset())

	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	trips := make([]domain.TripSummary, 0, page.Limit)
	for rows.Next() {
		var s domain.TripSummary
		scan := []any{&s.ID, &s.Title, &s.Slug, &s.Description, &s.DurationDays, &s.Category}
		scan = append(scan, destinationDest(&s.Destination)...)
		scan = append(scan, &s.Image, &s.MinPriceCents, &s.Currency, &s.NextDeparture)
		if err := rows.Scan(scan...); err != nil {
			return nil, 0, err
		}
		trips = append(trips, s)
	}
	return trips, total, rows.Err()
}

func (r *PGTripRepository) GetPublishedBySlug(ctx context.Context, slug string, now time.Time) (*domain.Trip, error) {
	db := conn(ctx, r.db)
	trip, err := r.getOne(ctx, `t.slug = $1 AND t.status = $2`, slug, domain.TripStatusPublished)
	if err != nil {
		return nil, err
	}

	if trip.Images, err = r.images(ctx, trip.ID); err != nil {
		return nil, err
	}
	if trip.Itineraries, err = r.itineraries(ctx, trip.ID); err != nil {
		return nil, err
	}
	if trip.Addons, err = r.addons(ctx, `a.trip_id = $1 AND a.is_active`, trip.ID); err != nil {
		return nil, err
	}
	trip.Departures, err = listDepartures(ctx, db, `SELECT `+departureColumns+` FROM trip_departures d
		WHERE d.trip_id = $1 AND d.status = $2 AND d.start_date >= $3 ORDER BY d.start_date`,
		trip.ID, domain.DepartureStatusAvailable, now)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (r *PGTripRepository) getOne(ctx context.Context, cond string, args ...any) (*domain.Trip, error) {
	var (
		t    domain.Trip
		dest domain.Destination
	)
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT `+tripColumns+`, `+destinationColumns+`
		FROM trips t JOIN destinations ds ON ds.id = t.destination_id WHERE `+cond, args...).
		Scan(append(tripDest(&t), destinationDest(&dest)...)...)
	if err != nil {
		return nil, mapError(err, "trip")
	}
	t.Destination = &dest
	return &t, nil
}

func (r *PGTripRepository) images(ctx context.Context, tripID uuid.UUID) ([]domain.TripImage, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id, url, sort_order FROM trip_images WHERE trip_id = $1 ORDER BY sort_order`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []domain.TripImage{}
	for rows.Next() {
		var img domain.TripImage
		if err := rows.Scan(&img.ID, &img.URL, &img.SortOrder); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *PGTripRepository) itineraries(ctx context.Context, tripID uuid.UUID) ([]domain.Itinerary, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id, day_no, title, description FROM trip_itineraries WHERE trip_id = $1 ORDER BY day_no`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []domain.Itinerary{}
	for rows.Next() {
		var it domain.Itinerary
		if err := rows.Scan(&it.ID, &it.DayNo, &it.Title, &it.Description); err != nil {
			return nil, err
		}
		days = append(days, it)
	}
	return days, rows.Err()
}

func (r *PGTripRepository) addons(ctx context.Context, cond string, args ...any) ([]domain.Addon, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT a.id, a.trip_id, a.name, a.description, a.price_cents, a.is_active
		FROM addons a WHERE `+cond+` ORDER BY a.name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addons := []domain.Addon{}
	for rows.Next() {
		var a domain.Addon
		if err := rows.Scan(&a.ID, &a.TripID, &a.Name, &a.Description, &a.PriceCents, &a.IsActive); err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}

func (r *PGTripRepository) List(ctx context.Context, filter TripFilter, page domain.Page) ([]domain.Trip, int, error) {
	var w where
	filter.apply(&w)

	db := conn(ctx, r.db)
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM trips t JOIN destinations ds ON ds.id = t.destination_id`+w.String(), w.args...).
		Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + tripColumns + `, ` + destinationColumns + `,
		(SELECT COUNT(*) FROM trip_departures d WHERE d.trip_id = t.id),
		(SELECT i.url FROM trip_images i WHERE i.trip_id = t.id ORDER BY i.sort_order LIMIT 1)
		FROM trips t JOIN destinations ds ON ds.id = t.destination_id` + w.String() +
		` ORDER BY t.created_at DESC` + w.page(page.Limit, page.Offset())
	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0, page.Limit)
	for rows.Next() {
		var (
			t     domain.Trip
			dest  domain.Destination
			image *string
		)
		scan := append(tripDest(&t), destinationDest(&dest)...)
		if err := rows.Scan(append(scan, &t.DepartureCount, &image)...); err != nil {
			return nil, 0, err
		}
		t.Destination = &dest
		if image != nil {
			t.Images = []domain.TripImage{{URL: *image}}
		}
		trips = append(trips, t)
	}
	return trips, total, rows.Err()
}

func (r *PGTripRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	return r.getOne(ctx, `t.id = $1`, id)
}

// Create inserts the trip along with any images, itinerary days and addons
// it carries.
func (r *PGTripRepository) Create(ctx context.Context, t *domain.Trip) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	db := conn(ctx, r.db)
	err := db.QueryRow(ctx, `INSERT INTO trips
		(id, title, slug, destination_id, description, duration_days, category, inclusions, exclusions, highlights, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		t.ID, t.Title, t.Slug, t.DestinationID, t.Description, t.DurationDays, t.Category,
		t.Inclusions, t.Exclusions, t.Highlights, t.Status).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return mapError(err, "trip")
	}

	for i := range t.Images {
		img := &t.Images[i]
		img.ID = uuid.New()
		if _, err := db.Exec(ctx, `INSERT INTO trip_images (id, trip_id, url, sort_order) VALUES ($1, $2, $3, $4)`,
			img.ID, t.ID, img.URL, img.SortOrder); err != nil {
			return err
		}
	}
	for i := range t.Itineraries {
		it := &t.Itineraries[i]
		it.ID = uuid.New()
		if _, err := db.Exec(ctx, `INSERT INTO trip_itineraries (id, trip_id, day_no, title, description) VALUES ($1, $2, $3, $4, $5)`,
			it.ID, t.ID, it.DayNo, it.Title, it.Description); err != nil {
			return err
		}
	}
	for i := range t.Addons {
		a := &t.Addons[i]
		a.ID, a.TripID = uuid.New(), t.ID
		if _, err := db.Exec(ctx, `INSERT INTO addons (id, trip_id, name, description, price_cents, is_active) VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, t.ID, a.Name, a.Description, a.PriceCents, a.IsActive); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGTripRepository) Update(ctx context.Context, t *domain.Trip) error {
	err := conn(ctx, r.db).QueryRow(ctx, `UPDATE trips SET
		title = $2, slug = $3, destination_id = $4, description = $5, duration_days = $6, category = $7,
		inclusions = $8, exclusions = $9, highlights = $10, status = $11, updated_at = now()
		WHERE id = $1 RETURNING updated_at`,
		t.ID, t.Title, t.Slug, t.DestinationID, t.Description, t.DurationDays, t.Category,
		t.Inclusions, t.Exclusions, t.Highlights, t.Status).
		Scan(&t.UpdatedAt)
	return mapError(err, "trip")
}

func (r *PGTripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("trip")
	}
	return nil
}

// CountBookings counts bookings across every departure of the trip.
func (r *PGTripRepository) CountBookings(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM bookings b
		JOIN trip_departures d ON d.id = b.departure_id WHERE d.trip_id = $1`, id).Scan(&n)
	return n, err
}

func (r *PGTripRepository) ActiveAddons(ctx context.Context, tripID uuid.UUID, ids []uuid.UUID) ([]domain.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	return r.addons(ctx, `a.trip_id = $1 AND a.is_active AND a.id = ANY($2::uuid[])`, tripID, raw)
}

var _ TripRepository = (*PGTripRepository)(nil)
