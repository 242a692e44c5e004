package booking

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the booking tables. Transactions are
// serialized and rolled back on error, standing in for row locks.
type memStore struct {
	txMu sync.Mutex

	mu         sync.Mutex
	departures map[uuid.UUID]domain.Departure
	bookings   map[uuid.UUID]domain.Booking
	addons     map[uuid.UUID]domain.Addon
}

func newMemStore() *memStore {
	return &memStore{
		departures: map[uuid.UUID]domain.Departure{},
		bookings:   map[uuid.UUID]domain.Booking{},
		addons:     map[uuid.UUID]domain.Addon{},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	departures := make(map[uuid.UUID]domain.Departure, len(s.departures))
	for k, v := range s.departures {
		departures[k] = v
	}
	bookings := make(map[uuid.UUID]domain.Booking, len(s.bookings))
	for k, v := range s.bookings {
		bookings[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.departures, s.bookings = departures, bookings
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) departure(id uuid.UUID) domain.Departure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.departures[id]
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type memDepartures struct {
	repository.DepartureRepository
	*memStore
}

func (r memDepartures) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Departure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.departures[id]
	if !ok {
		return nil, domain.NotFound("departure")
	}
	return &d, nil
}

func (r memDepartures) UpdateOccupancy(ctx context.Context, id uuid.UUID, seatsReserved int, status domain.DepartureStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.departures[id]
	if !ok {
		return domain.NotFound("departure")
	}
	if seatsReserved < 0 || seatsReserved > d.Capacity {
		return domain.Conflict("seats out of bounds")
	}
	d.SeatsReserved, d.Status = seatsReserved, status
	r.departures[id] = d
	return nil
}

type memBookings struct {
	repository.BookingRepository
	*memStore
	failCreate error
}

func (r *memBookings) Create(ctx context.Context, b *domain.Booking) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.BookingCode == b.BookingCode {
			return domain.Conflict("booking code already exists")
		}
	}
	b.ID = uuid.New()
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	for i := range b.Passengers {
		b.Passengers[i].ID, b.Passengers[i].BookingID = uuid.New(), b.ID
	}
	for i := range b.Addons {
		b.Addons[i].ID, b.Addons[i].BookingID = uuid.New(), b.ID
	}
	b.PassengerCount = len(b.Passengers)
	r.bookings[b.ID] = *b
	return nil
}

func (r *memBookings) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking")
	}
	return &b, nil
}

func (r *memBookings) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookings) CountPassengers(ctx context.Context, id uuid.UUID) (int, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return len(b.Passengers), nil
}

func (r *memBookings) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return domain.NotFound("booking")
	}
	b.Status = status
	if reason != nil {
		b.CancellationReason = reason
	}
	r.bookings[id] = b
	return nil
}

func (r *memBookings) List(ctx context.Context, filter repository.BookingFilter, page domain.Page) ([]domain.Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.bookings {
		if filter.CustomerID != nil && b.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

type memTrips struct {
	repository.TripRepository
	*memStore
}

func (r memTrips) ActiveAddons(ctx context.Context, tripID uuid.UUID, ids []uuid.UUID) ([]domain.Addon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Addon
	for _, id := range ids {
		if a, ok := r.addons[id]; ok && a.TripID == tripID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}
