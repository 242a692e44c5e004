package booking

import (
	"context"
	"encoding/hex"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/invoice"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actor policy.Actor, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*domain.Booking, error)
	ListMyBookings(ctx context.Context, actor policy.Actor, status *domain.BookingStatus, page domain.Page) ([]domain.Booking, domain.Pagination, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter, page domain.Page) ([]domain.Booking, domain.Pagination, error)
	CancelBooking(ctx context.Context, actor policy.Actor, id uuid.UUID, reason *string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason *string) (*domain.Booking, error)
	Invoice(ctx context.Context, actor policy.Actor, id uuid.UUID) ([]byte, *domain.Booking, error)
}

type AddonSelection struct {
	AddonID  uuid.UUID
	Quantity int
}

type CreateBookingInput struct {
	DepartureID uuid.UUID
	Passengers  []domain.Passenger
	Addons      []AddonSelection
	Notes       *string
}

// TripCache is the part of the public listing cache that depends on
// departure availability.
type TripCache interface {
	InvalidateTrips(ctx context.Context) error
}

type BookingService struct {
	bookings   repository.BookingRepository
	departures repository.DepartureRepository
	trips      repository.TripRepository
	tx         repository.TxManager
	events     *kafka.Emitter
	tripCache  TripCache
	now        func() time.Time
	newCode    func(time.Time) string
}

type Option func(*BookingService)

// WithTripCache drops cached trip listings whenever a booking moves a
// departure between AVAILABLE and FULL.
func WithTripCache(cache TripCache) Option {
	return func(s *BookingService) {
		s.tripCache = cache
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	departures repository.DepartureRepository,
	trips repository.TripRepository,
	tx repository.TxManager,
	events *kafka.Emitter,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		bookings:   bookings,
		departures: departures,
		trips:      trips,
		tx:         tx,
		events:     events,
		now:        time.Now,
		newCode:    NewBookingCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking reserves seats on the departure and records the booking with
// its passengers and addon snapshots. The departure row stays locked until
// commit, so concurrent bookers on one departure run one after another.
func (s *BookingService) CreateBooking(ctx context.Context, actor policy.Actor, input CreateBookingInput) (*domain.Booking, error) {
	if len(input.Passengers) == 0 {
		return nil, domain.Validation(domain.FieldError{Field: "passengers", Message: "at least one passenger is required"})
	}

	var (
		id      uuid.UUID
		flipped bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		departure, err := s.departures.GetForUpdate(ctx, input.DepartureID)
		if err != nil {
			return err
		}
		before := departure.Status
		if err := departure.Reserve(len(input.Passengers)); err != nil {
			return err
		}
		flipped = departure.Status != before

		var total int64
		for _, p := range input.Passengers {
			total += departure.SeatPrice(p.IsChild)
		}
		lines, addonTotal, err := s.priceAddons(ctx, departure.TripID, input.Addons)
		if err != nil {
			return err
		}
		total += addonTotal

		actorID := actor.UserID
		booking := &domain.Booking{
			BookingCode: s.newCode(s.now()),
			CustomerID:  actor.UserID,
			DepartureID: departure.ID,
			Status:      domain.BookingStatusPending,
			TotalCents:  total,
			Currency:    departure.Currency,
			Notes:       input.Notes,
			CreatedByID: &actorID,
			Passengers:  append([]domain.Passenger(nil), input.Passengers...),
			Addons:      lines,
		}
		if err := s.bookings.Create(ctx, booking); err != nil {
			return err
		}
		id = booking.ID
		return s.departures.UpdateOccupancy(ctx, departure.ID, departure.SeatsReserved, departure.Status)
	})
	if err != nil {
		return nil, err
	}
	if flipped {
		s.invalidateTrips(ctx)
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Printf("[BOOKING] created code=%s departure=%s passengers=%d total=%d", booking.BookingCode, booking.DepartureID, len(input.Passengers), booking.TotalCents)
	s.events.Emit(ctx, kafka.NewBookingEvent(kafka.EventBookingCreated, booking))
	return booking, nil
}

// priceAddons snapshots the requested addons at their current price. Every
// addon must be an active addon of the trip.
func (s *BookingService) priceAddons(ctx context.Context, tripID uuid.UUID, selections []AddonSelection) ([]domain.BookingAddon, int64, error) {
	if len(selections) == 0 {
		return nil, 0, nil
	}
	ids := make([]uuid.UUID, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.AddonID)
	}
	addons, err := s.trips.ActiveAddons(ctx, tripID, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]domain.Addon, len(addons))
	for _, a := range addons {
		byID[a.ID] = a
	}

	lines := make([]domain.BookingAddon, 0, len(selections))
	var total int64
	for _, sel := range selections {
		addon, ok := byID[sel.AddonID]
		if !ok {
			return nil, 0, domain.NotFound("addon")
		}
		qty := sel.Quantity
		if qty < 1 {
			qty = 1
		}
		lines = append(lines, domain.BookingAddon{
			AddonID:    addon.ID,
			Name:       addon.Name,
			Quantity:   qty,
			PriceCents: addon.PriceCents,
		})
		total += addon.PriceCents * int64(qty)
	}
	return lines, total, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(booking.CustomerID, policy.BookingsActOnAny) {
		return nil, domain.Forbidden("access denied")
	}
	return booking, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, actor policy.Actor, status *domain.BookingStatus, page domain.Page) ([]domain.Booking, domain.Pagination, error) {
	customerID := actor.UserID
	return s.list(ctx, repository.BookingFilter{CustomerID: &customerID, Status: status}, page)
}

func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingFilter, page domain.Page) ([]domain.Booking, domain.Pagination, error) {
	return s.list(ctx, filter, page)
}

func (s *BookingService) list(ctx context.Context, filter repository.BookingFilter, page domain.Page) ([]domain.Booking, domain.Pagination, error) {
	bookings, total, err := s.bookings.List(ctx, filter, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return bookings, page.Paginate(total), nil
}

// CancelBooking cancels the booking on behalf of its owner or a staff member
// and gives the seats back to the departure.
func (s *BookingService) CancelBooking(ctx context.Context, actor policy.Actor, id uuid.UUID, reason *string) (*domain.Booking, error) {
	var flipped bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanActOn(booking.CustomerID, policy.BookingsActOnAny) {
			return domain.Forbidden("access denied")
		}
		flipped, err = s.transition(ctx, booking, domain.BookingStatusCancelled, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.afterTransition(ctx, id, domain.BookingStatusCancelled, flipped)
}

// UpdateStatus is the staff-driven status change. Cancelling this way
// requires a reason.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason *string) (*domain.Booking, error) {
	switch status {
	case domain.BookingStatusConfirmed, domain.BookingStatusCompleted:
	case domain.BookingStatusCancelled:
		if reason == nil || strings.TrimSpace(*reason) == "" {
			return nil, domain.Validation(domain.FieldError{Field: "cancellationReason", Message: "cancellationReason is required when cancelling"})
		}
	default:
		return nil, domain.Validation(domain.FieldError{Field: "status", Message: "status must be one of CONFIRMED, CANCELLED, COMPLETED"})
	}

	var flipped bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		flipped, err = s.transition(ctx, booking, status, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.afterTransition(ctx, id, status, flipped)
}

// transition applies a status change to a locked booking. Cancelling
// releases the booking's seats and recomputes the departure status from the
// remaining occupancy. It reports whether the departure status changed.
func (s *BookingService) transition(ctx context.Context, booking *domain.Booking, to domain.BookingStatus, reason *string) (bool, error) {
	if err := booking.Transition(to); err != nil {
		return false, err
	}
	if to != domain.BookingStatusCancelled {
		return false, s.bookings.UpdateStatus(ctx, booking.ID, to, nil)
	}

	seats, err := s.bookings.CountPassengers(ctx, booking.ID)
	if err != nil {
		return false, err
	}
	departure, err := s.departures.GetForUpdate(ctx, booking.DepartureID)
	if err != nil {
		return false, err
	}
	before := departure.Status
	departure.Release(seats)
	if err := s.departures.UpdateOccupancy(ctx, departure.ID, departure.SeatsReserved, departure.Status); err != nil {
		return false, err
	}
	return departure.Status != before, s.bookings.UpdateStatus(ctx, booking.ID, to, reason)
}

func (s *BookingService) invalidateTrips(ctx context.Context) {
	if s.tripCache == nil {
		return
	}
	if err := s.tripCache.InvalidateTrips(ctx); err != nil {
		log.Printf("[CACHE] invalidate trips error: %v", err)
	}
}

func (s *BookingService) afterTransition(ctx context.Context, id uuid.UUID, to domain.BookingStatus, departureChanged bool) (*domain.Booking, error) {
	if departureChanged {
		s.invalidateTrips(ctx)
	}
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	eventType := kafka.EventBookingStatusChanged
	if to == domain.BookingStatusCancelled {
		eventType = kafka.EventBookingCancelled
	}
	log.Printf("[BOOKING] status code=%s status=%s", booking.BookingCode, booking.Status)
	s.events.Emit(ctx, kafka.NewBookingEvent(eventType, booking))
	return booking, nil
}

// Invoice renders the PDF invoice of a booking for its owner or staff.
func (s *BookingService) Invoice(ctx context.Context, actor policy.Actor, id uuid.UUID) ([]byte, *domain.Booking, error) {
	booking, err := s.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := invoice.Render(booking, s.now())
	if err != nil {
		return nil, nil, err
	}
	return pdf, booking, nil
}

// NewBookingCode builds a code from the millisecond clock in base 36 and six
// random hex digits, e.g. BKLZ8K2M1A3F9C2B.
func NewBookingCode(now time.Time) string {
	suffix := uuid.New()
	return "BK" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)+hex.EncodeToString(suffix[:3]))
}

var _ BookingUseCase = (*BookingService)(nil)
