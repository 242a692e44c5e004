package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
)

type CatalogUseCase interface {
	ListTrips(ctx context.Context, filter repository.TripFilter, page domain.Page) (*domain.TripPage, error)
	GetTripBySlug(ctx context.Context, slug string) (*domain.Trip, error)
	ListTripDepartures(ctx context.Context, tripID uuid.UUID, from *time.Time) ([]domain.Departure, error)

	ListAllTrips(ctx context.Context, filter repository.TripFilter, page domain.Page) ([]domain.Trip, domain.Pagination, error)
	CreateTrip(ctx context.Context, input TripInput) (*domain.Trip, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, patch TripPatch) (*domain.Trip, error)
	DeleteTrip(ctx context.Context, id uuid.UUID) error

	ListDepartures(ctx context.Context, filter repository.DepartureFilter, page domain.Page) ([]domain.Departure, domain.Pagination, error)
	CreateDeparture(ctx context.Context, input DepartureInput) (*domain.Departure, error)
	UpdateDeparture(ctx context.Context, id uuid.UUID, patch DeparturePatch) (*domain.Departure, error)
	DeleteDeparture(ctx context.Context, id uuid.UUID) error

	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	CreateDestination(ctx context.Context, input DestinationInput) (*domain.Destination, error)
}

type Cache interface {
	GetTrips(ctx context.Context, filterKey string) (*domain.TripPage, error)
	SetTrips(ctx context.Context, filterKey string, page *domain.TripPage) error
	InvalidateTrips(ctx context.Context) error
}

type TripInput struct {
	Title         string
	DestinationID uuid.UUID
	Description   *string
	DurationDays  int
	Category      domain.TripCategory
	Inclusions    *string
	Exclusions    *string
	Highlights    *string
	Status        domain.TripStatus
	Images        []domain.TripImage
	Itineraries   []domain.Itinerary
	Addons        []domain.Addon
}

// TripPatch carries only the fields to change.
type TripPatch struct {
	Title         *string
	DestinationID *uuid.UUID
	Description   *string
	DurationDays  *int
	Category      *domain.TripCategory
	Inclusions    *string
	Exclusions    *string
	Highlights    *string
	Status        *domain.TripStatus
}

type DepartureInput struct {
	TripID          uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	Capacity        int
	BasePriceCents  int64
	ChildPriceCents *int64
	Currency        string
}

type DeparturePatch struct {
	StartDate       *time.Time
	EndDate         *time.Time
	Capacity        *int
	BasePriceCents  *int64
	ChildPriceCents *int64
	Currency        *string
	Status          *domain.DepartureStatus
}

type DestinationInput struct {
	Name        string
	Country     string
	City        *string
	Description *string
	ImageURL    *string
}

type CatalogService struct {
	trips        repository.TripRepository
	departures   repository.DepartureRepository
	destinations repository.DestinationRepository
	tx           repository.TxManager
	cache        Cache
	now          func() time.Time
}

func NewCatalogService(
	trips repository.TripRepository,
	departures repository.DepartureRepository,
	destinations repository.DestinationRepository,
	tx repository.TxManager,
	cache Cache,
) *CatalogService {
	return &CatalogService{
		trips:        trips,
		departures:   departures,
		destinations: destinations,
		tx:           tx,
		cache:        cache,
		now:          time.Now,
	}
}

// ListTrips serves the public listing, from cache when possible. Only
// published trips are ever returned.
func (s *CatalogService) ListTrips(ctx context.Context, filter repository.TripFilter, page domain.Page) (*domain.TripPage, error) {
	filter.Status = nil
	key := cacheKey(filter, page)
	if s.cache != nil {
		cached, err := s.cache.GetTrips(ctx, key)
		if err != nil {
			log.Printf("[CACHE] get trips error: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	trips, total, err := s.trips.ListPublished(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	result := &domain.TripPage{Trips: trips, Pagination: page.Paginate(total)}

	if s.cache != nil {
		if err := s.cache.SetTrips(ctx, key, result); err != nil {
			log.Printf("[CACHE] set trips error: %v", err)
		}
	}
	return result, nil
}

func cacheKey(f repository.TripFilter, page domain.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "page=%d&limit=%d", page.Page, page.Limit)
	if f.Category != nil {
		fmt.Fprintf(&b, "&category=%s", *f.Category)
	}
	if d := strings.ToLower(strings.TrimSpace(f.Destination)); d != "" {
		fmt.Fprintf(&b, "&destination=%s", d)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		fmt.Fprintf(&b, "&search=%s", q)
	}
	if f.MinPrice != nil {
		fmt.Fprintf(&b, "&min=%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, "&max=%d", *f.MaxPrice)
	}
	if f.StartDate != nil {
		fmt.Fprintf(&b, "&from=%s", f.StartDate.UTC().Format(time.RFC3339))
	}
	return b.String()
}

func (s *CatalogService) GetTripBySlug(ctx context.Context, slug string) (*domain.Trip, error) {
	return s.trips.GetPublishedBySlug(ctx, slug, s.now().UTC())
}

func (s *CatalogService) ListTripDepartures(ctx context.Context, tripID uuid.UUID, from *time.Time) ([]domain.Departure, error) {
	start := s.now().UTC()
	if from != nil {
		start = *from
	}
	return s.departures.ListAvailableByTrip(ctx, tripID, start)
}

func (s *CatalogService) ListAllTrips(ctx context.Context, filter repository.TripFilter, page domain.Page) ([]domain.Trip, domain.Pagination, error) {
	trips, total, err := s.trips.List(ctx, filter, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return trips, page.Paginate(total), nil
}

func (s *CatalogService) CreateTrip(ctx context.Context, input TripInput) (*domain.Trip, error) {
	slug := Slugify(input.Title)
	if slug == "" {
		return nil, domain.Validation(domain.FieldError{Field: "title", Message: "title must contain letters or digits"})
	}
	status := input.Status
	if status == "" {
		status = domain.TripStatusDraft
	}

	trip := &domain.Trip{
		Title:         strings.TrimSpace(input.Title),
		Slug:          slug,
		DestinationID: input.DestinationID,
		Description:   input.Description,
		DurationDays:  input.DurationDays,
		Category:      input.Category,
		Inclusions:    input.Inclusions,
		Exclusions:    input.Exclusions,
		Highlights:    input.Highlights,
		Status:        status,
		Images:        input.Images,
		Itineraries:   input.Itineraries,
		Addons:        input.Addons,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		dest, err := s.destinations.GetByID(ctx, input.DestinationID)
		if err != nil {
			return err
		}
		trip.Destination = dest
		if err := s.trips.Create(ctx, trip); err != nil {
			return slugConflict(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return trip, nil
}

// slugConflict rewords a duplicate slug as a duplicate title.
func slugConflict(err error) error {
	if errors.Is(err, domain.ErrConflict) {
		return domain.Conflict("trip with similar title already exists")
	}
	return err
}

func (s *CatalogService) UpdateTrip(ctx context.Context, id uuid.UUID, patch TripPatch) (*domain.Trip, error) {
	var trip *domain.Trip
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		trip, err = s.trips.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			slug := Slugify(*patch.Title)
			if slug == "" {
				return domain.Validation(domain.FieldError{Field: "title", Message: "title must contain letters or digits"})
			}
			trip.Title, trip.Slug = strings.TrimSpace(*patch.Title), slug
		}
		if patch.DestinationID != nil && *patch.DestinationID != trip.DestinationID {
			dest, err := s.destinations.GetByID(ctx, *patch.DestinationID)
			if err != nil {
				return err
			}
			trip.DestinationID, trip.Destination = dest.ID, dest
		}
		if patch.Description != nil {
			trip.Description = patch.Description
		}
		if patch.DurationDays != nil {
			trip.DurationDays = *patch.DurationDays
		}
		if patch.Category != nil {
			trip.Category = *patch.Category
		}
		if patch.Inclusions != nil {
			trip.Inclusions = patch.Inclusions
		}
		if patch.Exclusions != nil {
			trip.Exclusions = patch.Exclusions
		}
		if patch.Highlights != nil {
			trip.Highlights = patch.Highlights
		}
		if patch.Status != nil {
			trip.Status = *patch.Status
		}
		return slugConflict(s.trips.Update(ctx, trip))
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return trip, nil
}

func (s *CatalogService) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.trips.CountBookings(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InvalidState("cannot delete trip with existing bookings")
		}
		return s.trips.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListDepartures(ctx context.Context, filter repository.DepartureFilter, page domain.Page) ([]domain.Departure, domain.Pagination, error) {
	departures, total, err := s.departures.List(ctx, filter, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return departures, page.Paginate(total), nil
}

func (s *CatalogService) CreateDeparture(ctx context.Context, input DepartureInput) (*domain.Departure, error) {
	if !input.EndDate.After(input.StartDate) {
		return nil, domain.Validation(domain.FieldError{Field: "endDate", Message: "endDate must be after startDate"})
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}
	d := &domain.Departure{
		TripID:          input.TripID,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Capacity:        input.Capacity,
		BasePriceCents:  input.BasePriceCents,
		ChildPriceCents: input.ChildPriceCents,
		Currency:        currency,
		Status:          domain.DepartureStatusAvailable,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		trip, err := s.trips.GetByID(ctx, input.TripID)
		if err != nil {
			return err
		}
		d.Trip = trip
		return s.departures.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// UpdateDeparture locks the departure so a concurrent booking cannot slip in
// between the capacity check and the write.
func (s *CatalogService) UpdateDeparture(ctx context.Context, id uuid.UUID, patch DeparturePatch) (*domain.Departure, error) {
	var d *domain.Departure
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.departures.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if patch.StartDate != nil {
			d.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			d.EndDate = *patch.EndDate
		}
		if !d.EndDate.After(d.StartDate) {
			return domain.Validation(domain.FieldError{Field: "endDate", Message: "endDate must be after startDate"})
		}
		if patch.Capacity != nil {
			if *patch.Capacity < d.SeatsReserved {
				return domain.InvalidState("capacity cannot be lower than %d reserved seats", d.SeatsReserved)
			}
			d.Capacity = *patch.Capacity
		}
		if patch.BasePriceCents != nil {
			d.BasePriceCents = *patch.BasePriceCents
		}
		if patch.ChildPriceCents != nil {
			d.ChildPriceCents = patch.ChildPriceCents
		}
		if patch.Currency != nil {
			d.Currency = strings.ToUpper(*patch.Currency)
		}
		if patch.Status != nil {
			d.Status = *patch.Status
			if d.Status == domain.DepartureStatusFull {
				d.Status = domain.DepartureStatusAvailable
			}
		}
		d.RefreshStatus()
		return s.departures.Update(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

func (s *CatalogService) DeleteDeparture(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.departures.CountBookings(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InvalidState("cannot delete departure with existing bookings")
		}
		return s.departures.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	return s.destinations.List(ctx)
}

func (s *CatalogService) CreateDestination(ctx context.Context, input DestinationInput) (*domain.Destination, error) {
	d := &domain.Destination{
		Name:        strings.TrimSpace(input.Name),
		Country:     strings.TrimSpace(input.Country),
		City:        input.City,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := s.destinations.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTrips(ctx); err != nil {
		log.Printf("[CACHE] invalidate trips error: %v", err)
	}
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^a-z0-9_\-]+`)
	dashes     = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases text, joins words with dashes and drops everything
// that is not a letter, digit, underscore or dash.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = whitespace.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var _ CatalogUseCase = (*CatalogService)(nil)
