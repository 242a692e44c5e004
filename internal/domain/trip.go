package domain

import (
	"time"

	"github.com/google/uuid"
)

type TripCategory string

const (
	TripCategoryUmrah         TripCategory = "UMRAH"
	TripCategoryHajj          TripCategory = "HAJJ"
	TripCategoryDomestic      TripCategory = "DOMESTIC"
	TripCategoryInternational TripCategory = "INTERNATIONAL"
	TripCategoryCityTour      TripCategory = "CITY_TOUR"
	TripCategoryWeekend       TripCategory = "WEEKEND"
	TripCategoryAdventure     TripCategory = "ADVENTURE"
	TripCategoryLuxury        TripCategory = "LUXURY"
)

type TripStatus string

const (
	TripStatusDraft     TripStatus = "DRAFT"
	TripStatusPublished TripStatus = "PUBLISHED"
	TripStatusArchived  TripStatus = "ARCHIVED"
)

type Destination struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	City        *string   `json:"city,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	TripCount   int       `json:"tripCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Trip struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	Slug           string       `json:"slug"`
	DestinationID  uuid.UUID    `json:"destinationId"`
	Destination    *Destination `json:"destination,omitempty"`
	Description    *string      `json:"description,omitempty"`
	DurationDays   int          `json:"durationDays"`
	Category       TripCategory `json:"category"`
	Inclusions     *string      `json:"inclusions,omitempty"`
	Exclusions     *string      `json:"exclusions,omitempty"`
	Highlights     *string      `json:"highlights,omitempty"`
	Status         TripStatus   `json:"status"`
	DepartureCount int          `json:"departureCount,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`

	Images      []TripImage `json:"images,omitempty"`
	Itineraries []Itinerary `json:"itineraries,omitempty"`
	Addons      []Addon     `json:"addons,omitempty"`
	Departures  []Departure `json:"departures,omitempty"`
}

type TripImage struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	SortOrder int       `json:"sortOrder"`
}

type Itinerary struct {
	ID          uuid.UUID `json:"id"`
	DayNo       int       `json:"dayNo"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
}

// Addon is a priced extra offered by a trip.
type Addon struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"tripId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	IsActive    bool      `json:"isActive"`
}

// TripSummary is the public listing shape of a published trip.
type TripSummary struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Description   *string      `json:"description,omitempty"`
	DurationDays  int          `json:"durationDays"`
	Category      TripCategory `json:"category"`
	Destination   Destination  `json:"destination"`
	Image         *string      `json:"image"`
	MinPriceCents *int64       `json:"minPriceCents"`
	Currency      string       `json:"currency"`
	NextDeparture *time.Time   `json:"nextDeparture"`
}

// TripPage is one page of the public trip listing.
type TripPage struct {
	Trips      []TripSummary `json:"trips"`
	Pagination Pagination    `json:"pagination"`
}
