package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/catalog"
	"github.com/Domenick1991/travelbooking/internal/service/settings"
	"github.com/Domenick1991/travelbooking/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	tripStatuses      = []domain.TripStatus{domain.TripStatusDraft, domain.TripStatusPublished, domain.TripStatusArchived}
	departureStatuses = []domain.DepartureStatus{domain.DepartureStatusAvailable, domain.DepartureStatusFull, domain.DepartureStatusCancelled}
	roles             = []domain.Role{domain.RoleCustomer, domain.RoleAgent, domain.RoleFinance, domain.RoleAdmin, domain.RoleSuperAdmin}
	userStatuses      = []domain.UserStatus{domain.UserStatusActive, domain.UserStatusInactive, domain.UserStatusSuspended}
)

// AdminHandler serves the back-office routes. Every route is guarded by an
// action from the policy table.
type AdminHandler struct {
	catalog  catalog.CatalogUseCase
	bookings booking.BookingUseCase
	users    users.UsersUseCase
	settings settings.SettingsUseCase
	errs     ErrorResponder
}

func NewAdminHandler(
	catalog catalog.CatalogUseCase,
	bookings booking.BookingUseCase,
	users users.UsersUseCase,
	settings settings.SettingsUseCase,
	errs ErrorResponder,
) *AdminHandler {
	return &AdminHandler{catalog: catalog, bookings: bookings, users: users, settings: settings, errs: errs}
}

func (h *AdminHandler) Register(router *gin.RouterGroup, mw *Middleware) {
	router.Use(mw.Authenticate())
	can := mw.RequireAction

	router.GET("/trips", can(policy.TripsListAll), h.listTrips)
	router.POST("/trips", can(policy.TripsManage), h.createTrip)
	router.PUT("/trips/:id", can(policy.TripsManage), h.updateTrip)
	router.DELETE("/trips/:id", can(policy.TripsManage), h.deleteTrip)

	router.GET("/departures", can(policy.DeparturesListAll), h.listDepartures)
	router.POST("/departures", can(policy.DeparturesManage), h.createDeparture)
	router.PUT("/departures/:id", can(policy.DeparturesManage), h.updateDeparture)
	router.DELETE("/departures/:id", can(policy.DeparturesManage), h.deleteDeparture)

	router.GET("/bookings", can(policy.BookingsListAll), h.listBookings)
	router.PUT("/bookings/:id/status", can(policy.BookingsUpdateStatus), h.updateBookingStatus)

	router.GET("/destinations", can(policy.DestinationsManage), h.listDestinations)
	router.POST("/destinations", can(policy.DestinationsManage), h.createDestination)

	router.GET("/users", can(policy.UsersManage), h.listUsers)
	router.PUT("/users/:id/status", can(policy.UsersManage), h.updateUserStatus)
	router.PUT("/users/:id/role", can(policy.UsersManage), h.updateUserRole)

	router.GET("/settings", can(policy.SettingsManage), h.listSettings)
	router.PUT("/settings", can(policy.SettingsManage), h.updateSettings)
}

// trips

type tripImageRequest struct {
	URL       string `json:"url" binding:"required,url"`
	SortOrder int    `json:"sortOrder" binding:"gte=0"`
}

type itineraryRequest struct {
	DayNo       int     `json:"dayNo" binding:"required,min=1"`
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description"`
}

type tripAddonRequest struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"priceCents" binding:"required,gt=0"`
	IsActive    *bool   `json:"isActive"`
}

type createTripRequest struct {
	Title         string              `json:"title" binding:"required,min=5,max=200"`
	DestinationID uuid.UUID           `json:"destinationId" binding:"required"`
	Description   *string             `json:"description"`
	DurationDays  int                 `json:"durationDays" binding:"required,min=1"`
	Category      domain.TripCategory `json:"category" binding:"required,oneof=UMRAH HAJJ DOMESTIC INTERNATIONAL CITY_TOUR WEEKEND ADVENTURE LUXURY"`
	Inclusions    *string             `json:"inclusions"`
	Exclusions    *string             `json:"exclusions"`
	Highlights    *string             `json:"highlights"`
	Status        domain.TripStatus   `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
	Images        []tripImageRequest  `json:"images" binding:"omitempty,dive"`
	Itineraries   []itineraryRequest  `json:"itineraries" binding:"omitempty,dive"`
	Addons        []tripAddonRequest  `json:"addons" binding:"omitempty,dive"`
}

type updateTripRequest struct {
	Title         *string              `json:"title" binding:"omitempty,min=5,max=200"`
	DestinationID *uuid.UUID           `json:"destinationId"`
	Description   *string              `json:"description"`
	DurationDays  *int                 `json:"durationDays" binding:"omitempty,min=1"`
	Category      *domain.TripCategory `json:"category" binding:"omitempty,oneof=UMRAH HAJJ DOMESTIC INTERNATIONAL CITY_TOUR WEEKEND ADVENTURE LUXURY"`
	Inclusions    *string              `json:"inclusions"`
	Exclusions    *string              `json:"exclusions"`
	Highlights    *string              `json:"highlights"`
	Status        *domain.TripStatus   `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

func (h *AdminHandler) listTrips(c *gin.Context) {
	filter, err := tripFilter(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if filter.Status, err = enumQuery(c, "status", tripStatuses...); err != nil {
		h.errs.Respond(c, err)
		return
	}
	trips, pagination, err := h.catalog.ListAllTrips(c.Request.Context(), filter, pageQuery(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, trips, pagination)
}

func (h *AdminHandler) createTrip(c *gin.Context) {
	var req createTripRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	input := catalog.TripInput{
		Title:         req.Title,
		DestinationID: req.DestinationID,
		Description:   req.Description,
		DurationDays:  req.DurationDays,
		Category:      req.Category,
		Inclusions:    req.Inclusions,
		Exclusions:    req.Exclusions,
		Highlights:    req.Highlights,
		Status:        req.Status,
	}
	for _, img := range req.Images {
		input.Images = append(input.Images, domain.TripImage{URL: img.URL, SortOrder: img.SortOrder})
	}
	for _, it := range req.Itineraries {
		input.Itineraries = append(input.Itineraries, domain.Itinerary{DayNo: it.DayNo, Title: it.Title, Description: it.Description})
	}
	for _, a := range req.Addons {
		active := a.IsActive == nil || *a.IsActive
		input.Addons = append(input.Addons, domain.Addon{Name: a.Name, Description: a.Description, PriceCents: a.PriceCents, IsActive: active})
	}

	trip, err := h.catalog.CreateTrip(c.Request.Context(), input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Trip created successfully", trip)
}

func (h *AdminHandler) updateTrip(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	var req updateTripRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	trip, err := h.catalog.UpdateTrip(c.Request.Context(), id, catalog.TripPatch{
		Title:         req.Title,
		DestinationID: req.DestinationID,
		Description:   req.Description,
		DurationDays:  req.DurationDays,
		Category:      req.Category,
		Inclusions:    req.Inclusions,
		Exclusions:    req.Exclusions,
		Highlights:    req.Highlights,
		Status:        req.Status,
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Trip updated successfully", trip)
}

func (h *AdminHandler) deleteTrip(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if err := h.catalog.DeleteTrip(c.Request.Context(), id); err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Trip deleted successfully", nil)
}

// departures

type createDepartureRequest struct {
	TripID          uuid.UUID `json:"tripId" binding:"required"`
	StartDate       time.Time `json:"startDate" binding:"required"`
	EndDate         time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
	Capacity        int       `json:"capacity" binding:"required,min=1"`
	BasePriceCents  int64     `json:"basePriceCents" binding:"required,gt=0"`
	ChildPriceCents *int64    `json:"childPriceCents" binding:"omitempty,gt=0"`
	Currency        string    `json:"currency" binding:"omitempty,len=3"`
}

type updateDepartureRequest struct {
	StartDate       *time.Time              `json:"startDate"`
	EndDate         *time.Time              `json:"endDate"`
	Capacity        *int                    `json:"capacity" binding:"omitempty,min=1"`
	BasePriceCents  *int64                  `json:"basePriceCents" binding:"omitempty,gt=0"`
	ChildPriceCents *int64                  `json:"childPriceCents" binding:"omitempty,gt=0"`
	Currency        *string                 `json:"currency" binding:"omitempty,len=3"`
	Status          *domain.DepartureStatus `json:"status" binding:"omitempty,oneof=AVAILABLE FULL CANCELLED"`
}

func (h *AdminHandler) listDepartures(c *gin.Context) {
	var (
		filter repository.DepartureFilter
		err    error
	)
	if filter.TripID, err = idQuery(c, "tripId"); err != nil {
		h.errs.Respond(c, err)
		return
	}
	if filter.Status, err = enumQuery(c, "status", departureStatuses...); err != nil {
		h.errs.Respond(c, err)
		return
	}
	departures, pagination, err := h.catalog.ListDepartures(c.Request.Context(), filter, pageQuery(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, departures, pagination)
}

func (h *AdminHandler) createDeparture(c *gin.Context) {
	var req createDepartureRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	d, err := h.catalog.CreateDeparture(c.Request.Context(), catalog.DepartureInput{
		TripID:          req.TripID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Capacity:        req.Capacity,
		BasePriceCents:  req.BasePriceCents,
		ChildPriceCents: req.ChildPriceCents,
		Currency:        req.Currency,
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Departure created successfully", d)
}

func (h *AdminHandler) updateDeparture(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	var req updateDepartureRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	d, err := h.catalog.UpdateDeparture(c.Request.Context(), id, catalog.DeparturePatch{
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Capacity:        req.Capacity,
		BasePriceCents:  req.BasePriceCents,
		ChildPriceCents: req.ChildPriceCents,
		Currency:        req.Currency,
		Status:          req.Status,
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Departure updated successfully", d)
}

func (h *AdminHandler) deleteDeparture(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	if err := h.catalog.DeleteDeparture(c.Request.Context(), id); err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Departure deleted successfully", nil)
}

// bookings

type updateBookingStatusRequest struct {
	Status             domain.BookingStatus `json:"status" binding:"required,oneof=CONFIRMED CANCELLED COMPLETED"`
	CancellationReason *string              `json:"cancellationReason" binding:"omitempty,max=500"`
}

func (h *AdminHandler) listBookings(c *gin.Context) {
	var (
		filter repository.BookingFilter
		err    error
	)
	if filter.Status, err = enumQuery(c, "status", bookingStatuses...); err != nil {
		h.errs.Respond(c, err)
		return
	}
	if filter.CustomerID, err = idQuery(c, "customerId"); err != nil {
		h.errs.Respond(c, err)
		return
	}
	filter.Search = stringQuery(c, "search")
	bookings, pagination, err := h.bookings.ListBookings(c.Request.Context(), filter, pageQuery(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, bookings, pagination)
}

func (h *AdminHandler) updateBookingStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	var req updateBookingStatusRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	b, err := h.bookings.UpdateStatus(c.Request.Context(), id, req.Status, req.CancellationReason)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Booking status updated successfully", b)
}

// destinations

type createDestinationRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Country     string  `json:"country" binding:"required,min=2,max=100"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,url"`
}

func (h *AdminHandler) listDestinations(c *gin.Context) {
	destinations, err := h.catalog.ListDestinations(c.Request.Context())
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, destinations)
}

func (h *AdminHandler) createDestination(c *gin.Context) {
	var req createDestinationRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	d, err := h.catalog.CreateDestination(c.Request.Context(), catalog.DestinationInput{
		Name:        req.Name,
		Country:     req.Country,
		City:        req.City,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Destination created successfully", d)
}

// users

type userStatusRequest struct {
	Status domain.UserStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE SUSPENDED"`
}

type userRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=CUSTOMER AGENT FINANCE ADMIN SUPER_ADMIN"`
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	var (
		filter repository.UserFilter
		err    error
	)
	if filter.Role, err = enumQuery(c, "role", roles...); err != nil {
		h.errs.Respond(c, err)
		return
	}
	if filter.Status, err = enumQuery(c, "status", userStatuses...); err != nil {
		h.errs.Respond(c, err)
		return
	}
	filter.Search = stringQuery(c, "search")
	list, pagination, err := h.users.ListUsers(c.Request.Context(), filter, pageQuery(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, list, pagination)
}

func (h *AdminHandler) updateUserStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	var req userStatusRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	user, err := h.users.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "User status updated successfully", user)
}

func (h *AdminHandler) updateUserRole(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	var req userRoleRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	user, err := h.users.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "User role updated successfully", user)
}

// settings

type updateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1"`
}

func (h *AdminHandler) listSettings(c *gin.Context) {
	list, err := h.settings.List(c.Request.Context())
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

func (h *AdminHandler) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	list, err := h.settings.Update(c.Request.Context(), req.Settings)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Settings updated successfully", list)
}
