package api

import (
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var tripCategories = []domain.TripCategory{
	domain.TripCategoryUmrah, domain.TripCategoryHajj, domain.TripCategoryDomestic, domain.TripCategoryInternational,
	domain.TripCategoryCityTour, domain.TripCategoryWeekend, domain.TripCategoryAdventure, domain.TripCategoryLuxury,
}

// TripHandler serves the public catalog.
type TripHandler struct {
	service catalog.CatalogUseCase
	errs    ErrorResponder
}

func NewTripHandler(service catalog.CatalogUseCase, errs ErrorResponder) *TripHandler {
	return &TripHandler{service: service, errs: errs}
}

func (h *TripHandler) Register(router *gin.RouterGroup, mw *Middleware) {
	router.Use(mw.OptionalAuth())
	router.GET("", h.list)
	router.GET("/:slug", h.get)
	router.GET("/:slug/departures", h.departures)
}

// tripFilter reads the listing filters shared by the public and admin views.
func tripFilter(c *gin.Context) (repository.TripFilter, error) {
	var (
		f   repository.TripFilter
		err error
	)
	if f.Category, err = enumQuery(c, "category", tripCategories...); err != nil {
		return f, err
	}
	f.Destination = stringQuery(c, "destination")
	f.Search = stringQuery(c, "search")
	if f.MinPrice, err = centsQuery(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = centsQuery(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.StartDate, err = timeQuery(c, "startDate"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *TripHandler) list(c *gin.Context) {
	filter, err := tripFilter(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	page, err := h.service.ListTrips(c.Request.Context(), filter, pageQuery(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, page.Trips, page.Pagination)
}

func (h *TripHandler) get(c *gin.Context) {
	trip, err := h.service.GetTripBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, trip)
}

// departures is mounted under the slug segment but the segment carries the
// trip id.
func (h *TripHandler) departures(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("slug"))
	if err != nil {
		h.errs.Respond(c, domain.Validation(domain.FieldError{Field: "tripId", Message: "tripId must be a valid id"}))
		return
	}
	from, err := timeQuery(c, "from")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	departures, err := h.service.ListTripDepartures(c.Request.Context(), tripID, from)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, departures)
}
