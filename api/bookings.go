package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var bookingStatuses = []domain.BookingStatus{
	domain.BookingStatusPending, domain.BookingStatusConfirmed, domain.BookingStatusCancelled, domain.BookingStatusCompleted,
}

type BookingHandler struct {
	service booking.BookingUseCase
	errs    ErrorResponder
}

type passengerRequest struct {
	FullName    string        `json:"fullName" binding:"required,min=2,max=150"`
	Gender      domain.Gender `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	DateOfBirth *time.Time    `json:"dateOfBirth"`
	PassportNo  *string       `json:"passportNo" binding:"omitempty,max=50"`
	Nationality *string       `json:"nationality" binding:"omitempty,max=100"`
	IsChild     bool          `json:"isChild"`
}

type addonRequest struct {
	AddonID  uuid.UUID `json:"addonId" binding:"required"`
	Quantity int       `json:"quantity" binding:"omitempty,min=1"`
}

type createBookingRequest struct {
	DepartureID uuid.UUID          `json:"departureId" binding:"required"`
	Passengers  []passengerRequest `json:"passengers" binding:"required,min=1,dive"`
	Addons      []addonRequest     `json:"addons" binding:"omitempty,dive"`
	Notes       *string            `json:"notes" binding:"omitempty,max=1000"`
}

type cancelBookingRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

func NewBookingHandler(service booking.BookingUseCase, errs ErrorResponder) *BookingHandler {
	return &BookingHandler{service: service, errs: errs}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, mw *Middleware) {
	router.Use(mw.Authenticate())
	router.POST("", h.create)
	router.GET("/my", h.listMine)
	router.GET("/:id", h.get)
	router.POST("/:id/cancel", h.cancel)
	router.GET("/:id/invoice", h.invoice)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}

	input := booking.CreateBookingInput{DepartureID: req.DepartureID, Notes: req.Notes}
	for _, p := range req.Passengers {
		input.Passengers = append(input.Passengers, domain.Passenger{
			FullName:    p.FullName,
			Gender:      p.Gender,
			DateOfBirth: p.DateOfBirth,
			PassportNo:  p.PassportNo,
			Nationality: p.Nationality,
			IsChild:     p.IsChild,
		})
	}
	for _, a := range req.Addons {
		qty := a.Quantity
		if qty == 0 {
			qty = 1
		}
		input.Addons = append(input.Addons, booking.AddonSelection{AddonID: a.AddonID, Quantity: qty})
	}

	created, err := h.service.CreateBooking(c.Request.Context(), actorOf(c), input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Booking created successfully", created)
}

func (h *BookingHandler) listMine(c *gin.Context) {
	status, err := enumQuery(c, "status", bookingStatuses...)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	page := pageQuery(c)
	bookings, pagination, err := h.service.ListMyBookings(c.Request.Context(), actorOf(c), status, page)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, bookings, pagination)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), actorOf(c), id)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			h.errs.Respond(c, err)
			return
		}
	}
	b, err := h.service.CancelBooking(c.Request.Context(), actorOf(c), id, req.Reason)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Booking cancelled successfully", b)
}

func (h *BookingHandler) invoice(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	pdf, b, err := h.service.Invoice(c.Request.Context(), actorOf(c), id)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, b.BookingCode))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
