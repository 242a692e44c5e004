package api

import (
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	paymentMethods = []domain.PaymentMethod{
		domain.PaymentMethodCash, domain.PaymentMethodEVC, domain.PaymentMethodZaad,
		domain.PaymentMethodSahal, domain.PaymentMethodCard, domain.PaymentMethodBankTransfer,
	}
	paymentStatuses = []domain.PaymentStatus{
		domain.PaymentStatusInitiated, domain.PaymentStatusPaid, domain.PaymentStatusFailed, domain.PaymentStatusRefunded,
	}
)

type PaymentHandler struct {
	service payment.PaymentUseCase
	errs    ErrorResponder
}

type createPaymentRequest struct {
	BookingID   uuid.UUID            `json:"bookingId" binding:"required"`
	Method      domain.PaymentMethod `json:"method" binding:"required,oneof=CASH EVC ZAAD SAHAL CARD BANK_TRANSFER"`
	AmountCents int64                `json:"amountCents" binding:"required,gt=0"`
	Reference   *string              `json:"reference" binding:"omitempty,max=100"`
}

func NewPaymentHandler(service payment.PaymentUseCase, errs ErrorResponder) *PaymentHandler {
	return &PaymentHandler{service: service, errs: errs}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup, mw *Middleware) {
	router.Use(mw.Authenticate())
	router.POST("", h.create)
	router.GET("", mw.RequireAction(policy.PaymentsListAll), h.list)
	router.PUT("/:id/confirm", mw.RequireAction(policy.PaymentsConfirm), h.confirm)
}

func (h *PaymentHandler) create(c *gin.Context) {
	var req createPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	p, err := h.service.CreatePayment(c.Request.Context(), actorOf(c), payment.CreatePaymentInput{
		BookingID:   req.BookingID,
		Method:      req.Method,
		AmountCents: req.AmountCents,
		Reference:   req.Reference,
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Payment recorded successfully", p)
}

func (h *PaymentHandler) list(c *gin.Context) {
	var (
		filter repository.PaymentFilter
		err    error
	)
	if filter.Status, err = enumQuery(c, "status", paymentStatuses...); err != nil {
		h.errs.Respond(c, err)
		return
	}
	if filter.Method, err = enumQuery(c, "method", paymentMethods...); err != nil {
		h.errs.Respond(c, err)
		return
	}
	if filter.BookingID, err = idQuery(c, "bookingId"); err != nil {
		h.errs.Respond(c, err)
		return
	}
	payments, pagination, err := h.service.ListPayments(c.Request.Context(), filter, pageQuery(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, payments, pagination)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	p, err := h.service.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Payment confirmed successfully", p)
}
