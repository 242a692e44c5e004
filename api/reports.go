package api

import (
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/service/reports"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service reports.ReportsUseCase
	errs    ErrorResponder
}

func NewReportHandler(service reports.ReportsUseCase, errs ErrorResponder) *ReportHandler {
	return &ReportHandler{service: service, errs: errs}
}

func (h *ReportHandler) Register(router *gin.RouterGroup, mw *Middleware) {
	router.Use(mw.Authenticate(), mw.RequireAction(policy.ReportsRead))
	router.GET("/summary", h.summary)
	router.GET("/revenue", h.revenue)
	router.GET("/bookings", h.bookings)
}

func (h *ReportHandler) summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

func (h *ReportHandler) revenue(c *gin.Context) {
	period, err := dateRange(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	report, err := h.service.Revenue(c.Request.Context(), period)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

func (h *ReportHandler) bookings(c *gin.Context) {
	period, err := dateRange(c)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	funnel, err := h.service.BookingFunnel(c.Request.Context(), period)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, funnel)
}
