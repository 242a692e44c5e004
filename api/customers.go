package api

import (
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/service/users"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	service users.UsersUseCase
	errs    ErrorResponder
}

func NewCustomerHandler(service users.UsersUseCase, errs ErrorResponder) *CustomerHandler {
	return &CustomerHandler{service: service, errs: errs}
}

func (h *CustomerHandler) Register(router *gin.RouterGroup, mw *Middleware) {
	router.Use(mw.Authenticate(), mw.RequireAction(policy.CustomersRead))
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *CustomerHandler) list(c *gin.Context) {
	customers, pagination, err := h.service.ListCustomers(c.Request.Context(), stringQuery(c, "search"), pageQuery(c))
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondPage(c, customers, pagination)
}

func (h *CustomerHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	detail, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, detail)
}
