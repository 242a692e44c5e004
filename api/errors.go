package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type errorBody struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Code      string              `json:"code,omitempty"`
	Errors    []domain.FieldError `json:"errors,omitempty"`
	Error     string              `json:"error,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

type errorMapping struct {
	kind   error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrValidation, http.StatusBadRequest, "validation_error"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrInvalidState, http.StatusBadRequest, "invalid_state"},
	{domain.ErrCapacityExceeded, http.StatusBadRequest, "capacity_exceeded"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// ErrorResponder writes errors in the common envelope. Internal details are
// only exposed when Debug is set.
type ErrorResponder struct {
	Debug bool
}

func (r ErrorResponder) Respond(c *gin.Context, err error) {
	body := errorBody{RequestID: requestID(c)}

	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			body.Message, body.Code = err.Error(), m.code
			body.Errors = domain.FieldsOf(err)
			c.AbortWithStatusJSON(m.status, body)
			return
		}
	}

	log.Printf("[HTTP] internal error request_id=%s path=%s: %v", body.RequestID, c.Request.URL.Path, err)
	body.Message, body.Code = "internal server error", "internal"
	if r.Debug {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

// bindJSON decodes and validates the request body. Every failure is
// reported as a validation error.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if fields, ok := bindingFields(err); ok {
		return domain.Validation(fields...)
	}
	if errors.Is(err, io.EOF) {
		return domain.Validation(domain.FieldError{Field: "body", Message: "request body is required"})
	}
	return domain.Validation(domain.FieldError{Field: "body", Message: err.Error()})
}

// bindingFields converts request binding failures into per-field errors.
func bindingFields(err error) ([]domain.FieldError, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]domain.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, domain.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
		}
		return fields, true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []domain.FieldError{{Field: "body", Message: "malformed JSON"}}, true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []domain.FieldError{{Field: typeErr.Field, Message: fmt.Sprintf("must be a %s", typeErr.Type.Kind())}}, true
	}
	return nil, false
}

// fieldPath drops the request struct name, e.g. "passengers[0].fullName".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email"
	case "uuid", "uuid4":
		return name + " must be a valid id"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", name, lowerFirst(fe.Param()))
	case "phone":
		return name + " must be a valid phone number"
	}
	return fmt.Sprintf("%s is invalid", name)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
