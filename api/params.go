package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.Validation(domain.FieldError{Field: name, Message: name + " must be a valid id"})
	}
	return id, nil
}

func pageQuery(c *gin.Context) domain.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domain.NewPage(page, limit)
}

func stringQuery(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Query(name))
}

func idQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := stringQuery(c, name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.Validation(domain.FieldError{Field: name, Message: name + " must be a valid id"})
	}
	return &id, nil
}

func centsQuery(c *gin.Context, name string) (*int64, error) {
	raw := stringQuery(c, name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, domain.Validation(domain.FieldError{Field: name, Message: name + " must be a non-negative amount in cents"})
	}
	return &v, nil
}

// timeQuery accepts a calendar date or an RFC 3339 timestamp.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := stringQuery(c, name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Validation(domain.FieldError{Field: name, Message: name + " must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
}

// enumQuery returns nil for an empty parameter and a validation error
// when the value is not one of allowed.
func enumQuery[T ~string](c *gin.Context, name string, allowed ...T) (*T, error) {
	raw := stringQuery(c, name)
	if raw == "" {
		return nil, nil
	}
	v := T(strings.ToUpper(raw))
	for _, a := range allowed {
		if a == v {
			return &v, nil
		}
	}
	opts := make([]string, len(allowed))
	for i, a := range allowed {
		opts[i] = string(a)
	}
	return nil, domain.Validation(domain.FieldError{Field: name, Message: name + " must be one of " + strings.Join(opts, ", ")})
}

// dateRange reads startDate/endDate. A bare endDate date covers the whole day.
func dateRange(c *gin.Context) (domain.DateRange, error) {
	from, err := timeQuery(c, "startDate")
	if err != nil {
		return domain.DateRange{}, err
	}
	to, err := timeQuery(c, "endDate")
	if err != nil {
		return domain.DateRange{}, err
	}
	if to != nil && len(stringQuery(c, "endDate")) == len("2006-01-02") {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return domain.DateRange{From: from, To: to}, nil
}
