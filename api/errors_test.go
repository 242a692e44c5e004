package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponder_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NotFound("booking"), http.StatusNotFound, "not_found"},
		{domain.Conflict("email already registered"), http.StatusConflict, "conflict"},
		{domain.InvalidState("cannot cancel completed booking"), http.StatusBadRequest, "invalid_state"},
		{domain.CapacityExceeded(2), http.StatusBadRequest, "capacity_exceeded"},
		{domain.InvalidAmount(500), http.StatusBadRequest, "invalid_amount"},
		{domain.Unauthorized("invalid credentials"), http.StatusUnauthorized, "unauthorized"},
		{domain.Forbidden("access denied"), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("load booking: %w", domain.NotFound("booking")), http.StatusNotFound, "not_found"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		ErrorResponder{}.Respond(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var body errorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, tc.code, body.Code)
		assert.True(t, c.IsAborted())
	}
}

func TestErrorResponder_DebugExposesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	ErrorResponder{Debug: true}.Respond(c, errors.New("pool exhausted"))

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Message)
	assert.Equal(t, "pool exhausted", body.Error)
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registerValidators()

	bind := func(raw string) error {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		c.Request.Header.Set("Content-Type", "application/json")
		var req createBookingRequest
		return bindJSON(c, &req)
	}

	err := bind("")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "request body is required", domain.FieldsOf(err)[0].Message)

	err = bind(`{"departureId":"not-a-uuid","passengers":[]}`)
	require.ErrorIs(t, err, domain.ErrValidation)

	err = bind(`{"departureId":"7d0c3a8e-1c1f-4a57-9a57-3f6f1c1b2d10","passengers":[]}`)
	require.ErrorIs(t, err, domain.ErrValidation)
	fields := domain.FieldsOf(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "passengers", fields[0].Field)
	assert.Equal(t, "passengers must contain at least 1 items", fields[0].Message)
}

func TestHealth_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{Ping: func(ctx context.Context) error { return errors.New("db down") }}, Services{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestPingAll(t *testing.T) {
	var calls []string
	check := func(name string, err error) Check {
		return Check{Name: name, Check: func(ctx context.Context) error {
			calls = append(calls, name)
			return err
		}}
	}

	require.NoError(t, PingAll(check("postgres", nil), check("redis", nil))(context.Background()))
	assert.Equal(t, []string{"postgres", "redis"}, calls)

	calls = nil
	err := PingAll(check("postgres", nil), check("kafka", errors.New("no brokers")), check("redis", nil))(context.Background())
	require.Error(t, err)
	assert.Equal(t, "kafka: no brokers", err.Error())
	assert.Equal(t, []string{"postgres", "kafka"}, calls)
}

func TestHealth_ReportsFailingDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ping := PingAll(
		Check{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		Check{Name: "kafka", Check: func(ctx context.Context) error { return errors.New("dial tcp: refused") }},
	)
	r := NewRouter(RouterConfig{Ping: ping}, Services{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "kafka: dial tcp: refused", body["error"])
}
