package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrips_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, time.Minute)

	mock.ExpectGet("cache:trips:version").RedisNil()
	mock.ExpectGet("cache:trips:v0:page=1").RedisNil()

	page, err := c.GetTrips(context.Background(), "page=1")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTrips_HitUsesCurrentVersion(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, time.Minute)

	cached := domain.TripPage{
		Trips:      []domain.TripSummary{{Title: "Umrah Economy", Slug: "umrah-economy"}},
		Pagination: domain.NewPage(1, 10).Paginate(1),
	}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet("cache:trips:version").SetVal("3")
	mock.ExpectGet("cache:trips:v3:page=1").SetVal(string(payload))

	page, err := c.GetTrips(context.Background(), "page=1")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "umrah-economy", page.Trips[0].Slug)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetTripsAndInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, time.Minute)

	page := &domain.TripPage{Trips: []domain.TripSummary{}}
	payload, err := json.Marshal(page)
	require.NoError(t, err)

	mock.ExpectGet("cache:trips:version").SetVal("1")
	mock.ExpectSet("cache:trips:v1:k", payload, time.Minute).SetVal("OK")
	mock.ExpectIncr("cache:trips:version").SetVal(2)

	require.NoError(t, c.SetTrips(context.Background(), "k", page))
	require.NoError(t, c.InvalidateTrips(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, time.Minute)
	window := 15 * time.Minute

	mock.ExpectIncr("ratelimit:login:10.0.0.1").SetVal(1)
	mock.ExpectExpire("ratelimit:login:10.0.0.1", window).SetVal(true)
	mock.ExpectIncr("ratelimit:login:10.0.0.1").SetVal(2)
	mock.ExpectIncr("ratelimit:login:10.0.0.1").SetVal(3)
	mock.ExpectTTL("ratelimit:login:10.0.0.1").SetVal(10 * time.Minute)

	ctx := context.Background()
	ok, _, err := c.Allow(ctx, "login:10.0.0.1", 2, window)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = c.Allow(ctx, "login:10.0.0.1", 2, window)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, retry, err := c.Allow(ctx, "login:10.0.0.1", 2, window)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10*time.Minute, retry)
	assert.NoError(t, mock.ExpectationsWereMet())
}
