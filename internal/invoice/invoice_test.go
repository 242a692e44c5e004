package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() *domain.Booking {
	child := int64(80000)
	return &domain.Booking{
		BookingCode: "BKLX2ABC123DEF",
		Status:      domain.BookingStatusPending,
		TotalCents:  290000,
		PaidCents:   100000,
		Currency:    "USD",
		Customer:    &domain.User{Name: "Amina Hassan", Email: "amina@example.com"},
		Departure: &domain.Departure{
			StartDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			BasePriceCents:  100000,
			ChildPriceCents: &child,
			Trip:            &domain.Trip{Title: "Umrah Premium"},
		},
		Passengers: []domain.Passenger{
			{FullName: "Amina Hassan"},
			{FullName: "Yusuf Hassan", IsChild: true},
		},
		Addons: []domain.BookingAddon{{Name: "Airport transfer", Quantity: 2, PriceCents: 5000}},
	}
}

func TestItems(t *testing.T) {
	items := Items(sampleBooking())
	require.Len(t, items, 3)
	assert.Equal(t, int64(100000), items[0].AmountCents)
	assert.Equal(t, int64(80000), items[1].AmountCents)
	assert.Equal(t, "Child: Yusuf Hassan", items[1].Description)
	assert.Equal(t, int64(10000), items[2].AmountCents)
}

func TestRender(t *testing.T) {
	pdf, err := Render(sampleBooking(), time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestRender_NonASCIIText(t *testing.T) {
	b := sampleBooking()
	b.Customer.Name = "José Müller"
	b.Departure.Trip.Title = "Café Tour Zürich"

	pdf, err := render(b, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)

	assert.Contains(t, string(pdf), "Jos\xe9 M\xfcller", "text is written in the font's cp1252 encoding")
	assert.Contains(t, string(pdf), "Caf\xe9 Tour Z\xfcrich")
	assert.NotContains(t, string(pdf), "Jos\xc3\xa9")
}
