package domain

import "time"

// DateRange bounds a report. A nil side is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type CustomerStats struct {
	TotalBookings   int   `json:"totalBookings"`
	TotalSpentCents int64 `json:"totalSpentCents"`
}

// CustomerDetail is a customer profile with their latest bookings.
type CustomerDetail struct {
	User
	Bookings []Booking     `json:"bookings"`
	Stats    CustomerStats `json:"stats"`
}

type Summary struct {
	TotalBookings     int       `json:"totalBookings"`
	TotalRevenueCents int64     `json:"totalRevenueCents"`
	TotalCustomers    int       `json:"totalCustomers"`
	PendingBookings   int       `json:"pendingBookings"`
	ConfirmedBookings int       `json:"confirmedBookings"`
	RecentBookings    []Booking `json:"recentBookings"`
}

type MethodTotal struct {
	Method      PaymentMethod `json:"method"`
	Count       int           `json:"count"`
	AmountCents int64         `json:"amountCents"`
}

type TripRevenue struct {
	Trip         string `json:"trip"`
	Destination  string `json:"destination"`
	Bookings     int    `json:"bookings"`
	RevenueCents int64  `json:"revenueCents"`
}

type RevenueReport struct {
	TotalRevenueCents    int64         `json:"totalRevenueCents"`
	ExpectedRevenueCents int64         `json:"expectedRevenueCents"`
	TotalBookings        int           `json:"totalBookings"`
	PaymentsByMethod     []MethodTotal `json:"paymentsByMethod"`
	TopTrips             []TripRevenue `json:"topTrips"`
}

type StatusCount struct {
	Status BookingStatus `json:"status"`
	Count  int           `json:"count"`
}

type CategoryCount struct {
	Category TripCategory `json:"category"`
	Count    int          `json:"count"`
}

type BookingFunnel struct {
	BookingsByStatus   []StatusCount   `json:"bookingsByStatus"`
	BookingsByCategory []CategoryCount `json:"bookingsByCategory"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
