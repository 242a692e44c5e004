package repository

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

type ReportRepository interface {
	// Summary fills every field except RecentBookings.
	Summary(ctx context.Context) (*domain.Summary, error)
	Revenue(ctx context.Context, period domain.DateRange) (*domain.RevenueReport, error)
	BookingFunnel(ctx context.Context, period domain.DateRange) (*domain.BookingFunnel, error)
}

type PGReportRepository struct {
	db DB
}

func NewReportRepository(db DB) ReportRepository {
	return &PGReportRepository{db: db}
}

// settled are the statuses whose paid amount counts as revenue.
var settled = []string{string(domain.BookingStatusConfirmed), string(domain.BookingStatusCompleted)}

func (r *PGReportRepository) Summary(ctx context.Context) (*domain.Summary, error) {
	var s domain.Summary
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM bookings),
		(SELECT COALESCE(SUM(paid_cents), 0) FROM bookings WHERE status = ANY($1)),
		(SELECT COUNT(*) FROM users WHERE role = $2),
		(SELECT COUNT(*) FROM bookings WHERE status = $3),
		(SELECT COUNT(*) FROM bookings WHERE status = $4)`,
		settled, domain.RoleCustomer, domain.BookingStatusPending, domain.BookingStatusConfirmed).
		Scan(&s.TotalBookings, &s.TotalRevenueCents, &s.TotalCustomers, &s.PendingBookings, &s.ConfirmedBookings)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// within appends created/paid time bounds on column.
func within(w *where, column string, period domain.DateRange) {
	if period.From != nil {
		w.add(column + " >= " + w.arg(*period.From))
	}
	if period.To != nil {
		w.add(column + " <= " + w.arg(*period.To))
	}
}

func (r *PGReportRepository) Revenue(ctx context.Context, period domain.DateRange) (*domain.RevenueReport, error) {
	db := conn(ctx, r.db)
	report := domain.RevenueReport{
		PaymentsByMethod: []domain.MethodTotal{},
		TopTrips:         []domain.TripRevenue{},
	}

	var bw where
	bw.add("b.status = ANY(" + bw.arg(settled) + ")")
	within(&bw, "b.created_at", period)
	err := db.QueryRow(ctx, `SELECT COALESCE(SUM(b.paid_cents), 0), COALESCE(SUM(b.total_cents), 0), COUNT(*)
		FROM bookings b`+bw.String(), bw.args...).
		Scan(&report.TotalRevenueCents, &report.ExpectedRevenueCents, &report.TotalBookings)
	if err != nil {
		return nil, err
	}

	var pw where
	pw.add("p.status = " + pw.arg(domain.PaymentStatusPaid))
	within(&pw, "p.paid_at", period)
	rows, err := db.Query(ctx, `SELECT p.method, COUNT(*), COALESCE(SUM(p.amount_cents), 0)
		FROM payments p`+pw.String()+` GROUP BY p.method ORDER BY p.method`, pw.args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m domain.MethodTotal
		if err := rows.Scan(&m.Method, &m.Count, &m.AmountCents); err != nil {
			rows.Close()
			return nil, err
		}
		report.PaymentsByMethod = append(report.PaymentsByMethod, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, `SELECT t.title, ds.name, COUNT(*), COALESCE(SUM(b.paid_cents), 0) AS revenue
		FROM bookings b
		JOIN trip_departures d ON d.id = b.departure_id
		JOIN trips t ON t.id = d.trip_id
		JOIN destinations ds ON ds.id = t.destination_id`+bw.String()+`
		GROUP BY t.id, t.title, ds.name ORDER BY revenue DESC LIMIT 5`, bw.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tr domain.TripRevenue
		if err := rows.Scan(&tr.Trip, &tr.Destination, &tr.Bookings, &tr.RevenueCents); err != nil {
			return nil, err
		}
		report.TopTrips = append(report.TopTrips, tr)
	}
	return &report, rows.Err()
}

func (r *PGReportRepository) BookingFunnel(ctx context.Context, period domain.DateRange) (*domain.BookingFunnel, error) {
	db := conn(ctx, r.db)
	funnel := domain.BookingFunnel{
		BookingsByStatus:   []domain.StatusCount{},
		BookingsByCategory: []domain.CategoryCount{},
	}

	var w where
	within(&w, "b.created_at", period)

	rows, err := db.Query(ctx, `SELECT b.status, COUNT(*) FROM bookings b`+w.String()+` GROUP BY b.status ORDER BY b.status`, w.args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		funnel.BookingsByStatus = append(funnel.BookingsByStatus, sc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(ctx, `SELECT t.category, COUNT(*) FROM bookings b
		JOIN trip_departures d ON d.id = b.departure_id
		JOIN trips t ON t.id = d.trip_id`+w.String()+` GROUP BY t.category ORDER BY t.category`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		funnel.BookingsByCategory = append(funnel.BookingsByCategory, cc)
	}
	return &funnel, rows.Err()
}

var _ ReportRepository = (*PGReportRepository)(nil)
