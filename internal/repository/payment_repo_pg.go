package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type PaymentFilter struct {
	BookingID *uuid.UUID
	Status    *domain.PaymentStatus
	Method    *domain.PaymentMethod
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// GetForUpdate row-locks the payment for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, filter PaymentFilter, page domain.Page) ([]domain.Payment, int, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `p.id, p.booking_id, p.method, p.amount_cents, p.reference, p.status, p.paid_at, p.created_at`

func paymentDest(p *domain.Payment) []any {
	return []any{&p.ID, &p.BookingID, &p.Method, &p.AmountCents, &p.Reference, &p.Status, &p.PaidAt, &p.CreatedAt}
}

func listPayments(ctx context.Context, q Querier, cond string, args ...any) ([]domain.Payment, error) {
	rows, err := q.Query(ctx, `SELECT `+paymentColumns+` FROM payments p WHERE `+cond+` ORDER BY p.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(paymentDest(&p)...); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PGPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO payments (id, booking_id, method, amount_cents, reference, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		p.ID, p.BookingID, p.Method, p.AmountCents, p.Reference, p.Status, p.PaidAt).Scan(&p.CreatedAt)
	return mapError(err, "payment")
}

func (r *PGPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments p WHERE p.id = $1`, id)
}

func (r *PGPaymentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments p WHERE p.id = $1 FOR UPDATE`, id)
}

func (r *PGPaymentRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	if err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(paymentDest(&p)...); err != nil {
		return nil, mapError(err, "payment")
	}
	return &p, nil
}

func (r *PGPaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE payments SET status = $2, paid_at = $3 WHERE id = $1`,
		id, domain.PaymentStatusPaid, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("payment")
	}
	return nil
}

func (r *PGPaymentRepository) List(ctx context.Context, filter PaymentFilter, page domain.Page) ([]domain.Payment, int, error) {
	var w where
	if filter.BookingID != nil {
		w.add("p.booking_id = " + w.arg(*filter.BookingID))
	}
	if filter.Status != nil {
		w.add("p.status = " + w.arg(*filter.Status))
	}
	if filter.Method != nil {
		w.add("p.method = " + w.arg(*filter.Method))
	}

	db := conn(ctx, r.db)
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM payments p`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + paymentColumns + `, b.booking_code, b.total_cents, b.paid_cents, b.status, u.name, u.email
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		JOIN users u ON u.id = b.customer_id` + w.String() +
		` ORDER BY p.created_at DESC` + w.page(page.Limit, page.Offset())
	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, page.Limit)
	for rows.Next() {
		var (
			p    domain.Payment
			b    domain.Booking
			cust domain.User
		)
		scan := append(paymentDest(&p), &b.BookingCode, &b.TotalCents, &b.PaidCents, &b.Status, &cust.Name, &cust.Email)
		if err := rows.Scan(scan...); err != nil {
			return nil, 0, err
		}
		b.ID, b.Customer = p.BookingID, &cust
		p.Booking = &b
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error) {
	return listPayments(ctx, conn(ctx, r.db), `p.booking_id = $1`, bookingID)
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
