package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type UserFilter struct {
	Role   *domain.Role
	Status *domain.UserStatus
	// Search matches name, email or phone.
	Search string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter, page domain.Page) ([]domain.User, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	CustomerStats(ctx context.Context, id uuid.UUID) (domain.CustomerStats, error)
}

type PGUserRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `u.id, u.name, u.email, u.phone, u.password_hash, u.role, u.status,
	u.nationality, u.passport_no, u.date_of_birth, u.created_at, u.updated_at`

func scanUser(row rowScanner, extra ...any) (*domain.User, error) {
	var u domain.User
	dest := []any{&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status,
		&u.Nationality, &u.PassportNo, &u.DateOfBirth, &u.CreatedAt, &u.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO users (id, name, email, phone, password_hash, role, status, nationality, passport_no, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, user.Role, user.Status,
		user.Nationality, user.PassportNo, user.DateOfBirth).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	return mapError(err, "user")
}

func (r *PGUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE lower(u.email) = lower($1)`, email))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *PGUserRepository) List(ctx context.Context, filter UserFilter, page domain.Page) ([]domain.User, int, error) {
	var w where
	if filter.Role != nil {
		w.add("u.role = " + w.arg(*filter.Role))
	}
	if filter.Status != nil {
		w.add("u.status = " + w.arg(*filter.Status))
	}
	if filter.Search != "" {
		p := w.arg(likePattern(filter.Search))
		w.add("(u.name ILIKE " + p + " OR u.email ILIKE " + p + " OR u.phone ILIKE " + p + ")")
	}

	db := conn(ctx, r.db)
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + `, (SELECT COUNT(*) FROM bookings b WHERE b.customer_id = u.id)
		FROM users u` + w.String() + ` ORDER BY u.created_at DESC` + w.page(page.Limit, page.Offset())
	rows, err := db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, page.Limit)
	for rows.Next() {
		var count int
		u, err := scanUser(rows, &count)
		if err != nil {
			return nil, 0, err
		}
		u.BookingCount = count
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *PGUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	return r.update(ctx, `UPDATE users u SET status = $2, updated_at = $3 WHERE u.id = $1 RETURNING `+userColumns, id, status)
}

func (r *PGUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	return r.update(ctx, `UPDATE users u SET role = $2, updated_at = $3 WHERE u.id = $1 RETURNING `+userColumns, id, role)
}

func (r *PGUserRepository) update(ctx context.Context, query string, id uuid.UUID, value any) (*domain.User, error) {
	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, id, value, time.Now().UTC()))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

// CustomerStats counts confirmed bookings and their total value.
func (r *PGUserRepository) CustomerStats(ctx context.Context, id uuid.UUID) (domain.CustomerStats, error) {
	var stats domain.CustomerStats
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total_cents), 0)
		FROM bookings WHERE customer_id = $1 AND status = $2`, id, domain.BookingStatusConfirmed).
		Scan(&stats.TotalBookings, &stats.TotalSpentCents)
	return stats, err
}

var _ UserRepository = (*PGUserRepository)(nil)
