package users

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
)

// recentBookings is how many bookings the customer detail view carries.
const recentBookings = 10

type UsersUseCase interface {
	ListUsers(ctx context.Context, filter repository.UserFilter, page domain.Page) ([]domain.User, domain.Pagination, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	ListCustomers(ctx context.Context, search string, page domain.Page) ([]domain.User, domain.Pagination, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.CustomerDetail, error)
}

type UsersService struct {
	users    repository.UserRepository
	bookings repository.BookingRepository
}

func NewUsersService(users repository.UserRepository, bookings repository.BookingRepository) *UsersService {
	return &UsersService{users: users, bookings: bookings}
}

func (s *UsersService) ListUsers(ctx context.Context, filter repository.UserFilter, page domain.Page) ([]domain.User, domain.Pagination, error) {
	users, total, err := s.users.List(ctx, filter, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return users, page.Paginate(total), nil
}

func (s *UsersService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, domain.Validation(domain.FieldError{Field: "status", Message: "status must be one of ACTIVE, INACTIVE, SUSPENDED"})
	}
	return s.users.UpdateStatus(ctx, id, status)
}

func (s *UsersService) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.Validation(domain.FieldError{Field: "role", Message: "unknown role"})
	}
	return s.users.UpdateRole(ctx, id, role)
}

func (s *UsersService) ListCustomers(ctx context.Context, search string, page domain.Page) ([]domain.User, domain.Pagination, error) {
	role := domain.RoleCustomer
	return s.ListUsers(ctx, repository.UserFilter{Role: &role, Search: search}, page)
}

// GetCustomer returns a customer with the latest bookings and the totals of
// their confirmed bookings.
func (s *UsersService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.CustomerDetail, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleCustomer {
		return nil, domain.NotFound("customer")
	}

	bookings, _, err := s.bookings.List(ctx, repository.BookingFilter{CustomerID: &id}, domain.NewPage(1, recentBookings))
	if err != nil {
		return nil, err
	}
	stats, err := s.users.CustomerStats(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.CustomerDetail{User: *user, Bookings: bookings, Stats: stats}, nil
}

var _ UsersUseCase = (*UsersService)(nil)
