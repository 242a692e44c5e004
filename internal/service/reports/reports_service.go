package reports

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

const summaryRecent = 5

type ReportsUseCase interface {
	Summary(ctx context.Context) (*domain.Summary, error)
	Revenue(ctx context.Context, period domain.DateRange) (*domain.RevenueReport, error)
	BookingFunnel(ctx context.Context, period domain.DateRange) (*domain.BookingFunnel, error)
}

type ReportsService struct {
	reports  repository.ReportRepository
	bookings repository.BookingRepository
}

func NewReportsService(reports repository.ReportRepository, bookings repository.BookingRepository) *ReportsService {
	return &ReportsService{reports: reports, bookings: bookings}
}

func (s *ReportsService) Summary(ctx context.Context) (*domain.Summary, error) {
	summary, err := s.reports.Summary(ctx)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.bookings.List(ctx, repository.BookingFilter{}, domain.NewPage(1, summaryRecent))
	if err != nil {
		return nil, err
	}
	summary.RecentBookings = recent
	return summary, nil
}

func (s *ReportsService) Revenue(ctx context.Context, period domain.DateRange) (*domain.RevenueReport, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	return s.reports.Revenue(ctx, period)
}

func (s *ReportsService) BookingFunnel(ctx context.Context, period domain.DateRange) (*domain.BookingFunnel, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	return s.reports.BookingFunnel(ctx, period)
}

func validatePeriod(p domain.DateRange) error {
	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		return domain.Validation(domain.FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}
	return nil
}

var _ ReportsUseCase = (*ReportsService)(nil)
