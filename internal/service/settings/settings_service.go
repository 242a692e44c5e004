package settings

import (
	"context"
	"sort"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

type SettingsUseCase interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Update(ctx context.Context, values map[string]string) ([]domain.Setting, error)
}

type SettingsService struct {
	settings repository.SettingsRepository
	tx       repository.TxManager
}

func NewSettingsService(settings repository.SettingsRepository, tx repository.TxManager) *SettingsService {
	return &SettingsService{settings: settings, tx: tx}
}

func (s *SettingsService) List(ctx context.Context) ([]domain.Setting, error) {
	return s.settings.List(ctx)
}

// Update upserts every key in one transaction and returns the stored rows in
// key order.
func (s *SettingsService) Update(ctx context.Context, values map[string]string) ([]domain.Setting, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			return nil, domain.Validation(domain.FieldError{Field: "key", Message: "setting key must not be empty"})
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updated := make([]domain.Setting, 0, len(keys))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, k := range keys {
			setting, err := s.settings.Upsert(ctx, k, values[k])
			if err != nil {
				return err
			}
			updated = append(updated, *setting)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

var _ SettingsUseCase = (*SettingsService)(nil)
