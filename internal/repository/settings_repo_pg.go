package repository

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

type SettingsRepository interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Upsert(ctx context.Context, key, value string) (*domain.Setting, error)
}

type PGSettingsRepository struct {
	db DB
}

func NewSettingsRepository(db DB) SettingsRepository {
	return &PGSettingsRepository{db: db}
}

func (r *PGSettingsRepository) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := []domain.Setting{}
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *PGSettingsRepository) Upsert(ctx context.Context, key, value string) (*domain.Setting, error) {
	s := domain.Setting{Key: key, Value: value}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING updated_at`, key, value).Scan(&s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ SettingsRepository = (*PGSettingsRepository)(nil)
