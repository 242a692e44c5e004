package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	// GetByHashForUpdate locks the stored token until the surrounding
	// transaction ends.
	GetByHashForUpdate(ctx context.Context, hash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeByHash(ctx context.Context, hash string, at time.Time) error
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

type PGRefreshTokenRepository struct {
	db DB
}

func NewRefreshTokenRepository(db DB) RefreshTokenRepository {
	return &PGRefreshTokenRepository{db: db}
}

func (r *PGRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4) RETURNING created_at`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.CreatedAt)
	return mapError(err, "refresh token")
}

func (r *PGRefreshTokenRepository) GetByHashForUpdate(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM refresh_tokens WHERE token_hash = $1 FOR UPDATE`, hash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	if err != nil {
		return nil, mapError(err, "refresh token")
	}
	return &t, nil
}

func (r *PGRefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("refresh token")
	}
	return nil
}

// RevokeByHash is a no-op when no live token matches.
func (r *PGRefreshTokenRepository) RevokeByHash(ctx context.Context, hash string, at time.Time) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE token_hash = $1 AND revoked_at IS NULL`, hash, at)
	return err
}

// DeleteStale removes tokens that expired or were revoked before the cutoff.
func (r *PGRefreshTokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ RefreshTokenRepository = (*PGRefreshTokenRepository)(nil)
