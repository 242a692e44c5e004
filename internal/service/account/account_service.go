package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/google/uuid"
)

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	// Authenticate resolves an access token to an active user.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type TokenIssuer interface {
	IssueAccess(userID uuid.UUID, role domain.Role) (string, error)
	IssueRefresh(userID uuid.UUID) (string, time.Time, error)
	ParseAccess(token string) (*auth.AccessClaims, error)
	ParseRefresh(token string) (*auth.RefreshClaims, error)
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Phone       *string
	Nationality *string
	DateOfBirth *time.Time
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Session struct {
	User *domain.User `json:"user"`
	Tokens
}

type AccountService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	tx     repository.TxManager
	issuer TokenIssuer
	now    func() time.Time
}

func NewAccountService(users repository.UserRepository, tokens repository.RefreshTokenRepository, tx repository.TxManager, issuer TokenIssuer) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		tx:     tx,
		issuer: issuer,
		now:    time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.Conflict("email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Status:       domain.UserStatusActive,
		Nationality:  input.Nationality,
		DateOfBirth:  input.DateOfBirth,
	}

	// the account and its first session are created together
	var tokens *Tokens
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		tokens, err = s.issue(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: *tokens}, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.Unauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, domain.Forbidden("account is not active")
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: *tokens}, nil
}

// Refresh rotates a refresh token. The presented token is revoked and a new
// pair is issued in the same transaction, so a replayed token always fails.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, domain.Unauthorized("invalid or expired refresh token")
	}

	var tokens *Tokens
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		stored, err := s.tokens.GetByHashForUpdate(ctx, auth.HashToken(refreshToken))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Unauthorized("invalid or expired refresh token")
			}
			return err
		}
		now := s.now()
		if !stored.Usable(now) || stored.UserID != claims.UserID {
			return domain.Unauthorized("invalid or expired refresh token")
		}

		user, err := s.users.GetByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Unauthorized("invalid or expired refresh token")
			}
			return err
		}
		if user.Status != domain.UserStatusActive {
			return domain.Forbidden("account is not active")
		}

		if err := s.tokens.Revoke(ctx, stored.ID, now); err != nil {
			return err
		}
		tokens, err = s.issue(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes the refresh token if it is still live. It never fails on
// an unknown token.
func (s *AccountService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.RevokeByHash(ctx, auth.HashToken(refreshToken), s.now())
}

func (s *AccountService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AccountService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.issuer.ParseAccess(accessToken)
	if err != nil {
		return nil, domain.Unauthorized("invalid or expired token")
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("user not found")
		}
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, domain.Forbidden("account is not active")
	}
	return user, nil
}

func (s *AccountService) issue(ctx context.Context, user *domain.User) (*Tokens, error) {
	access, err := s.issuer.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(refresh),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

var _ AccountUseCase = (*AccountService)(nil)
