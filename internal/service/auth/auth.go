package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/hash"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/session"
	"github.com/Skotchmaster/cinema_reservation/internal/token"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so a login attempt cannot probe which addresses are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("the user is inactive")
	ErrUserExists         = errors.New("user already exists with this email")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
)

// SessionStore is the slice of the session store the service needs.
type SessionStore interface {
	Put(ctx context.Context, refreshToken, userUUID string, ttl time.Duration) error
	GetWithTTL(ctx context.Context, refreshToken string) (string, time.Duration, error)
	Rotate(ctx context.Context, oldToken, newToken string) (string, time.Duration, error)
	Delete(ctx context.Context, refreshToken string) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Service struct {
	DB    *gorm.DB
	Codec *token.Codec
	Store SessionStore
}

type RegisterParams struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      models.Role
	Activated bool
}

func (s *Service) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", p.Email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	passwordHash, err := hash.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UUID:         uuid.NewString(),
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PasswordHash: passwordHash,
		Role:         p.Role,
		Activated:    p.Activated,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("user lookup: %w", err)
	}

	ok, err := hash.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return TokenPair{}, err
	}
	if !ok {
		return TokenPair{}, ErrInvalidCredentials
	}

	if !user.Activated {
		return TokenPair{}, ErrInactiveAccount
	}

	return s.issuePair(ctx, &user, s.Codec.RefreshTTL, "")
}

// Refresh exchanges a still-mapped refresh token for a fresh pair. The new
// mapping inherits the remaining TTL of the old one, so rotation never
// extends the total session lifetime.
func (s *Service) Refresh(ctx context.Context, oldRefreshToken string) (TokenPair, error) {
	userUUID, remaining, err := s.Store.GetWithTTL(ctx, oldRefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("uuid = ?", userUUID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, ErrNotFound
		}
		return TokenPair{}, fmt.Errorf("user lookup: %w", err)
	}

	return s.issuePair(ctx, &user, remaining, oldRefreshToken)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	err := s.Store.Delete(ctx, refreshToken)
	if errors.Is(err, session.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// issuePair mints both tokens and installs the refresh mapping. With a
// non-empty oldToken the install is an atomic rotation; a concurrent
// rotation of the same old token leaves exactly one live mapping.
func (s *Service) issuePair(ctx context.Context, user *models.User, refreshTTL time.Duration, oldToken string) (TokenPair, error) {
	accessToken, err := s.Codec.EncodeAccess(user.UUID, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.Codec.EncodeRefresh(user.UUID, user.Role, refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if oldToken == "" {
		err = s.Store.Put(ctx, refreshToken, user.UUID, refreshTTL)
	} else {
		_, _, err = s.Store.Rotate(ctx, oldToken, refreshToken)
		if errors.Is(err, session.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
	}
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
