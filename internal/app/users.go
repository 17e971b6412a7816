/**
 * @description
 * Account business logic: registration, login, display currency and premium
 * grants. Token minting lives in the API layer; this service only verifies
 * credentials and returns the account.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/smartysub/tracker-service/internal/domain"
)

// ErrInvalidCredentials is returned on a failed login. The caller cannot tell
// whether the account or the password was wrong.
var ErrInvalidCredentials = errors.New("email or password are incorrect")

// UserRepository defines the database operations the account service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	SetUserCurrency(ctx context.Context, userID, code string) (*domain.User, error)
	GrantPremium(ctx context.Context, userID string, expiresAt time.Time) (*domain.User, error)
}

// UserService provides the business logic for account management.
type UserService struct {
	repo UserRepository
}

// NewUserService creates a new account service.
func NewUserService(repo UserRepository) UserService {
	return UserService{repo: repo}
}

// Register creates a new account with a bcrypt password hash.
func (s UserService) Register(ctx context.Context, userName, email, password string) (*domain.User, error) {
	userName = strings.TrimSpace(userName)
	email = strings.TrimSpace(email)
	if userName == "" || email == "" {
		return nil, errors.New("user name and email are required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.CreateUser(ctx, &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		Currency:     domain.DefaultCurrency,
	})
}

// Login verifies credentials against the stored hash. The login value may be
// either the email or the username.
func (s UserService) Login(ctx context.Context, login, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetProfile returns the account record for the given id.
func (s UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// SetCurrency updates the account's display currency after validating the
// code against ISO 4217.
func (s UserService) SetCurrency(ctx context.Context, userID, code string) (*domain.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !domain.ValidCurrency(code) {
		return nil, fmt.Errorf("invalid currency code %q", code)
	}
	return s.repo.SetUserCurrency(ctx, userID, code)
}

// MakePremium grants premium for the given number of days from now.
func (s UserService) MakePremium(ctx context.Context, userID string, days int) (*domain.User, error) {
	if days <= 0 {
		return nil, fmt.Errorf("premium duration must be positive, got %d", days)
	}
	return s.repo.GrantPremium(ctx, userID, time.Now().UTC().AddDate(0, 0, days))
}
