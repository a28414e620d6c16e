// Package auth holds registration, login and token validation.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/depanneo/backend/internal/lib/jwt"
	"github.com/depanneo/backend/internal/lib/password"
	"github.com/depanneo/backend/internal/models"
)

// UserRepository is the storage contract for accounts.
type UserRepository interface {
	// RegisterUser stores a new account and returns its uid.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername returns an account by username, or nil.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUser returns an account by uid, or nil.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service implements registration and login.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	now      func() time.Time
}

// New creates the auth service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
}

// Register creates an account with a hashed password. A reparateur
// starts on a 15-day trial subscription; client accounts carry no
// subscription at all.
func (s *Service) Register(ctx context.Context, req models.DummyRegisterUser) (string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		CompanyName:  req.CompanyName,
		CreatedAt:    now,
	}
	if req.Role == models.RoleReparateur {
		user.Subscription = &models.Subscription{
			Plan:      "trial",
			Status:    models.SubscriptionTrial,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, models.TrialDays),
		}
	}
	return s.users.RegisterUser(ctx, user)
}

// Login verifies the password and returns a signed token plus the role.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", errors.New("invalid credentials")
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	token, err = s.jwtMaker.GenerateToken(user.UID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ActingUser loads the full account for the authenticated uid, so
// lifecycle operations see fresh subscription state rather than the
// (possibly stale) token claims.
func (s *Service) ActingUser(ctx context.Context, userUID string) (*models.User, error) {
	return s.users.GetUser(ctx, userUID)
}
