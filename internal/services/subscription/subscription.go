// Package subscription reads and updates reparateur subscription
// state. Payments themselves happen at an external provider; this
// service only applies the resulting activation and reports status.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/depanneo/backend/internal/models"
)

// Repository is the storage contract used by the service.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ActivateSubscription(ctx context.Context, userUID, plan string, start, end time.Time) (int, error)
}

// Service implements subscription reads and activation.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New creates the subscription service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Status returns the effective subscription status for a reparateur at
// the current instant: "active", "trial", "expired" (trial window
// elapsed or inactive) or "none" for accounts without a subscription.
func (s *Service) Status(ctx context.Context, userUID string) (string, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return "", err
	}
	if user == nil || user.Subscription == nil {
		return "none", nil
	}
	sub := user.Subscription
	if sub.Status == models.SubscriptionActive {
		return "active", nil
	}
	if sub.Status == models.SubscriptionTrial && s.now().Before(sub.EndDate) {
		return "trial", nil
	}
	return "expired", nil
}

// Activate applies a confirmed payment: the reparateur's subscription
// becomes active from now for the paid number of months.
func (s *Service) Activate(ctx context.Context, userUID, plan string, months int) error {
	start := s.now().UTC()
	end := start.AddDate(0, months, 0)
	count, err := s.repo.ActivateSubscription(ctx, userUID, plan, start, end)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no reparateur account with uid %s", userUID)
	}
	s.log.Info("subscription activated",
		slog.String("user_uid", userUID),
		slog.String("plan", plan),
		slog.Time("end", end))
	return nil
}
