package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/depanneo/backend/internal/domain/fault"
	"github.com/depanneo/backend/internal/models"
)

const userColumns = `uid, email, email_verified, username, password_hash, role,
	first_name, last_name, phone, company_name,
	subscription_plan, subscription_status, subscription_start, subscription_end, created_at`

// RegisterUser inserts a new account and returns its uid. A duplicate
// email or username yields a Conflict fault.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var plan, status *string
	var start, end *time.Time
	if user.Subscription != nil {
		plan = &user.Subscription.Plan
		status = &user.Subscription.Status
		start = &user.Subscription.StartDate
		end = &user.Subscription.EndDate
	}

	var newID string
	query := `INSERT INTO users (email, email_verified, username, password_hash, role,
	              first_name, last_name, phone, company_name,
	              subscription_plan, subscription_status, subscription_start, subscription_end, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.EmailVerified, user.Username, user.PasswordHash, user.Role,
		user.FirstName, user.LastName, user.Phone, user.CompanyName,
		plan, status, start, end, user.CreatedAt).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fault.New(fault.Conflict, "email or username already taken")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername returns the account with the given username, or
// nil when it does not exist.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.scanUser(op, s.DB.QueryRowContext(ctx, query, username))
}

// GetUser returns the account with the given uid, or nil when it does
// not exist.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return s.scanUser(op, s.DB.QueryRowContext(ctx, query, userUID))
}

// ActivateSubscription flips the reparateur's subscription to active
// for the paid window. Called from the payment webhook path only.
func (s *Storage) ActivateSubscription(ctx context.Context, userUID, plan string, start, end time.Time) (int, error) {
	const op = "storage.ActivateSubscription"
	query := `UPDATE users
	          SET subscription_plan = $1, subscription_status = $2,
	              subscription_start = $3, subscription_end = $4
	          WHERE uid = $5 AND role = $6`
	result, err := s.DB.ExecContext(ctx, query,
		plan, models.SubscriptionActive, start, end, userUID, models.RoleReparateur)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func (s *Storage) scanUser(op string, row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var plan, status sql.NullString
	var start, end sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.EmailVerified, &u.Username, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Phone, &u.CompanyName,
		&plan, &status, &start, &end, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status.Valid {
		u.Subscription = &models.Subscription{
			Plan:      plan.String,
			Status:    status.String,
			StartDate: start.Time,
			EndDate:   end.Time,
		}
	}
	return u, nil
}
