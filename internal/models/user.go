// Package models contains the domain structures shared between the
// business logic, the storage layer and the HTTP handlers.
package models

import "time"

// Roles an account can hold. A reparateur is a repair professional
// responding to client requests; an admin is back-office staff.
const (
	RoleClient     = "client"
	RoleReparateur = "reparateur"
	RoleAdmin      = "admin"
)

// Subscription statuses for reparateur accounts.
const (
	SubscriptionActive   = "active"
	SubscriptionTrial    = "trial"
	SubscriptionInactive = "inactive"
)

// TrialDays is the length of the free trial granted to a reparateur
// at registration.
const TrialDays = 15

// Subscription holds the paid-plan state of a reparateur account.
// Only reparateurs carry one; client and admin accounts never do.
type Subscription struct {
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Entitled reports whether the subscription grants access at the given
// instant. An active subscription entitles unconditionally until it is
// externally changed; a trial entitles only while now is before EndDate.
func (s *Subscription) Entitled(now time.Time) bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case SubscriptionActive:
		return true
	case SubscriptionTrial:
		return now.Before(s.EndDate)
	default:
		return false
	}
}

// User represents a registered account of any role.
type User struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Phone         string    `json:"phone"`
	CompanyName   string    `json:"company_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// Subscription is set for reparateur accounts only.
	Subscription *Subscription `json:"subscription,omitempty"`
}

// DisplayName returns the name shown to other users.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// DummyRegisterUser carries the registration form payload before it is
// turned into a User.
type DummyRegisterUser struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,alphanum"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required,oneof=client reparateur"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

// DummyLoginUser carries the login form payload.
type DummyLoginUser struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}
