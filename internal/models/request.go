package models

import "time"

// Repair request statuses. Completed and cancelled are terminal.
const (
	RequestOpen       = "open"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
	RequestCancelled  = "cancelled"
)

// Response sub-statuses. They track the repairer-side workflow and are
// independent from the parent request status: the request moves to
// in_progress through selection, while a response advances through the
// explicit actor actions below.
const (
	ResponsePending    = "pending"
	ResponseAccepted   = "accepted"
	ResponseConfirmed  = "confirmed"
	ResponseInProgress = "in_progress"
	ResponseRejected   = "rejected"
	ResponseCompleted  = "completed"
)

// RetentionDays is how long a completed request stays visible in the
// public listings. The record itself is never deleted; listings filter
// on CompletedAt.
const RetentionDays = 15

// RepairRequest is a client's posted repair job together with the
// responses received from reparateurs. The request exclusively owns its
// responses: a response never exists without its parent request.
type RepairRequest struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Urgency     string  `json:"urgency"`
	Budget      float64 `json:"budget"`
	City        string  `json:"city"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	// Contact snapshot of the owning client, captured at creation.
	// These are the fields masked for viewers without entitlement.
	ClientFirstName string `json:"client_first_name"`
	ClientLastName  string `json:"client_last_name"`
	ClientPhone     string `json:"client_phone"`
	ClientEmail     string `json:"client_email"`

	Status             string     `json:"status"`
	SelectedResponseID *string    `json:"selected_response_id,omitempty"`
	CancelReason       string     `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	Responses []Response `json:"responses"`
}

// Terminal reports whether the request reached a final status.
func (r *RepairRequest) Terminal() bool {
	return r.Status == RequestCompleted || r.Status == RequestCancelled
}

// FindResponse returns the response with the given id, or nil when no
// such response belongs to this request.
func (r *RepairRequest) FindResponse(responseID string) *Response {
	for i := range r.Responses {
		if r.Responses[i].ID == responseID {
			return &r.Responses[i]
		}
	}
	return nil
}

// ResponseBy returns the response posted by the given reparateur, or
// nil. A reparateur responds at most once per request.
func (r *RepairRequest) ResponseBy(reparateurID string) *Response {
	for i := range r.Responses {
		if r.Responses[i].ReparateurID == reparateurID {
			return &r.Responses[i]
		}
	}
	return nil
}

// SelectedResponse returns the currently selected response, or nil when
// no selection was made yet.
func (r *RepairRequest) SelectedResponse() *Response {
	if r.SelectedResponseID == nil {
		return nil
	}
	return r.FindResponse(*r.SelectedResponseID)
}

// Response is a reparateur's proposal on a repair request. The
// reparateur display fields are a snapshot captured when the response
// was created, not a live join against the users table.
type Response struct {
	ID             string     `json:"id"`
	RequestID      string     `json:"request_id"`
	ReparateurID   string     `json:"reparateur_id"`
	ReparateurName string     `json:"reparateur_name"`
	CompanyName    string     `json:"company_name,omitempty"`
	Message        string     `json:"message"`
	Price          *float64   `json:"price,omitempty"`
	EstimatedTime  string     `json:"estimated_time,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Terminal reports whether the response sub-status is final.
func (p *Response) Terminal() bool {
	return p.Status == ResponseRejected || p.Status == ResponseCompleted
}

// DummyCreateRequest carries the "post a repair request" form payload.
type DummyCreateRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Urgency     string  `json:"urgency" validate:"required,oneof=low normal high"`
	Budget      float64 `json:"budget" validate:"gte=0"`
	City        string  `json:"city" validate:"required"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// DummyRespond carries a reparateur's proposal payload.
type DummyRespond struct {
	Message       string   `json:"message" validate:"required"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	EstimatedTime string   `json:"estimated_time"`
}

// DummyCancel carries the optional cancellation reason.
type DummyCancel struct {
	Reason string `json:"reason"`
}

// DummySelect carries the id of the response picked by the client.
type DummySelect struct {
	ResponseID string `json:"response_id" validate:"required,uuid"`
}
