// Package lifecycle owns the repair-request state machine and the
// response sub-status state machine. Operations validate the acting
// user through the entitlement package, mutate an in-memory snapshot of
// the request and return a transition event; the caller persists the
// whole updated entity in a single write so paired fields (selection id
// and status) are never observed out of sync. Every timestamp set by an
// operation comes from the one instant passed in.
package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/depanneo/backend/internal/domain/entitlement"
	"github.com/depanneo/backend/internal/domain/fault"
	"github.com/depanneo/backend/internal/models"
)

// Event describes a completed transition, for the notification
// collaborator. ResponseID is set for response sub-status moves.
type Event struct {
	RequestID  string    `json:"request_id"`
	ResponseID string    `json:"response_id,omitempty"`
	Action     string    `json:"action"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorUID   string    `json:"actor_uid"`
	At         time.Time `json:"at"`
}

// Cancel withdraws a request. Legal from open and from in_progress; a
// second cancel fails with InvalidState because the status already left
// that set, it is not a silent no-op.
func Cancel(req *models.RepairRequest, actor *models.User, reason string, now time.Time) (*Event, error) {
	if err := entitlement.CanPerform(actor, entitlement.ActionCancel, req, now); err != nil {
		return nil, err
	}
	from := req.Status
	req.Status = models.RequestCancelled
	req.CancelledAt = &now
	req.CancelReason = reason
	return &Event{
		RequestID: req.ID,
		Action:    string(entitlement.ActionCancel),
		From:      from,
		To:        req.Status,
		ActorUID:  actor.UID,
		At:        now,
	}, nil
}

// Complete marks an in-progress request as done and stamps CompletedAt.
// The record is kept; listings drop it after the retention window by
// filtering on CompletedAt.
func Complete(req *models.RepairRequest, actor *models.User, now time.Time) (*Event, error) {
	if err := entitlement.CanPerform(actor, entitlement.ActionComplete, req, now); err != nil {
		return nil, err
	}
	from := req.Status
	req.Status = models.RequestCompleted
	req.CompletedAt = &now
	return &Event{
		RequestID: req.ID,
		Action:    string(entitlement.ActionComplete),
		From:      from,
		To:        req.Status,
		ActorUID:  actor.UID,
		At:        now,
	}, nil
}

// AddResponse appends a reparateur's proposal to an open request. The
// reparateur display fields are snapshotted from the actor at call
// time. A second response from the same reparateur fails with Conflict.
func AddResponse(req *models.RepairRequest, reparateur *models.User, proposal models.DummyRespond, now time.Time) (*models.Response, *Event, error) {
	if err := entitlement.CanPerform(reparateur, entitlement.ActionRespond, req, now); err != nil {
		return nil, nil, err
	}
	resp := models.Response{
		ID:             uuid.NewString(),
		RequestID:      req.ID,
		ReparateurID:   reparateur.UID,
		ReparateurName: reparateur.DisplayName(),
		CompanyName:    reparateur.CompanyName,
		Message:        proposal.Message,
		Price:          proposal.Price,
		EstimatedTime:  proposal.EstimatedTime,
		Status:         models.ResponsePending,
		CreatedAt:      now,
	}
	req.Responses = append(req.Responses, resp)
	return &req.Responses[len(req.Responses)-1], &Event{
		RequestID:  req.ID,
		ResponseID: resp.ID,
		Action:     string(entitlement.ActionRespond),
		From:       "",
		To:         resp.Status,
		ActorUID:   reparateur.UID,
		At:         now,
	}, nil
}

// SelectResponse records the client's choice of one response and moves
// the request to in_progress. Both fields are set on the same snapshot
// and persisted together by the caller. Once the status left open the
// guard makes re-selection structurally impossible; changing one's mind
// requires an administrative override outside this engine.
func SelectResponse(req *models.RepairRequest, actor *models.User, responseID string, now time.Time) (*Event, error) {
	if err := entitlement.CanPerform(actor, entitlement.ActionSelectRepairer, req, now); err != nil {
		return nil, err
	}
	selected := req.FindResponse(responseID)
	if selected == nil {
		return nil, fault.New(fault.InvalidReference, "response %s does not belong to request %s", responseID, req.ID)
	}
	from := req.Status
	req.SelectedResponseID = &selected.ID
	req.Status = models.RequestInProgress
	selected.Status = models.ResponseAccepted
	selected.UpdatedAt = &now
	return &Event{
		RequestID:  req.ID,
		ResponseID: selected.ID,
		Action:     string(entitlement.ActionSelectRepairer),
		From:       from,
		To:         req.Status,
		ActorUID:   actor.UID,
		At:         now,
	}, nil
}

// responseTransitions maps each sub-status action to the statuses it
// may leave from and the status it lands on. Reject and complete are
// reachable from any non-terminal sub-status.
var responseTransitions = map[entitlement.Action]struct {
	from map[string]bool
	to   string
}{
	entitlement.ActionAcceptResponse: {
		from: map[string]bool{models.ResponsePending: true},
		to:   models.ResponseAccepted,
	},
	entitlement.ActionConfirmResponse: {
		from: map[string]bool{models.ResponseAccepted: true},
		to:   models.ResponseConfirmed,
	},
	entitlement.ActionStartResponse: {
		from: map[string]bool{models.ResponseConfirmed: true},
		to:   models.ResponseInProgress,
	},
	entitlement.ActionRejectResponse: {
		from: anyNonTerminal,
		to:   models.ResponseRejected,
	},
	entitlement.ActionCompleteResponse: {
		from: anyNonTerminal,
		to:   models.ResponseCompleted,
	},
}

var anyNonTerminal = map[string]bool{
	models.ResponsePending:    true,
	models.ResponseAccepted:   true,
	models.ResponseConfirmed:  true,
	models.ResponseInProgress: true,
}

// AdvanceResponse applies a sub-status action to one response of the
// request. The response workflow is deliberately independent from the
// parent request status; the two machines are related but not coupled,
// and no reconciliation between them is attempted here.
func AdvanceResponse(req *models.RepairRequest, actor *models.User, responseID string, action entitlement.Action, now time.Time) (*Event, error) {
	if err := entitlement.CanPerform(actor, action, req, now); err != nil {
		return nil, err
	}
	resp := req.FindResponse(responseID)
	if resp == nil {
		return nil, fault.New(fault.InvalidReference, "response %s does not belong to request %s", responseID, req.ID)
	}
	tr, ok := responseTransitions[action]
	if !ok {
		return nil, fault.New(fault.InvalidState, "action %q is not a response transition", action)
	}
	// Confirm and start must come from the reparateur who owns the
	// response. Complete is also open to the owning client and admins,
	// but a reparateur may only complete their own response.
	switch action {
	case entitlement.ActionConfirmResponse, entitlement.ActionStartResponse:
		if actor.UID != resp.ReparateurID {
			return nil, fault.New(fault.Forbidden, "response belongs to another reparateur")
		}
	case entitlement.ActionCompleteResponse:
		if actor.Role == models.RoleReparateur && actor.UID != resp.ReparateurID {
			return nil, fault.New(fault.Forbidden, "response belongs to another reparateur")
		}
	}
	if !tr.from[resp.Status] {
		return nil, fault.New(fault.InvalidState, "response cannot move from %s via %s", resp.Status, action)
	}
	from := resp.Status
	resp.Status = tr.to
	resp.UpdatedAt = &now
	return &Event{
		RequestID:  req.ID,
		ResponseID: resp.ID,
		Action:     string(action),
		From:       from,
		To:         resp.Status,
		ActorUID:   actor.UID,
		At:         now,
	}, nil
}
