// Package entitlement is the single source of truth for who may see
// unmasked personal data and who may perform a given action on a repair
// request. All checks are pure functions of the actor, the request and
// the supplied instant; nothing here is cached, because trial windows
// expire and subscription state changes externally between calls.
package entitlement

import (
	"time"

	"github.com/depanneo/backend/internal/domain/fault"
	"github.com/depanneo/backend/internal/models"
)

// Action names a privileged operation on a repair request.
type Action string

const (
	ActionRespond        Action = "respond"
	ActionCancel         Action = "cancel"
	ActionComplete       Action = "complete"
	ActionSelectRepairer Action = "select_repairer"

	// Response sub-status actions.
	ActionAcceptResponse   Action = "accept_response"
	ActionConfirmResponse  Action = "confirm_response"
	ActionStartResponse    Action = "start_response"
	ActionRejectResponse   Action = "reject_response"
	ActionCompleteResponse Action = "complete_response"
)

// CanViewPersonalData reports whether actor may see the request's
// unmasked client contact fields. Rules are evaluated in order, first
// match wins:
//
//  1. admins always see,
//  2. the owning client always sees its own request,
//  3. other clients never see,
//  4. reparateurs see while their subscription entitles them (active,
//     or trial with now before the trial end).
//
// A nil actor is an anonymous viewer and never sees.
func CanViewPersonalData(actor *models.User, req *models.RepairRequest, now time.Time) bool {
	if actor == nil || req == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleClient:
		return actor.UID == req.ClientID
	case models.RoleReparateur:
		return actor.Subscription.Entitled(now)
	default:
		return false
	}
}

// CanPerform checks whether actor may perform action on req. It returns
// nil when the action is allowed, and otherwise a fault whose kind
// distinguishes a missing request (NotFound), an unauthorized actor
// (Forbidden), a state-machine violation (InvalidState) and a duplicate
// response (Conflict).
func CanPerform(actor *models.User, action Action, req *models.RepairRequest, now time.Time) error {
	if req == nil {
		return fault.New(fault.NotFound, "request does not exist")
	}
	if actor == nil {
		return fault.New(fault.Forbidden, "authentication required")
	}

	switch action {
	case ActionRespond:
		if actor.Role != models.RoleReparateur {
			return fault.New(fault.Forbidden, "only reparateurs can respond")
		}
		if req.Status != models.RequestOpen {
			return fault.New(fault.InvalidState, "request is not open")
		}
		if req.ResponseBy(actor.UID) != nil {
			return fault.New(fault.Conflict, "reparateur already responded to this request")
		}
		return nil

	case ActionCancel:
		if actor.Role != models.RoleClient || actor.UID != req.ClientID {
			return fault.New(fault.Forbidden, "only the owning client can cancel")
		}
		if req.Status != models.RequestOpen && req.Status != models.RequestInProgress {
			return fault.New(fault.InvalidState, "request can no longer be cancelled")
		}
		return nil

	case ActionComplete:
		selected := req.SelectedResponse()
		owner := actor.UID == req.ClientID
		worker := selected != nil && actor.UID == selected.ReparateurID
		if !owner && !worker {
			return fault.New(fault.Forbidden, "only the client or the selected reparateur can complete")
		}
		if req.Status != models.RequestInProgress {
			return fault.New(fault.InvalidState, "request is not in progress")
		}
		return nil

	case ActionSelectRepairer:
		if actor.UID != req.ClientID {
			return fault.New(fault.Forbidden, "only the owning client can select a reparateur")
		}
		if req.Status != models.RequestOpen {
			return fault.New(fault.InvalidState, "request is not open")
		}
		if len(req.Responses) == 0 {
			return fault.New(fault.InvalidState, "request has no responses to select from")
		}
		return nil

	case ActionAcceptResponse, ActionConfirmResponse, ActionStartResponse,
		ActionRejectResponse, ActionCompleteResponse:
		// Authorization for sub-status moves; the state check itself
		// lives in the lifecycle package next to the transition table.
		return canPerformOnResponse(actor, action, req)

	default:
		return fault.New(fault.Forbidden, "unknown action %q", action)
	}
}

// canPerformOnResponse authorizes response sub-status actions. Accept
// and reject belong to the owning client (or an admin); confirm and
// start belong to the responding reparateur; complete is open to both
// sides of the selected pair.
func canPerformOnResponse(actor *models.User, action Action, req *models.RepairRequest) error {
	switch action {
	case ActionAcceptResponse, ActionRejectResponse:
		if actor.Role == models.RoleAdmin {
			return nil
		}
		if actor.Role != models.RoleClient || actor.UID != req.ClientID {
			return fault.New(fault.Forbidden, "only the owning client can %s", action)
		}
		return nil
	case ActionConfirmResponse, ActionStartResponse:
		if actor.Role != models.RoleReparateur {
			return fault.New(fault.Forbidden, "only the responding reparateur can %s", action)
		}
		return nil
	case ActionCompleteResponse:
		if actor.Role == models.RoleAdmin || actor.Role == models.RoleReparateur ||
			(actor.Role == models.RoleClient && actor.UID == req.ClientID) {
			return nil
		}
		return fault.New(fault.Forbidden, "actor may not complete this response")
	default:
		return fault.New(fault.Forbidden, "unknown action %q", action)
	}
}
