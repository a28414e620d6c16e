// Package visibility builds the view of a repair request handed to
// renderers. Viewers without entitlement get the client contact fields
// masked letter by letter. Projection is computed on every call: the
// same record is legally projected differently for two concurrent
// viewers, so the result must never be stored on the entity or cached.
package visibility

import (
	"strings"
	"time"
	"unicode"

	"github.com/depanneo/backend/internal/domain/entitlement"
	"github.com/depanneo/backend/internal/models"
)

// RequestView is the redacted form of a repair request produced for one
// viewer. Visible reports whether the contact fields are unmasked.
type RequestView struct {
	models.RepairRequest
	Visible bool `json:"personal_data_visible"`
}

// MaskLetters replaces every Unicode letter, accented characters
// included, with '*'. Digits, spaces and punctuation pass through, so
// the masked string keeps the exact length and layout of the original.
// Masking an already-masked string is a no-op.
func MaskLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return '*'
		}
		return r
	}, s)
}

// Project returns the view of req for actor at the given instant. The
// request itself is not modified; masked fields are rewritten on a copy.
func Project(req *models.RepairRequest, actor *models.User, now time.Time) RequestView {
	view := RequestView{RepairRequest: *req}
	view.Responses = append([]models.Response(nil), req.Responses...)
	view.Visible = entitlement.CanViewPersonalData(actor, req, now)
	if view.Visible {
		return view
	}
	view.ClientFirstName = MaskLetters(req.ClientFirstName)
	view.ClientLastName = MaskLetters(req.ClientLastName)
	view.ClientPhone = MaskLetters(req.ClientPhone)
	view.ClientEmail = MaskLetters(req.ClientEmail)
	return view
}

// ProjectAll projects a list of requests for one viewer, re-evaluating
// entitlement per record since ownership differs between them.
func ProjectAll(reqs []*models.RepairRequest, actor *models.User, now time.Time) []RequestView {
	views := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, Project(r, actor, now))
	}
	return views
}
