package visibility_test

import (
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"

	"github.com/depanneo/backend/internal/domain/visibility"
	"github.com/depanneo/backend/internal/models"
)

var refTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleRequest() *models.RepairRequest {
	return &models.RepairRequest{
		ID:              "req-1",
		ClientID:        "client-1",
		Title:           "Fuite sous l'évier",
		Status:          models.RequestOpen,
		ClientFirstName: "Jean-François",
		ClientLastName:  "Lefèvre",
		ClientPhone:     "+33 6 12 34 56 78",
		ClientEmail:     "jf.lefevre@example.fr",
	}
}

func TestMaskLetters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain latin",
			in:   "Jean",
			want: "****",
		},
		{
			name: "accented characters are letters too",
			in:   "Lefèvre",
			want: "*******",
		},
		{
			name: "hyphen and digits preserved",
			in:   "Jean-François 75",
			want: "****-******** 75",
		},
		{
			name: "phone keeps its layout",
			in:   "+33 6 12 34 56 78",
			want: "+33 6 12 34 56 78",
		},
		{
			name: "email punctuation survives",
			in:   "jf.lefevre@example.fr",
			want: "**.*******@*******.**",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibility.MaskLetters(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len([]rune(tt.in)), len([]rune(got)))
		})
	}
}

func TestMaskLetters_Idempotent(t *testing.T) {
	once := visibility.MaskLetters("Jean-François Lefèvre")
	twice := visibility.MaskLetters(once)
	assert.Equal(t, once, twice)
}

func TestProject_Unentitled(t *testing.T) {
	req := sampleRequest()
	view := visibility.Project(req, nil, refTime)

	assert.False(t, view.Visible)
	assert.Equal(t, len([]rune(req.ClientFirstName)), len([]rune(view.ClientFirstName)))
	for _, r := range view.ClientFirstName {
		assert.False(t, unicode.IsLetter(r), "masked name must contain no letters")
	}
	assert.Equal(t, "*******", view.ClientLastName)
	assert.Equal(t, "+33 6 12 34 56 78", view.ClientPhone)
	assert.Equal(t, "**.*******@*******.**", view.ClientEmail)

	// The underlying record is untouched.
	assert.Equal(t, "Jean-François", req.ClientFirstName)
	assert.Equal(t, "Lefèvre", req.ClientLastName)
}

func TestProject_Owner(t *testing.T) {
	req := sampleRequest()
	owner := &models.User{UID: "client-1", Role: models.RoleClient}

	view := visibility.Project(req, owner, refTime)
	assert.True(t, view.Visible)
	assert.Equal(t, "Jean-François", view.ClientFirstName)
	assert.Equal(t, "jf.lefevre@example.fr", view.ClientEmail)
}

// The same record projects differently for two concurrent viewers;
// nothing is cached on the entity.
func TestProject_PerViewer(t *testing.T) {
	req := sampleRequest()
	owner := &models.User{UID: "client-1", Role: models.RoleClient}
	stranger := &models.User{UID: "client-2", Role: models.RoleClient}

	ownerView := visibility.Project(req, owner, refTime)
	strangerView := visibility.Project(req, stranger, refTime)

	assert.True(t, ownerView.Visible)
	assert.False(t, strangerView.Visible)
	assert.NotEqual(t, ownerView.ClientEmail, strangerView.ClientEmail)
}

func TestProjectAll_EvaluatesPerRecord(t *testing.T) {
	mine := sampleRequest()
	other := sampleRequest()
	other.ID = "req-2"
	other.ClientID = "client-2"

	viewer := &models.User{UID: "client-1", Role: models.RoleClient}
	views := visibility.ProjectAll([]*models.RepairRequest{mine, other}, viewer, refTime)

	assert.Len(t, views, 2)
	assert.True(t, views[0].Visible)
	assert.False(t, views[1].Visible)
}
