package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/depanneo/backend/internal/domain/fault"
)

func TestKindOf(t *testing.T) {
	err := fault.New(fault.Forbidden, "not yours")

	kind, ok := fault.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, fault.Forbidden, kind)

	_, ok = fault.KindOf(errors.New("plain error"))
	assert.False(t, ok)
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("services.request: %w", fault.New(fault.Conflict, "duplicate"))

	kind, ok := fault.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, fault.Conflict, kind)
}

func TestIsKind(t *testing.T) {
	err := fault.New(fault.InvalidState, "request is not open")

	assert.True(t, fault.IsKind(err, fault.InvalidState))
	assert.False(t, fault.IsKind(err, fault.Forbidden))
	assert.False(t, fault.IsKind(errors.New("plain"), fault.InvalidState))
}

func TestIs_MatchesByKindNotMessage(t *testing.T) {
	a := fault.New(fault.NotFound, "request abc does not exist")
	b := fault.New(fault.NotFound, "different text")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, fault.New(fault.Conflict, "request abc does not exist")))
}
