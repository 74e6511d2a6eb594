package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("bad").Status)
	assert.Equal(t, http.StatusUnauthorized, Unauthenticated("who").Status)
	assert.Equal(t, http.StatusForbidden, Forbidden("no").Status)
	assert.Equal(t, http.StatusNotFound, NotFound("gone").Status)
	assert.Equal(t, http.StatusConflict, Conflict("dup").Status)
	assert.Equal(t, http.StatusInternalServerError, Internal(errors.New("boom")).Status)
}

func TestValidationFields(t *testing.T) {
	err := Validation("Invalid input",
		FieldError{Field: "caption", Message: "is required"},
		FieldError{Field: "media", Message: "too many items"},
	)

	assert.Len(t, err.Fields, 2)
	assert.Equal(t, "caption", err.Fields[0].Field)
	assert.Equal(t, "Invalid input", err.Error())
}

func TestFromPassesThroughTypedErrors(t *testing.T) {
	orig := NotFound("Post not found")
	got := From(fmt.Errorf("handling request: %w", orig))

	assert.Equal(t, orig, got)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")
	got := From(cause)

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "Internal server error", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestInternalHidesCauseMessage(t *testing.T) {
	err := Internal(errors.New("pq: duplicate key value"))
	assert.NotContains(t, err.Error(), "pq:")
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NotFound("x"))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.True(t, IsConflict(Conflict("y")))
	assert.False(t, IsNotFound(errors.New("plain")))
}
