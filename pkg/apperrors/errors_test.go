package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("project %s not found", "p1")))
	assert.Equal(t, KindDuplicate, KindOf(Duplicatef("email already in use")))
	assert.Equal(t, KindStateConflict, KindOf(StateConflictf("cannot delete")))
	assert.Equal(t, KindValidation, KindOf(Validationf("end date before start date")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	inner := NotFoundf("city not found")
	wrapped := fmt.Errorf("building response: %w", inner)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrStateConflict))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("missing")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Duplicatef("dup")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(StateConflictf("bad transition")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(Validationf("bad input")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Wrap(KindDuplicate, "username already taken", cause)
	assert.Equal(t, KindDuplicate, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "username already taken")
}
