package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestFromDomain(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("resolve: %w", ErrPageNotFound), http.StatusNotFound},
		{ErrTemplateNotAccessible, http.StatusNotFound},
		{ErrVersionNotFound, http.StatusNotFound},
		{ErrSessionNotFound, http.StatusNotFound},
		{ErrPageNotSelected, http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
		{Conflict("taken", nil), http.StatusConflict},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, FromDomain(tc.err).Status, tc.err.Error())
	}
}

func TestFromDomain_TemplateLooksLikeNotFound(t *testing.T) {
	a := FromDomain(ErrPageNotFound)
	b := FromDomain(ErrTemplateNotAccessible)
	assert.Equal(t, a.Status, b.Status)
	assert.Equal(t, a.Message, b.Message)
}

func TestAPIError_UnwrapAndMessage(t *testing.T) {
	e := NotFound("Page not found", ErrPageNotFound)
	assert.True(t, errors.Is(e, ErrPageNotFound))
	assert.Equal(t, "Page not found: page not found", e.Error())

	e2 := e.WithMessage("gone")
	assert.Equal(t, "gone", e2.Message)
	assert.Equal(t, e.Status, e2.Status)
}

func TestNewValidationError_Fields(t *testing.T) {
	type form struct {
		Slug string `validate:"required"`
	}
	err := validator.New().Struct(form{})

	apiErr := NewValidationError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "is required", apiErr.Fields["slug"])
}
