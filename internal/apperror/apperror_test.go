package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.InvalidInput, http.StatusBadRequest},
		{apperror.Conflict, http.StatusBadRequest},
		{apperror.NotFound, http.StatusBadRequest},
		{apperror.Unauthorized, http.StatusUnauthorized},
		{apperror.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("register: %w", apperror.NewConflict("User already exists"))

	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))
	assert.True(t, apperror.Is(err, apperror.Conflict))
	assert.False(t, apperror.Is(err, apperror.NotFound))
	assert.Equal(t, apperror.Internal, apperror.KindOf(errors.New("boom")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperror.NewInternal("User creation failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "User creation failed: connection reset", err.Error())
}
