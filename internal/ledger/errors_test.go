package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "staybook/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "source unavailable",
			err:  fmt.Errorf("%w: booked events: %w", ErrSourceUnavailable, errors.New("dial tcp")),
			want: http.StatusServiceUnavailable,
		},
		{
			name: "invalid window",
			err:  fmt.Errorf("%w: from 9 is after to 3", ErrInvalidWindow),
			want: http.StatusBadRequest,
		},
		{
			name: "deadline",
			err:  fmt.Errorf("query: %w", context.DeadlineExceeded),
			want: http.StatusGatewayTimeout,
		},
		{
			name: "app error passes through",
			err:  apperrors.NotFound("Listing"),
			want: http.StatusNotFound,
		},
		{
			name: "anything else",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToAppError(tt.err).StatusCode())
		})
	}
}

func TestToAppError_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("%w: settled events: %w", ErrSourceUnavailable, cause)

	appErr := ToAppError(err)
	assert.ErrorIs(t, appErr, ErrSourceUnavailable)
	assert.ErrorIs(t, appErr, cause)
}
