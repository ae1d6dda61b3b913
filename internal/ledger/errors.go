package ledger

import (
	"context"
	"errors"

	apperrors "staybook/pkg/errors"
)

var (
	// ErrSourceUnavailable means the event log could not be read. The whole
	// reconciliation fails; callers may retry.
	ErrSourceUnavailable = errors.New("event source unavailable")

	ErrInvalidWindow = errors.New("invalid scan window")
)

// ToAppError maps a reconciliation failure to its API error. An AppError
// already in the chain is returned as is.
func ToAppError(err error) *apperrors.AppError {
	switch {
	case apperrors.IsAppError(err):
		return apperrors.AsAppError(err)
	case errors.Is(err, ErrSourceUnavailable):
		return apperrors.UnavailableWithCause("Event source", err)
	case errors.Is(err, ErrInvalidWindow):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Reconciliation timed out")
	default:
		return apperrors.Internal("Failed to reconcile bookings", err)
	}
}
