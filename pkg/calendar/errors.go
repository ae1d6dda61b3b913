package calendar

import "errors"

var (
	ErrMalformedDate = errors.New("malformed date")

	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)
