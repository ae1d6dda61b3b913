package errors

import "errors"

var (
	ErrInvalidAddress = errors.New("invalid address")

	ErrOwnerLookup = errors.New("listing owner lookup failed")
)
