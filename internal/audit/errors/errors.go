package errors

import "errors"

var ErrNoRuns = errors.New("no reconciliation run recorded")
