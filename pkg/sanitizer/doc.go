// Package sanitizer normalizes user and ledger supplied strings before they
// are compared or stored.
//
// All normalization functions are idempotent. Invalid input is handled
// gracefully by returning an empty string rather than an error; validation is
// left to the callers.
//
// Addresses are trimmed and lowercased, so checksummed and plain spellings of
// the same account compare equal.
package sanitizer
