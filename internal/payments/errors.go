package payments

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to HTTP handlers.
var (
	// ErrNotFound indicates the referenced quote does not exist for the
	// acting user.
	ErrNotFound = errors.New("payments: quote not found")
	// ErrForbidden indicates an ownership mismatch. Confirmation lookups
	// collapse "unknown session" and "wrong owner" into this error so a
	// non-owner cannot probe for existence.
	ErrForbidden = errors.New("payments: forbidden")
	// ErrEmptySessionID indicates a blank session id was submitted.
	ErrEmptySessionID = errors.New("payments: empty session id")
)

// NotPaidError is a business rejection: the provider session exists but is
// not complete and paid yet. It carries the raw provider status strings for
// diagnostics and is never logged as a server error.
type NotPaidError struct {
	Status        string
	PaymentStatus string
}

func (e *NotPaidError) Error() string {
	return fmt.Sprintf("payments: session not completed/paid (status=%s, payment=%s)", e.Status, e.PaymentStatus)
}

// ProviderError wraps a failed or malformed payment provider call. The
// operation has not mutated local state and the caller may retry.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payments: provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
