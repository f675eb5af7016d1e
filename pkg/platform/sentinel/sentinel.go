package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors or result codes.
//
//   - ErrNotFound: record, session, history entry or API key does not exist
//   - ErrConflict: unique key already taken (verification code, document number)
//   - ErrExpired: session idled out
//   - ErrInvalidState: entity in wrong state (revoking a revoked record)
//   - ErrUnavailable: backing store or dependency temporarily unavailable
//   - ErrLimitExceeded: a counted allowance (API key quota, session ceiling) is used up
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrExpired       = errors.New("expired")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
	ErrLimitExceeded = errors.New("limit exceeded")
)
