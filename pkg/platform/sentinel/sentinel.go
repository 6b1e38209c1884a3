package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
//   - ErrNotFound: no record under the key
//   - ErrAlreadyUsed: key already taken (duplicate insert, idempotency key in use)
//   - ErrInvalidState: record is in the wrong state for the requested change
//   - ErrUnavailable: backing store temporarily unreachable
//
// Validation failures never use these; see pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
