// Package idempotency binds client supplied Idempotency-Key values to the
// enrollment a create produced, so retried creates return the original.
package idempotency

import (
	"strconv"

	id "benefits-bff/pkg/domain"
)

// State is the outcome of a Reserve call.
type State int

const (
	// Acquired means the caller owns the key and must Complete or Release it.
	Acquired State = iota
	// InFlight means another create holding the key has not finished.
	InFlight
	// Completed means the key is bound to EnrollmentID.
	Completed
)

func (s State) String() string {
	switch s {
	case Acquired:
		return "acquired"
	case InFlight:
		return "in_flight"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Reservation is the result of reserving a key.
type Reservation struct {
	State        State
	EnrollmentID id.EnrollmentID
}

// pendingMarker is stored while the owning create is running.
const pendingMarker = "\x00pending"

const keyPrefix = "enrollment:idempotency:"

// ScopedKey namespaces a client key by customer so two customers sending the
// same Idempotency-Key never share a binding. The length prefix keeps ids that
// contain ':' from colliding.
func ScopedKey(customerID id.CustomerID, key string) string {
	c := customerID.String()
	return strconv.Itoa(len(c)) + ":" + c + ":" + key
}
