// Package domain holds identifier primitives shared by every module.
//
// Upstream systems (customers, plans, corporate hierarchy) hand us opaque
// string identifiers, so these types are distinct string kinds rather than
// parsed UUIDs: the compiler keeps a CustomerID from being passed where a
// PlanID is expected, and nothing here rejects a foreign id format.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

type (
	EnrollmentID   string
	CustomerID     string
	PlanID         string
	OrganizationID string
	DepartmentID   string
	EmployeeID     string
)

// IDGenerator produces enrollment identifiers. Services take one so tests can
// force collisions.
type IDGenerator func() EnrollmentID

// NewEnrollmentID returns a random (v4) UUID in canonical text form.
//
// uuid.New panics when crypto/rand fails. An exhausted entropy source is a
// broken host, not a request error, so the panic is left to propagate.
func NewEnrollmentID() EnrollmentID {
	return EnrollmentID(uuid.New().String())
}

// ParseEnrollmentID trims surrounding whitespace from external input.
// Empty results are returned as-is; callers decide whether that is an error.
func ParseEnrollmentID(s string) EnrollmentID {
	return EnrollmentID(strings.TrimSpace(s))
}

func (id EnrollmentID) String() string   { return string(id) }
func (id CustomerID) String() string     { return string(id) }
func (id PlanID) String() string         { return string(id) }
func (id OrganizationID) String() string { return string(id) }
func (id DepartmentID) String() string   { return string(id) }
func (id EmployeeID) String() string     { return string(id) }

func (id EnrollmentID) IsNil() bool { return id == "" }
func (id CustomerID) IsNil() bool   { return id == "" }
func (id PlanID) IsNil() bool       { return id == "" }
