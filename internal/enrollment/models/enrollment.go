package models

import (
	"slices"
	"time"

	id "benefits-bff/pkg/domain"
)

// Status is the lifecycle state of an enrollment.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// transitions lists the legal moves. Nothing re-enters pending and nothing
// leaves deleted; deleted → deleted is handled as a no-op by Delete, not here.
var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusDeleted},
	StatusActive:  {StatusDeleted},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusDeleted:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// CanTransitionTo reports whether s → to is a legal move.
func (s Status) CanTransitionTo(to Status) bool {
	return slices.Contains(transitions[s], to)
}

// Hierarchy places an enrollment under an organization, department and
// employee. The zero value means a direct customer enrollment.
type Hierarchy struct {
	OrganizationID id.OrganizationID `json:"organizationId,omitempty"`
	DepartmentID   id.DepartmentID   `json:"departmentId,omitempty"`
	EmployeeID     id.EmployeeID     `json:"employeeId,omitempty"`
}

func (h Hierarchy) IsZero() bool {
	return h == Hierarchy{}
}

// HierarchyKey is the four coordinate lookup used by the employee route.
type HierarchyKey struct {
	Hierarchy
	EnrollmentID id.EnrollmentID
}

// Enrollment links a customer to a benefits plan.
//
// Invariants:
//   - ID, CustomerID and PlanID are non-empty
//   - ID, CustomerID, PlanID and EnrollmentDate never change after creation
//   - SelectedBenefits is never nil and holds no duplicates
//   - Status only moves along CanTransitionTo
type Enrollment struct {
	ID               id.EnrollmentID `json:"enrollmentId"`
	CustomerID       id.CustomerID   `json:"customerId"`
	PlanID           id.PlanID       `json:"planId"`
	PlanName         string          `json:"planName"`
	SelectedBenefits []string        `json:"selectedBenefits"`
	Status           Status          `json:"status"`
	EnrollmentDate   time.Time       `json:"enrollmentDate"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Hierarchy
}

func (e *Enrollment) IsActive() bool {
	return e.Status == StatusActive
}

// Matches reports whether e sits at every coordinate of key.
func (e *Enrollment) Matches(key HierarchyKey) bool {
	return e.ID == key.EnrollmentID && e.Hierarchy == key.Hierarchy
}

// CanTransitionTo returns an InvalidTransitionError when e cannot move to to.
// Use with ApplyTransition inside a store's atomic section.
func (e *Enrollment) CanTransitionTo(to Status) error {
	if !e.Status.CanTransitionTo(to) {
		return &InvalidTransitionError{From: e.Status, To: to}
	}
	return nil
}

// ApplyTransition sets the status and stamps UpdatedAt.
// Call CanTransitionTo first.
func (e *Enrollment) ApplyTransition(to Status, now time.Time) {
	e.Status = to
	e.UpdatedAt = now
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (e *Enrollment) Clone() *Enrollment {
	if e == nil {
		return nil
	}
	c := *e
	c.SelectedBenefits = append(make([]string, 0, len(e.SelectedBenefits)), e.SelectedBenefits...)
	return &c
}

// NewEnrollment builds a pending enrollment from a validated request.
func NewEnrollment(enrollmentID id.EnrollmentID, req *CreateEnrollmentRequest, planName string, now time.Time) (*Enrollment, error) {
	if enrollmentID.IsNil() {
		return nil, missingField(FieldEnrollmentID)
	}
	if err := ValidateCreate(req); err != nil {
		return nil, err
	}
	if planName == "" {
		planName = req.PlanID
	}
	return &Enrollment{
		ID:               enrollmentID,
		CustomerID:       id.CustomerID(req.CustomerID),
		PlanID:           id.PlanID(req.PlanID),
		PlanName:         planName,
		SelectedBenefits: append(make([]string, 0, len(req.SelectedBenefits)), req.SelectedBenefits...),
		Status:           StatusPending,
		EnrollmentDate:   now,
		UpdatedAt:        now,
		Hierarchy: Hierarchy{
			OrganizationID: id.OrganizationID(req.OrganizationID),
			DepartmentID:   id.DepartmentID(req.DepartmentID),
			EmployeeID:     id.EmployeeID(req.EmployeeID),
		},
	}, nil
}
