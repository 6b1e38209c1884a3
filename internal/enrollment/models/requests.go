package models

import (
	"strings"

	id "benefits-bff/pkg/domain"
	dErrors "benefits-bff/pkg/domain-errors"
	pkgstrings "benefits-bff/pkg/platform/strings"
)

// CreateEnrollmentRequest is the create payload. Hierarchy ids are optional.
type CreateEnrollmentRequest struct {
	CustomerID       string   `json:"customerId"`
	PlanID           string   `json:"planId"`
	SelectedBenefits []string `json:"selectedBenefits"`
	OrganizationID   string   `json:"organizationId,omitempty"`
	DepartmentID     string   `json:"departmentId,omitempty"`
	EmployeeID       string   `json:"employeeId,omitempty"`
}

// Normalize trims ids and turns SelectedBenefits into a non-nil set.
func (r *CreateEnrollmentRequest) Normalize() {
	if r == nil {
		return
	}
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.PlanID = strings.TrimSpace(r.PlanID)
	r.OrganizationID = strings.TrimSpace(r.OrganizationID)
	r.DepartmentID = strings.TrimSpace(r.DepartmentID)
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	r.SelectedBenefits = pkgstrings.DedupeAndTrim(r.SelectedBenefits)
}

// Validate normalizes the request and runs ValidateCreate.
func (r *CreateEnrollmentRequest) Validate() error {
	r.Normalize()
	return ValidateCreate(r)
}

// ValidateCreate checks required fields in order: customerId, then planId.
// It normalizes a nil SelectedBenefits to an empty set.
func ValidateCreate(req *CreateEnrollmentRequest) error {
	if req == nil {
		return missingField(FieldCustomerID)
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		return missingField(FieldCustomerID)
	}
	if strings.TrimSpace(req.PlanID) == "" {
		return missingField(FieldPlanID)
	}
	if req.SelectedBenefits == nil {
		req.SelectedBenefits = []string{}
	}
	return nil
}

// ValidateActivate requires a non-empty enrollment id.
func ValidateActivate(enrollmentID id.EnrollmentID) error {
	return requireEnrollmentID(enrollmentID)
}

// ValidateDelete requires a non-empty enrollment id.
func ValidateDelete(enrollmentID id.EnrollmentID) error {
	return requireEnrollmentID(enrollmentID)
}

func requireEnrollmentID(enrollmentID id.EnrollmentID) error {
	if strings.TrimSpace(enrollmentID.String()) == "" {
		return missingField(FieldEnrollmentID)
	}
	return nil
}

// missingField returns a validation-coded error carrying a MissingFieldError.
func missingField(field string) error {
	return dErrors.Wrap(&MissingFieldError{Field: field}, dErrors.CodeValidation, "")
}
