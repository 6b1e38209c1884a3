package handler

import (
	"time"

	"benefits-bff/internal/enrollment/models"
)

// EnrollmentResponse is the enrollment as clients see it. IsActive and
// Benefits keep the field names existing front ends read.
type EnrollmentResponse struct {
	EnrollmentID   string    `json:"enrollmentId"`
	CustomerID     string    `json:"customerId"`
	PlanID         string    `json:"planId"`
	PlanName       string    `json:"planName"`
	IsActive       bool      `json:"isActive"`
	Status         string    `json:"status"`
	Benefits       []string  `json:"benefits"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	OrganizationID string    `json:"organizationId,omitempty"`
	DepartmentID   string    `json:"departmentId,omitempty"`
	EmployeeID     string    `json:"employeeId,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DeleteResponse struct {
	Message   string `json:"message"`
	DeletedID string `json:"deletedId"`
}

type StatusResponse struct {
	EnrollmentID string `json:"enrollmentId"`
	Status       string `json:"status"`
	ClientApp    string `json:"clientApp"`
}

func toEnrollmentResponse(e *models.Enrollment) EnrollmentResponse {
	benefits := e.SelectedBenefits
	if benefits == nil {
		benefits = []string{}
	}
	return EnrollmentResponse{
		EnrollmentID:   e.ID.String(),
		CustomerID:     e.CustomerID.String(),
		PlanID:         e.PlanID.String(),
		PlanName:       e.PlanName,
		IsActive:       e.IsActive(),
		Status:         e.Status.String(),
		Benefits:       benefits,
		EnrollmentDate: e.EnrollmentDate,
		OrganizationID: e.OrganizationID.String(),
		DepartmentID:   e.DepartmentID.String(),
		EmployeeID:     e.EmployeeID.String(),
	}
}
