package audit

import (
	"context"
	"time"

	id "benefits-bff/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers changes to a customer's coverage. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted after an enrollment changes state. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         string
	Category   EventCategory
	Timestamp  time.Time
	CustomerID id.CustomerID
	// Subject is the enrollment the event is about.
	Subject   id.EnrollmentID
	Action    string
	RequestID string
	ClientApp string
	// Details carries action specific context (plan id, previous status).
	Details map[string]string
}

type AuditEvent string

const (
	EventEnrollmentCreated   AuditEvent = "enrollment_created"
	EventEnrollmentActivated AuditEvent = "enrollment_activated"
	EventEnrollmentDeleted   AuditEvent = "enrollment_deleted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventEnrollmentCreated:   CategoryCompliance,
	EventEnrollmentActivated: CategoryCompliance,
	EventEnrollmentDeleted:   CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]Event, error)
}
