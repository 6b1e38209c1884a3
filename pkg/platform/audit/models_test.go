package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventEnrollmentCreated.Category())
	assert.Equal(t, CategoryCompliance, EventEnrollmentActivated.Category())
	assert.Equal(t, CategoryCompliance, EventEnrollmentDeleted.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("enrollment_viewed").Category())
}
