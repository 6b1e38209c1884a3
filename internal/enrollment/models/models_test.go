package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "benefits-bff/pkg/domain"
	dErrors "benefits-bff/pkg/domain-errors"
	"benefits-bff/pkg/platform/sentinel"
)

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name      string
		req       *CreateEnrollmentRequest
		wantField string
	}{
		{"nil request", nil, FieldCustomerID},
		{"empty customer", &CreateEnrollmentRequest{PlanID: "P1"}, FieldCustomerID},
		{"blank customer", &CreateEnrollmentRequest{CustomerID: "   ", PlanID: "P1"}, FieldCustomerID},
		{"customer reported before plan", &CreateEnrollmentRequest{}, FieldCustomerID},
		{"empty plan", &CreateEnrollmentRequest{CustomerID: "C1"}, FieldPlanID},
		{"valid", &CreateEnrollmentRequest{CustomerID: "C1", PlanID: "P1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(tt.req)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			var mf *MissingFieldError
			require.True(t, errors.As(err, &mf))
			assert.Equal(t, tt.wantField, mf.Field)
			assert.True(t, IsMissingField(err))
		})
	}
}

func TestValidateCreateNormalizesBenefits(t *testing.T) {
	req := &CreateEnrollmentRequest{CustomerID: "C1", PlanID: "P1"}
	require.NoError(t, ValidateCreate(req))
	assert.NotNil(t, req.SelectedBenefits)
	assert.Empty(t, req.SelectedBenefits)
}

func TestRequestValidateTrimsAndDedupes(t *testing.T) {
	req := &CreateEnrollmentRequest{
		CustomerID:       "  C1 ",
		PlanID:           " P1",
		SelectedBenefits: []string{" DENTAL", "VISION", "DENTAL", ""},
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "C1", req.CustomerID)
	assert.Equal(t, "P1", req.PlanID)
	assert.Equal(t, []string{"DENTAL", "VISION"}, req.SelectedBenefits)
}

func TestValidateActivateAndDelete(t *testing.T) {
	for name, fn := range map[string]func(id.EnrollmentID) error{
		"activate": ValidateActivate,
		"delete":   ValidateDelete,
	} {
		t.Run(name, func(t *testing.T) {
			err := fn("")
			require.Error(t, err)
			var mf *MissingFieldError
			require.True(t, errors.As(err, &mf))
			assert.Equal(t, FieldEnrollmentID, mf.Field)

			assert.Error(t, fn("  "))
			assert.NoError(t, fn("enr-1"))
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		legal    bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusDeleted, true},
		{StatusActive, StatusDeleted, true},
		{StatusActive, StatusActive, false},
		{StatusActive, StatusPending, false},
		{StatusDeleted, StatusActive, false},
		{StatusDeleted, StatusPending, false},
		{StatusDeleted, StatusDeleted, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.legal, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusActive, StatusDeleted} {
		assert.True(t, st.IsValid(), string(st))
	}
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("suspended").IsValid())
}

func TestEnrollmentCanTransitionTo(t *testing.T) {
	e := &Enrollment{ID: "enr-1", Status: StatusActive}
	err := e.CanTransitionTo(StatusActive)
	require.Error(t, err)

	var it *InvalidTransitionError
	require.True(t, errors.As(err, &it))
	assert.Equal(t, StatusActive, it.From)
	assert.Equal(t, StatusActive, it.To)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	assert.Equal(t, "cannot transition enrollment from active to active", err.Error())

	require.NoError(t, e.CanTransitionTo(StatusDeleted))
}

func TestNewEnrollment(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	req := &CreateEnrollmentRequest{
		CustomerID:       "C1",
		PlanID:           "P1",
		SelectedBenefits: []string{"DENTAL"},
		OrganizationID:   "org1",
	}

	t.Run("builds pending record", func(t *testing.T) {
		e, err := NewEnrollment("enr-1", req, "Gold PPO", now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, e.Status)
		assert.Equal(t, now, e.EnrollmentDate)
		assert.Equal(t, "Gold PPO", e.PlanName)
		assert.Equal(t, []string{"DENTAL"}, e.SelectedBenefits)
		assert.Equal(t, id.OrganizationID("org1"), e.OrganizationID)
		assert.False(t, e.IsActive())

		req.SelectedBenefits[0] = "mutated"
		assert.Equal(t, "DENTAL", e.SelectedBenefits[0], "record must not alias the request")
		req.SelectedBenefits[0] = "DENTAL"
	})

	t.Run("plan name falls back to plan id", func(t *testing.T) {
		e, err := NewEnrollment("enr-1", req, "", now)
		require.NoError(t, err)
		assert.Equal(t, "P1", e.PlanName)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		_, err := NewEnrollment("", req, "", now)
		assert.True(t, IsMissingField(err))
	})
}

func TestCloneIsDeep(t *testing.T) {
	e := &Enrollment{ID: "enr-1", SelectedBenefits: []string{"A"}}
	c := e.Clone()
	c.SelectedBenefits[0] = "B"
	c.Status = StatusActive
	assert.Equal(t, "A", e.SelectedBenefits[0])
	assert.Equal(t, Status(""), e.Status)

	var nilEnrollment *Enrollment
	assert.Nil(t, nilEnrollment.Clone())
}

func TestMatches(t *testing.T) {
	e := &Enrollment{
		ID:        "enr1",
		Hierarchy: Hierarchy{OrganizationID: "org1", DepartmentID: "dept1", EmployeeID: "emp1"},
	}
	key := HierarchyKey{Hierarchy: e.Hierarchy, EnrollmentID: "enr1"}
	assert.True(t, e.Matches(key))

	key.DepartmentID = "dept2"
	assert.False(t, e.Matches(key))

	direct := &Enrollment{ID: "enr1"}
	assert.False(t, direct.Matches(HierarchyKey{Hierarchy: e.Hierarchy, EnrollmentID: "enr1"}))
}
