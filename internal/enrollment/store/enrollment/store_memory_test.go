package enrollment

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"benefits-bff/internal/enrollment/models"
	id "benefits-bff/pkg/domain"
	"benefits-bff/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newEnrollment(customer string, at time.Time) *models.Enrollment {
	return &models.Enrollment{
		ID:               id.NewEnrollmentID(),
		CustomerID:       id.CustomerID(customer),
		PlanID:           "P1",
		PlanName:         "Gold",
		SelectedBenefits: []string{"DENTAL"},
		Status:           models.StatusPending,
		EnrollmentDate:   at,
		UpdatedAt:        at,
	}
}

func (s *InMemoryStoreSuite) TestInsertAndGet() {
	s.Run("round trips a copy", func() {
		e := s.newEnrollment("C1", s.now)
		s.Require().NoError(s.store.Insert(s.ctx, e))

		e.SelectedBenefits[0] = "mutated after insert"
		got, err := s.store.Get(s.ctx, e.ID)
		s.Require().NoError(err)
		s.Equal("DENTAL", got.SelectedBenefits[0])

		got.Status = models.StatusActive
		again, _ := s.store.Get(s.ctx, e.ID)
		s.Equal(models.StatusPending, again.Status, "callers must not mutate stored state")
	})

	s.Run("duplicate id is rejected", func() {
		e := s.newEnrollment("C1", s.now)
		s.Require().NoError(s.store.Insert(s.ctx, e))
		s.ErrorIs(s.store.Insert(s.ctx, e), sentinel.ErrAlreadyUsed)
	})

	s.Run("deleted id is never reused", func() {
		e := s.newEnrollment("C1", s.now)
		s.Require().NoError(s.store.Insert(s.ctx, e))
		_, err := s.store.Delete(s.ctx, e.ID, s.now)
		s.Require().NoError(err)
		s.ErrorIs(s.store.Insert(s.ctx, e), sentinel.ErrAlreadyUsed)
	})

	s.Run("unknown id", func() {
		_, err := s.store.Get(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestListByCustomer() {
	s.Run("orders by enrollment date ascending", func() {
		later := s.newEnrollment("C2", s.now.Add(2*time.Hour))
		earliest := s.newEnrollment("C2", s.now)
		middle := s.newEnrollment("C2", s.now.Add(time.Hour))
		for _, e := range []*models.Enrollment{later, earliest, middle} {
			s.Require().NoError(s.store.Insert(s.ctx, e))
		}
		s.Require().NoError(s.store.Insert(s.ctx, s.newEnrollment("someone-else", s.now)))

		list, err := s.store.ListByCustomer(s.ctx, "C2")
		s.Require().NoError(err)
		s.Require().Len(list, 3)
		s.Equal(earliest.ID, list[0].ID)
		s.Equal(middle.ID, list[1].ID)
		s.Equal(later.ID, list[2].ID)
	})

	s.Run("unknown customer yields empty, non-nil slice", func() {
		list, err := s.store.ListByCustomer(s.ctx, "nobody")
		s.Require().NoError(err)
		s.NotNil(list)
		s.Empty(list)
	})
}

func (s *InMemoryStoreSuite) TestFindByHierarchy() {
	e := s.newEnrollment("C3", s.now)
	e.Hierarchy = models.Hierarchy{OrganizationID: "org1", DepartmentID: "dept1", EmployeeID: "emp1"}
	s.Require().NoError(s.store.Insert(s.ctx, e))

	s.Run("matches all four coordinates", func() {
		got, err := s.store.FindByHierarchy(s.ctx, models.HierarchyKey{Hierarchy: e.Hierarchy, EnrollmentID: e.ID})
		s.Require().NoError(err)
		s.Equal(e.ID, got.ID)
	})

	s.Run("any mismatch is not found", func() {
		key := models.HierarchyKey{Hierarchy: e.Hierarchy, EnrollmentID: e.ID}
		key.EmployeeID = "emp2"
		_, err := s.store.FindByHierarchy(s.ctx, key)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("never created", func() {
		_, err := s.store.FindByHierarchy(s.ctx, models.HierarchyKey{
			Hierarchy:    models.Hierarchy{OrganizationID: "org1", DepartmentID: "dept1", EmployeeID: "emp1"},
			EnrollmentID: "enr1",
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestUpdateStatus() {
	e := s.newEnrollment("C4", s.now)
	s.Require().NoError(s.store.Insert(s.ctx, e))
	later := s.now.Add(time.Minute)

	updated, err := s.store.UpdateStatus(s.ctx, e.ID, models.StatusActive, later)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, updated.Status)
	s.Equal(later, updated.UpdatedAt)
	s.Equal(s.now, updated.EnrollmentDate)

	_, err = s.store.UpdateStatus(s.ctx, e.ID, models.StatusActive, later)
	s.True(models.IsInvalidTransition(err))

	_, err = s.store.UpdateStatus(s.ctx, "missing", models.StatusActive, later)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestExecuteLeavesRecordOnValidationError() {
	e := s.newEnrollment("C5", s.now)
	s.Require().NoError(s.store.Insert(s.ctx, e))

	boom := fmt.Errorf("rejected")
	_, err := s.store.Execute(s.ctx, e.ID,
		func(*models.Enrollment) error { return boom },
		func(e *models.Enrollment) { e.Status = models.StatusDeleted },
	)
	s.ErrorIs(err, boom)

	got, _ := s.store.Get(s.ctx, e.ID)
	s.Equal(models.StatusPending, got.Status)
}

func (s *InMemoryStoreSuite) TestDelete() {
	e := s.newEnrollment("C6", s.now)
	s.Require().NoError(s.store.Insert(s.ctx, e))

	prev, err := s.store.Delete(s.ctx, e.ID, s.now)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, prev)

	prev, err = s.store.Delete(s.ctx, e.ID, s.now.Add(time.Hour))
	s.Require().NoError(err, "delete is idempotent")
	s.Equal(models.StatusDeleted, prev)

	got, _ := s.store.Get(s.ctx, e.ID)
	s.Equal(models.StatusDeleted, got.Status)
	s.Equal(s.now, got.UpdatedAt, "repeat delete writes nothing")

	_, err = s.store.UpdateStatus(s.ctx, e.ID, models.StatusActive, s.now)
	s.True(models.IsInvalidTransition(err), "nothing leaves deleted")

	_, err = s.store.Delete(s.ctx, "missing", s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentActivateAndDelete races activate against delete on the same id.
// Every outcome must match one of the two serial orders.
func (s *InMemoryStoreSuite) TestConcurrentActivateAndDelete() {
	const rounds = 200
	for range rounds {
		e := s.newEnrollment("C7", s.now)
		s.Require().NoError(s.store.Insert(s.ctx, e))

		var wg sync.WaitGroup
		var activateErr, deleteErr error
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, activateErr = s.store.UpdateStatus(s.ctx, e.ID, models.StatusActive, s.now)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, deleteErr = s.store.Delete(s.ctx, e.ID, s.now)
		}()
		close(start)
		wg.Wait()

		s.Require().NoError(deleteErr)
		got, err := s.store.Get(s.ctx, e.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDeleted, got.Status)
		if activateErr != nil {
			// delete ran first: activate must have seen deleted
			s.True(models.IsInvalidTransition(activateErr))
		}
	}
}

// TestConcurrentActivateExactlyOnce verifies that only one of many concurrent
// activations of one pending enrollment succeeds.
func (s *InMemoryStoreSuite) TestConcurrentActivateExactlyOnce() {
	e := s.newEnrollment("C8", s.now)
	s.Require().NoError(s.store.Insert(s.ctx, e))

	const goroutines = 50
	var wg sync.WaitGroup
	var success, conflict atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.UpdateStatus(s.ctx, e.ID, models.StatusActive, s.now)
			switch {
			case err == nil:
				success.Add(1)
			case models.IsInvalidTransition(err):
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(goroutines-1), conflict.Load())
}

// TestConcurrentInsertsAcrossCustomers checks the customer index under load.
func (s *InMemoryStoreSuite) TestConcurrentInsertsAcrossCustomers() {
	const customers, perCustomer = 10, 20
	var wg sync.WaitGroup
	for c := range customers {
		for range perCustomer {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.NoError(s.store.Insert(s.ctx, s.newEnrollment(fmt.Sprintf("cust-%d", c), s.now)))
			}()
		}
	}
	wg.Wait()

	for c := range customers {
		list, err := s.store.ListByCustomer(s.ctx, id.CustomerID(fmt.Sprintf("cust-%d", c)))
		s.Require().NoError(err)
		s.Len(list, perCustomer)
	}
}
