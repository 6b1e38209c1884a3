package enrollment

import (
	"cmp"
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"
	"time"

	"benefits-bff/internal/enrollment/models"
	id "benefits-bff/pkg/domain"
	"benefits-bff/pkg/platform/sentinel"
)

// numShards spreads enrollment ids over independent locks so writes to
// unrelated enrollments never contend.
const numShards = 64

type shard struct {
	mu      sync.RWMutex
	records map[id.EnrollmentID]*models.Enrollment
}

// InMemory stores enrollments in sharded maps.
//
// Writes to one id hold that id's shard lock for the whole check-and-apply,
// and replace the stored pointer with a fresh copy. Readers take the shard
// read lock and receive clones, so they never see a half-applied change.
type InMemory struct {
	shards [numShards]*shard

	// customers indexes enrollment ids by customer. Entries are only ever
	// appended; ids are never reused, so the index never goes stale.
	idxMu     sync.RWMutex
	customers map[id.CustomerID][]id.EnrollmentID
}

func NewInMemory() *InMemory {
	s := &InMemory{customers: make(map[id.CustomerID][]id.EnrollmentID)}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[id.EnrollmentID]*models.Enrollment)}
	}
	return s
}

func (s *InMemory) shardFor(enrollmentID id.EnrollmentID) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(enrollmentID))
	return s.shards[h.Sum32()%numShards]
}

// Insert stores a new enrollment. An existing id, deleted or not, yields
// sentinel.ErrAlreadyUsed.
func (s *InMemory) Insert(_ context.Context, e *models.Enrollment) error {
	sh := s.shardFor(e.ID)
	sh.mu.Lock()
	if _, exists := sh.records[e.ID]; exists {
		sh.mu.Unlock()
		return fmt.Errorf("enrollment %s: %w", e.ID, sentinel.ErrAlreadyUsed)
	}
	sh.records[e.ID] = e.Clone()
	sh.mu.Unlock()

	s.idxMu.Lock()
	s.customers[e.CustomerID] = append(s.customers[e.CustomerID], e.ID)
	s.idxMu.Unlock()
	return nil
}

func (s *InMemory) Get(_ context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error) {
	sh := s.shardFor(enrollmentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.records[enrollmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.Clone(), nil
}

// ListByCustomer returns the customer's enrollments, including deleted ones,
// ordered by enrollment date then id. Unknown customers get an empty slice.
func (s *InMemory) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*models.Enrollment, error) {
	s.idxMu.RLock()
	ids := slices.Clone(s.customers[customerID])
	s.idxMu.RUnlock()

	out := make([]*models.Enrollment, 0, len(ids))
	for _, enrollmentID := range ids {
		e, err := s.Get(ctx, enrollmentID)
		if err != nil {
			// indexed after the record was written, so this cannot happen
			return nil, fmt.Errorf("customer index points at missing enrollment %s: %w", enrollmentID, err)
		}
		out = append(out, e)
	}
	sortByEnrollmentDate(out)
	return out, nil
}

// FindByHierarchy is a filtered read on the primary key.
func (s *InMemory) FindByHierarchy(ctx context.Context, key models.HierarchyKey) (*models.Enrollment, error) {
	e, err := s.Get(ctx, key.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if !e.Matches(key) {
		return nil, sentinel.ErrNotFound
	}
	return e, nil
}

// Execute runs validate then mutate on a copy of the record under the id's
// write lock and stores the copy only when validate succeeds.
func (s *InMemory) Execute(_ context.Context, enrollmentID id.EnrollmentID, validate func(*models.Enrollment) error, mutate func(*models.Enrollment)) (*models.Enrollment, error) {
	sh := s.shardFor(enrollmentID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.records[enrollmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	next := current.Clone()
	if err := validate(next); err != nil {
		return nil, err
	}
	mutate(next)
	sh.records[enrollmentID] = next
	return next.Clone(), nil
}

// UpdateStatus applies a legal transition atomically. Illegal moves return
// *models.InvalidTransitionError.
func (s *InMemory) UpdateStatus(ctx context.Context, enrollmentID id.EnrollmentID, to models.Status, now time.Time) (*models.Enrollment, error) {
	return s.Execute(ctx, enrollmentID,
		func(e *models.Enrollment) error { return e.CanTransitionTo(to) },
		func(e *models.Enrollment) { e.ApplyTransition(to, now) },
	)
}

// Delete marks the enrollment deleted and returns its previous status.
// Deleting a deleted enrollment changes nothing and succeeds.
func (s *InMemory) Delete(_ context.Context, enrollmentID id.EnrollmentID, now time.Time) (models.Status, error) {
	sh := s.shardFor(enrollmentID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.records[enrollmentID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	previous := current.Status
	if previous == models.StatusDeleted {
		return previous, nil
	}
	next := current.Clone()
	next.ApplyTransition(models.StatusDeleted, now)
	sh.records[enrollmentID] = next
	return previous, nil
}

func sortByEnrollmentDate(list []*models.Enrollment) {
	slices.SortStableFunc(list, func(a, b *models.Enrollment) int {
		if c := a.EnrollmentDate.Compare(b.EnrollmentDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
