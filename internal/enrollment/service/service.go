package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"benefits-bff/internal/enrollment/metrics"
	"benefits-bff/internal/enrollment/models"
	"benefits-bff/internal/enrollment/store/idempotency"
	id "benefits-bff/pkg/domain"
	dErrors "benefits-bff/pkg/domain-errors"
	"benefits-bff/pkg/platform/audit"
	"benefits-bff/pkg/requestcontext"
)

// Store is the single source of truth for enrollments. Implementations make
// each write to one id atomic and return sentinel errors.
type Store interface {
	Insert(ctx context.Context, e *models.Enrollment) error
	Get(ctx context.Context, enrollmentID id.EnrollmentID) (*models.Enrollment, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*models.Enrollment, error)
	FindByHierarchy(ctx context.Context, key models.HierarchyKey) (*models.Enrollment, error)
	UpdateStatus(ctx context.Context, enrollmentID id.EnrollmentID, to models.Status, now time.Time) (*models.Enrollment, error)
	Delete(ctx context.Context, enrollmentID id.EnrollmentID, now time.Time) (models.Status, error)
}

type PlanCatalog interface {
	PlanName(ctx context.Context, planID id.PlanID) (string, error)
}

type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (idempotency.Reservation, error)
	Complete(ctx context.Context, key string, enrollmentID id.EnrollmentID, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultIdempotencyLease = time.Minute
)

// Service is the enrollment lifecycle manager. It validates requests, assigns
// ids, enforces legal transitions through the store and holds no enrollment
// state of its own.
type Service struct {
	store          Store
	catalog        PlanCatalog
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	// idempotencyLease bounds how long an unfinished create holds its key.
	idempotencyLease time.Duration
	newID            id.IDGenerator
	logger           *slog.Logger
	auditPublisher   AuditPublisher
	metrics          *metrics.Metrics
	tracer           trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCatalog(c PlanCatalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithIdempotency enables Idempotency-Key handling on create.
func WithIdempotency(store IdempotencyStore, ttl time.Duration) Option {
	return func(s *Service) {
		s.idempotency = store
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// WithIdempotencyLease sets how long a key stays in flight before Complete.
// A create that dies before completing frees its key once the lease runs out.
func WithIdempotencyLease(lease time.Duration) Option {
	return func(s *Service) {
		if lease > 0 {
			s.idempotencyLease = lease
		}
	}
}

func WithIDGenerator(gen id.IDGenerator) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:            store,
		idempotencyTTL:   defaultIdempotencyTTL,
		idempotencyLease: defaultIdempotencyLease,
		newID:            id.NewEnrollmentID,
		logger:           slog.Default(),
		tracer:           otel.Tracer("benefits-bff/internal/enrollment/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEnrollment validates req, assigns an id and stores a pending enrollment.
func (s *Service) CreateEnrollment(ctx context.Context, req *models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	ctx, span := s.startSpan(ctx, "CreateEnrollment")
	defer span.End()
	defer s.observe("create", time.Now())

	e, err := s.create(ctx, req)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("enrollment.id", e.ID.String()))
	return e, nil
}

// CreateEnrollmentIdempotent is CreateEnrollment keyed by a client supplied
// Idempotency-Key. Keys are scoped to the request's customer. A key already
// bound to an enrollment returns that enrollment with replayed=true, unless the
// replay asks for a different plan, which is a conflict. A key whose create is
// still running yields a conflict. Without a key, or without an idempotency
// store, it is a plain create.
func (s *Service) CreateEnrollmentIdempotent(ctx context.Context, key string, req *models.CreateEnrollmentRequest) (e *models.Enrollment, replayed bool, err error) {
	if key == "" || s.idempotency == nil {
		e, err = s.CreateEnrollment(ctx, req)
		return e, false, err
	}

	ctx, span := s.startSpan(ctx, "CreateEnrollmentIdempotent")
	defer span.End()
	defer s.observe("create", time.Now())

	if err := req.Validate(); err != nil {
		return nil, false, s.fail(span, err)
	}
	key = idempotency.ScopedKey(id.CustomerID(req.CustomerID), key)

	reservation, err := s.idempotency.Reserve(ctx, key, s.idempotencyLease)
	if err != nil {
		return nil, false, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve idempotency key"))
	}

	switch reservation.State {
	case idempotency.InFlight:
		return nil, false, s.fail(span, dErrors.New(dErrors.CodeConflict, "a request with this Idempotency-Key is still in progress"))
	case idempotency.Completed:
		existing, err := s.store.Get(ctx, reservation.EnrollmentID)
		if err != nil {
			return nil, false, s.fail(span, s.translate(ctx, err, "failed to load enrollment"))
		}
		if existing.CustomerID != id.CustomerID(req.CustomerID) || existing.PlanID != id.PlanID(req.PlanID) {
			return nil, false, s.fail(span, dErrors.New(dErrors.CodeConflict, "Idempotency-Key was already used for a different enrollment request"))
		}
		s.incrementReplay()
		span.SetAttributes(attribute.Bool("enrollment.replayed", true))
		return existing, true, nil
	}

	e, err = s.create(ctx, req)
	if err != nil {
		// never leave a key bound to a failed create
		if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
			s.logger.WarnContext(ctx, "failed to release idempotency key",
				"request_id", requestcontext.RequestID(ctx),
				"error", relErr,
			)
		}
		return nil, false, s.fail(span, err)
	}
	if err := s.idempotency.Complete(ctx, key, e.ID, s.idempotencyTTL); err != nil {
		// the enrollment exists; a retry after this will create a second one
		s.logger.ErrorContext(ctx, "failed to bind idempotency key",
			"request_id", requestcontext.RequestID(ctx),
			"enrollment_id", e.ID,
			"error", err,
		)
	}
	span.SetAttributes(attribute.String("enrollment.id", e.ID.String()))
	return e, false, nil
}

// create normalizes req in place before validating it.
func (s *Service) create(ctx context.Context, req *models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	req.Normalize()
	if err := models.ValidateCreate(req); err != nil {
		return nil, err
	}

	planName, err := s.planName(ctx, id.PlanID(req.PlanID))
	if err != nil {
		return nil, err
	}

	e, err := models.NewEnrollment(s.newID(), req, planName, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return nil, s.translate(ctx, err, "failed to create enrollment")
	}

	details := map[string]string{"plan_id": e.PlanID.String()}
	if !e.Hierarchy.IsZero() {
		details["organization_id"] = e.OrganizationID.String()
		details["department_id"] = e.DepartmentID.String()
		details["employee_id"] = e.EmployeeID.String()
	}
	s.logAudit(ctx, audit.EventEnrollmentCreated, e, details)
	s.incrementCreated()
	return e, nil
}

func (s *Service) planName(ctx context.Context, planID id.PlanID) (string, error) {
	if s.catalog == nil {
		return planID.String(), nil
	}
	name, err := s.catalog.PlanName(ctx, planID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve plan name")
	}
	return name, nil
}

// ActivateEnrollment moves a pending enrollment to active.
func (s *Service) ActivateEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) error {
	ctx, span := s.startSpan(ctx, "ActivateEnrollment", attribute.String("enrollment.id", enrollmentID.String()))
	defer span.End()
	defer s.observe("activate", time.Now())

	if err := models.ValidateActivate(enrollmentID); err != nil {
		return s.fail(span, err)
	}
	e, err := s.store.UpdateStatus(ctx, enrollmentID, models.StatusActive, requestcontext.Now(ctx))
	if err != nil {
		return s.fail(span, s.translate(ctx, err, "failed to activate enrollment"))
	}

	s.logAudit(ctx, audit.EventEnrollmentActivated, e, map[string]string{"from": models.StatusPending.String()})
	s.incrementTransition(models.StatusActive)
	return nil
}

// DeleteEnrollment marks an enrollment deleted. Repeating it succeeds and
// emits nothing.
func (s *Service) DeleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) error {
	ctx, span := s.startSpan(ctx, "DeleteEnrollment", attribute.String("enrollment.id", enrollmentID.String()))
	defer span.End()
	defer s.observe("delete", time.Now())

	if err := models.ValidateDelete(enrollmentID); err != nil {
		return s.fail(span, err)
	}
	previous, err := s.store.Delete(ctx, enrollmentID, requestcontext.Now(ctx))
	if err != nil {
		return s.fail(span, s.translate(ctx, err, "failed to delete enrollment"))
	}
	if previous == models.StatusDeleted {
		span.SetAttributes(attribute.Bool("enrollment.already_deleted", true))
		return nil
	}

	// the record is needed for the audit subject; a failed read only costs the event
	e, err := s.store.Get(ctx, enrollmentID)
	if err != nil {
		s.logger.WarnContext(ctx, "deleted enrollment could not be reloaded for audit",
			"request_id", requestcontext.RequestID(ctx),
			"enrollment_id", enrollmentID,
			"error", err,
		)
		e = &models.Enrollment{ID: enrollmentID}
	}
	s.logAudit(ctx, audit.EventEnrollmentDeleted, e, map[string]string{"from": previous.String()})
	s.incrementTransition(models.StatusDeleted)
	return nil
}

// GetCustomerEnrollments lists a customer's enrollments by enrollment date.
// A customer with none gets an empty slice.
func (s *Service) GetCustomerEnrollments(ctx context.Context, customerID id.CustomerID) ([]*models.Enrollment, error) {
	ctx, span := s.startSpan(ctx, "GetCustomerEnrollments", attribute.String("customer.id", customerID.String()))
	defer span.End()
	defer s.observe("list", time.Now())

	if customerID.IsNil() {
		return []*models.Enrollment{}, nil
	}
	list, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, s.fail(span, s.translate(ctx, err, "failed to list enrollments"))
	}
	if list == nil {
		list = []*models.Enrollment{}
	}
	span.SetAttributes(attribute.Int("enrollment.count", len(list)))
	return list, nil
}

// GetEmployeeEnrollment returns the enrollment only when it sits at every
// coordinate of key.
func (s *Service) GetEmployeeEnrollment(ctx context.Context, key models.HierarchyKey) (*models.Enrollment, error) {
	ctx, span := s.startSpan(ctx, "GetEmployeeEnrollment",
		attribute.String("enrollment.id", key.EnrollmentID.String()),
		attribute.String("organization.id", key.OrganizationID.String()),
	)
	defer span.End()
	defer s.observe("get_employee", time.Now())

	e, err := s.store.FindByHierarchy(ctx, key)
	if err != nil {
		return nil, s.fail(span, s.translate(ctx, err, "failed to load enrollment"))
	}
	return e, nil
}

// GetEnrollmentStatus returns the current status of an enrollment.
func (s *Service) GetEnrollmentStatus(ctx context.Context, enrollmentID id.EnrollmentID) (models.Status, error) {
	ctx, span := s.startSpan(ctx, "GetEnrollmentStatus", attribute.String("enrollment.id", enrollmentID.String()))
	defer span.End()
	defer s.observe("status", time.Now())

	if enrollmentID.IsNil() {
		return "", s.fail(span, dErrors.Wrap(&models.MissingFieldError{Field: models.FieldEnrollmentID}, dErrors.CodeValidation, ""))
	}
	e, err := s.store.Get(ctx, enrollmentID)
	if err != nil {
		return "", s.fail(span, s.translate(ctx, err, "failed to load enrollment"))
	}
	return e.Status, nil
}

// translate maps store errors onto domain error codes. The store error stays
// in the chain so models.Is* predicates keep working.
func (s *Service) translate(ctx context.Context, err error, internalMsg string) error {
	switch {
	case models.IsNotFound(err):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "enrollment not found")
	case models.IsInvalidTransition(err):
		return dErrors.Wrap(err, dErrors.CodeConflict, "")
	case models.IsDuplicateID(err):
		return dErrors.Wrap(err, dErrors.CodeConflict, "enrollment id already exists")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	}
	s.logger.ErrorContext(ctx, internalMsg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, e *models.Enrollment, details map[string]string) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"enrollment_id", e.ID,
		"customer_id", e.CustomerID,
		"request_id", requestID,
		"event", string(event),
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp:  requestcontext.Now(ctx),
		CustomerID: e.CustomerID,
		Subject:    e.ID,
		Action:     string(event),
		RequestID:  requestID,
		ClientApp:  requestcontext.ClientApp(ctx),
		Details:    details,
	})
	if err != nil {
		// the state change is committed; a lost event is logged, not surfaced
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"enrollment_id", e.ID,
			"request_id", requestID,
			"error", err,
		)
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "enrollment."+name, trace.WithAttributes(attrs...))
}

// fail records err on span and returns it unchanged.
func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, start)
	}
}

func (s *Service) incrementCreated() {
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
}

func (s *Service) incrementTransition(to models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(to.String())
	}
}

func (s *Service) incrementReplay() {
	if s.metrics != nil {
		s.metrics.IncrementIdempotentReplay()
	}
}
