package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"benefits-bff/internal/enrollment/models"
	"benefits-bff/internal/platform/metrics"
	"benefits-bff/internal/platform/middleware"
	id "benefits-bff/pkg/domain"
	dErrors "benefits-bff/pkg/domain-errors"
	"benefits-bff/pkg/platform/httputil"
	"benefits-bff/pkg/platform/middleware/metadata"
	"benefits-bff/pkg/platform/middleware/requesttime"
	"benefits-bff/pkg/requestcontext"
)

// BasePath is where Register mounts the enrollment routes.
const BasePath = "/api/v1/enrollment"

// IdempotencyKeyHeader optionally makes POST BasePath/ safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

// Service defines the interface for enrollment lifecycle operations.
type Service interface {
	CreateEnrollmentIdempotent(ctx context.Context, key string, req *models.CreateEnrollmentRequest) (*models.Enrollment, bool, error)
	ActivateEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) error
	DeleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) error
	GetCustomerEnrollments(ctx context.Context, customerID id.CustomerID) ([]*models.Enrollment, error)
	GetEmployeeEnrollment(ctx context.Context, key models.HierarchyKey) (*models.Enrollment, error)
	GetEnrollmentStatus(ctx context.Context, enrollmentID id.EnrollmentID) (models.Status, error)
}

// Handler serves the enrollment HTTP API.
type Handler struct {
	logger         *slog.Logger
	enrollment     Service
	metrics        *metrics.Metrics
	requestTimeout time.Duration
	clock          requesttime.Clock
}

type Option func(*Handler)

func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// WithClock pins the request time source.
func WithClock(clock requesttime.Clock) Option {
	return func(h *Handler) {
		h.clock = clock
	}
}

// New creates a new enrollment Handler. metrics may be nil.
func New(enrollment Service, logger *slog.Logger, metrics *metrics.Metrics, opts ...Option) *Handler {
	h := &Handler{
		logger:         logger,
		enrollment:     enrollment,
		metrics:        metrics,
		requestTimeout: 30 * time.Second,
		clock:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the enrollment routes under BasePath.
func (h *Handler) Register(r chi.Router) {
	enrollmentRouter := chi.NewRouter()
	enrollmentRouter.Use(middleware.Recovery(h.logger))
	enrollmentRouter.Use(middleware.RequestID)
	enrollmentRouter.Use(middleware.Logger(h.logger))
	enrollmentRouter.Use(middleware.Timeout(h.requestTimeout))
	enrollmentRouter.Use(middleware.ContentTypeJSON)
	enrollmentRouter.Use(middleware.LatencyMiddleware(h.metrics))
	enrollmentRouter.Use(metadata.ClientMetadata)
	enrollmentRouter.Use(requesttime.WithClock(h.clock))

	enrollmentRouter.Post("/", h.handleCreate)
	enrollmentRouter.Post("/activateEnrollment", h.handleActivate)
	enrollmentRouter.Get("/customer/{customerId}", h.handleListByCustomer)
	enrollmentRouter.Get("/organizations/{orgId}/departments/{deptId}/employees/{empId}/enrollments/{enrollmentId}", h.handleGetEmployeeEnrollment)
	enrollmentRouter.Get("/{enrollmentId}/status", h.handleGetStatus)
	enrollmentRouter.Delete("/{enrollmentId}", h.handleDelete)

	r.Mount(BasePath, enrollmentRouter)
}

// handleCreate creates a pending enrollment. A replayed Idempotency-Key
// answers 200 with the enrollment the key is bound to.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Idempotency-Key is too long"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.CreateEnrollmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	e, replayed, err := h.enrollment.CreateEnrollmentIdempotent(ctx, key, req)
	if err != nil {
		h.writeServiceError(ctx, w, "create enrollment failed", err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, toEnrollmentResponse(e))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollmentID := id.ParseEnrollmentID(r.URL.Query().Get("enrollmentId"))

	if err := h.enrollment.ActivateEnrollment(ctx, enrollmentID); err != nil {
		h.writeServiceError(ctx, w, "activate enrollment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Enrollment activated successfully"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollmentID := id.ParseEnrollmentID(chi.URLParam(r, "enrollmentId"))

	if err := h.enrollment.DeleteEnrollment(ctx, enrollmentID); err != nil {
		h.writeServiceError(ctx, w, "delete enrollment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DeleteResponse{
		Message:   "Enrollment deleted successfully",
		DeletedID: enrollmentID.String(),
	})
}

func (h *Handler) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := id.CustomerID(strings.TrimSpace(chi.URLParam(r, "customerId")))

	list, err := h.enrollment.GetCustomerEnrollments(ctx, customerID)
	if err != nil {
		h.writeServiceError(ctx, w, "list enrollments failed", err)
		return
	}
	resp := make([]EnrollmentResponse, 0, len(list))
	for _, e := range list {
		resp = append(resp, toEnrollmentResponse(e))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetEmployeeEnrollment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := models.HierarchyKey{
		Hierarchy: models.Hierarchy{
			OrganizationID: id.OrganizationID(strings.TrimSpace(chi.URLParam(r, "orgId"))),
			DepartmentID:   id.DepartmentID(strings.TrimSpace(chi.URLParam(r, "deptId"))),
			EmployeeID:     id.EmployeeID(strings.TrimSpace(chi.URLParam(r, "empId"))),
		},
		EnrollmentID: id.ParseEnrollmentID(chi.URLParam(r, "enrollmentId")),
	}

	e, err := h.enrollment.GetEmployeeEnrollment(ctx, key)
	if err != nil {
		h.writeServiceError(ctx, w, "get employee enrollment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEnrollmentResponse(e))
}

// handleGetStatus echoes the calling application next to the status.
func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollmentID := id.ParseEnrollmentID(chi.URLParam(r, "enrollmentId"))

	status, err := h.enrollment.GetEnrollmentStatus(ctx, enrollmentID)
	if err != nil {
		h.writeServiceError(ctx, w, "get enrollment status failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		EnrollmentID: enrollmentID.String(),
		Status:       status.String(),
		ClientApp:    requestcontext.ClientApp(ctx),
	})
}

// writeServiceError logs client errors at warn and writes the mapped response.
// Internal errors were already logged with detail by the service.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"code", string(code),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
