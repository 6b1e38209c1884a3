// Package enrollment exposes the enrollment module to the process wiring in
// cmd/server: the lifecycle service, its HTTP handler and the stores behind them.
package enrollment

import (
	"database/sql"
	"log/slog"

	"benefits-bff/internal/enrollment/handler"
	"benefits-bff/internal/enrollment/models"
	"benefits-bff/internal/enrollment/service"
	enrollmentstore "benefits-bff/internal/enrollment/store/enrollment"
	"benefits-bff/internal/platform/metrics"
)

type (
	Enrollment = models.Enrollment
	Status     = models.Status
	Service    = service.Service
	Handler    = handler.Handler
)

// NewService builds the lifecycle manager over store.
func NewService(store service.Store, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

// NewHandler builds the HTTP handler for svc.
func NewHandler(svc handler.Service, logger *slog.Logger, m *metrics.Metrics, opts ...handler.Option) *Handler {
	return handler.New(svc, logger, m, opts...)
}

// NewStore returns the Postgres store when db is set, otherwise the in-memory one.
func NewStore(db *sql.DB) service.Store {
	if db == nil {
		return enrollmentstore.NewInMemory()
	}
	return enrollmentstore.NewPostgres(db)
}
