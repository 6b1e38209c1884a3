package idempotency

import (
	"context"
	"log/slog"
	"time"

	id "benefits-bff/pkg/domain"
	"benefits-bff/pkg/platform/circuit"
)

// Backend is the contract shared by the Redis and in-memory stores.
type Backend interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (Reservation, error)
	Complete(ctx context.Context, key string, enrollmentID id.EnrollmentID, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// FallbackStore answers from primary and switches to a local fallback once
// the breaker opens. Isolated primary errors are returned to the caller.
// While open, calls skip the primary except for the breaker's periodic retry.
//
// Keys reserved on the fallback during an outage are known to this instance
// only; a retry that lands on another instance can create a second enrollment.
type FallbackStore struct {
	primary  Backend
	fallback Backend
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallback(primary, fallback Backend, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStore{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FallbackStore) Reserve(ctx context.Context, key string, ttl time.Duration) (Reservation, error) {
	if !s.breaker.AllowPrimary() {
		return s.fallback.Reserve(ctx, key, ttl)
	}
	res, err := s.primary.Reserve(ctx, key, ttl)
	if err == nil {
		s.recordSuccess(ctx)
		return res, nil
	}
	if !s.recordFailure(ctx, "reserve", err) {
		return Reservation{}, err
	}
	return s.fallback.Reserve(ctx, key, ttl)
}

func (s *FallbackStore) Complete(ctx context.Context, key string, enrollmentID id.EnrollmentID, ttl time.Duration) error {
	return s.apply(ctx, "complete",
		func(b Backend) error { return b.Complete(ctx, key, enrollmentID, ttl) })
}

func (s *FallbackStore) Release(ctx context.Context, key string) error {
	return s.apply(ctx, "release",
		func(b Backend) error { return b.Release(ctx, key) })
}

// apply runs op on primary and mirrors it to the fallback while the circuit
// is open, so keys reserved there during the outage are settled too. Between
// retries of an open circuit only the fallback runs op.
func (s *FallbackStore) apply(ctx context.Context, op string, fn func(Backend) error) error {
	wasOpen := s.breaker.IsOpen()
	if wasOpen && !s.breaker.AllowPrimary() {
		return fn(s.fallback)
	}
	err := fn(s.primary)
	if err == nil {
		s.recordSuccess(ctx)
		if wasOpen {
			_ = fn(s.fallback)
		}
		return nil
	}
	if !s.recordFailure(ctx, op, err) {
		return err
	}
	return fn(s.fallback)
}

func (s *FallbackStore) recordSuccess(ctx context.Context) {
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "idempotency store recovered, circuit closed",
			"breaker", s.breaker.Name(),
		)
	}
}

// recordFailure reports whether the fallback should answer.
func (s *FallbackStore) recordFailure(ctx context.Context, op string, err error) bool {
	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "idempotency store unavailable, circuit opened",
			"breaker", s.breaker.Name(),
			"op", op,
			"error", err,
		)
	}
	return useFallback
}
