package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"benefits-bff/internal/enrollment"
	"benefits-bff/internal/enrollment/catalog"
	"benefits-bff/internal/enrollment/handler"
	enrollmentmetrics "benefits-bff/internal/enrollment/metrics"
	"benefits-bff/internal/enrollment/service"
	"benefits-bff/internal/enrollment/store/idempotency"
	"benefits-bff/internal/platform/config"
	"benefits-bff/internal/platform/httpserver"
	"benefits-bff/internal/platform/logger"
	"benefits-bff/internal/platform/metrics"
	"benefits-bff/internal/platform/postgres"
	redisclient "benefits-bff/internal/platform/redis"
	"benefits-bff/internal/platform/tracing"
	"benefits-bff/pkg/platform/audit"
	"benefits-bff/pkg/platform/audit/publisher"
	auditmemory "benefits-bff/pkg/platform/audit/store/memory"
	auditpostgres "benefits-bff/pkg/platform/audit/store/postgres"
	"benefits-bff/pkg/platform/audit/worker"
	"benefits-bff/pkg/platform/circuit"
)

const (
	serviceName     = "benefits-bff"
	shutdownTimeout = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Server, log *slog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	checks := map[string]httpserver.Check{}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		checks["postgres"] = db.PingContext
		log.Info("using postgres enrollment store")
	} else {
		log.Warn("DATABASE_URL not set, enrollments are kept in memory")
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var keys service.IdempotencyStore = idempotency.NewInMemory()
	if rc != nil {
		defer rc.Close()
		keys = idempotency.NewFallback(
			idempotency.NewRedis(rc.Client),
			idempotency.NewInMemory(),
			circuit.New("idempotency-redis"),
			log,
		)
		checks["redis"] = rc.Health
	}

	var auditStore audit.Store
	var outbox *auditpostgres.Store
	pubOpts := []publisher.Option{publisher.WithLogger(log)}
	if db != nil {
		outbox = auditpostgres.New(db)
		auditStore = outbox
	} else {
		auditStore = auditmemory.NewInMemoryStore()
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(1024))
	}
	auditPublisher := publisher.NewPublisher(auditStore, pubOpts...)
	defer auditPublisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.New(reg)

	svc := enrollment.NewService(enrollment.NewStore(db),
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(enrollmentmetrics.New(reg)),
		service.WithCatalog(catalog.NewStatic(cfg.Plans())),
		service.WithIdempotency(keys, cfg.Idempotency.TTL),
		// outlives the request deadline so a slow create keeps its key
		service.WithIdempotencyLease(2*cfg.RequestTimeout),
	)
	h := enrollment.NewHandler(svc, log, httpMetrics, handler.WithRequestTimeout(cfg.RequestTimeout))

	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})

	r := chi.NewRouter()
	r.Get("/health", httpserver.Health(log, checks))
	if cfg.MetricsAddr == "" {
		r.Handle("/metrics", metricsHandler)
	}
	h.Register(r)

	g, gctx := errgroup.WithContext(ctx)

	servers := []*http.Server{httpserver.New(cfg.Addr, r, cfg.RequestTimeout)}
	if cfg.MetricsAddr != "" {
		mux := chi.NewRouter()
		mux.Handle("/metrics", metricsHandler)
		servers = append(servers, httpserver.New(cfg.MetricsAddr, mux, cfg.RequestTimeout))
	}
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	if brokers := cfg.Audit.KafkaBrokerList(); len(brokers) > 0 && outbox != nil {
		kafka, err := kgo.NewClient(
			kgo.SeedBrokers(brokers...),
			kgo.ClientID(serviceName),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		)
		if err != nil {
			return fmt.Errorf("kafka client: %w", err)
		}
		defer kafka.Close()

		relay := worker.NewRelay(outbox, kafka, cfg.Audit.Topic,
			worker.WithInterval(cfg.Audit.PollInterval),
			worker.WithBatchSize(cfg.Audit.BatchSize),
			worker.WithLogger(log),
		)
		g.Go(func() error {
			log.Info("audit outbox relay started", "topic", cfg.Audit.Topic)
			return relay.Run(gctx)
		})
	}

	return g.Wait()
}
