package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	adminhandler "petities/internal/admin/handler"
	"petities/internal/events"
	httpapi "petities/internal/http"
	petitionhandler "petities/internal/petition/handler"
	petitionservice "petities/internal/petition/service"
	petitionstore "petities/internal/petition/store"
	"petities/internal/platform/config"
	"petities/internal/platform/httpserver"
	"petities/internal/platform/logger"
	platformmetrics "petities/internal/platform/metrics"
	"petities/internal/platform/middleware"
	platformredis "petities/internal/platform/redis"
	"petities/internal/signature/counters"
	signaturehandler "petities/internal/signature/handler"
	"petities/internal/signature/mailer"
	sigmetrics "petities/internal/signature/metrics"
	signatureservice "petities/internal/signature/service"
	signaturestore "petities/internal/signature/store"
)

// main wires the stores, counter backend, services and HTTP surface, then runs
// the server until a shutdown signal. Business logic lives in the internal
// service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]func(context.Context) error{}

	// Record stores. Without a database URL the process runs entirely in
	// memory, which is only useful for local development.
	var (
		petitions  petitionstore.Store
		signatures signaturestore.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		petitions = petitionstore.NewPostgres(db)
		signatures = signaturestore.NewPostgres(pool)
		readiness["postgres"] = pool.Ping
	} else {
		log.Warn("no database configured, using in-memory stores")
		petitions = petitionstore.NewInMemory()
		signatures = signaturestore.NewInMemory()
	}

	// Counter store. Falls back to process memory when Redis is absent;
	// counters then reset on restart while the record store stays
	// authoritative.
	var counterStore counters.Store
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		counterStore = counters.NewRedis(redisClient.Client)
		readiness["redis"] = redisClient.Health
	} else {
		log.Warn("no redis configured, using in-memory counters")
		counterStore = counters.NewInMemoryStore()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.SeedBrokers) > 0 {
		kafka, err := events.NewKafka(cfg.Kafka.SeedBrokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publisher = kafka
	}

	metrics := sigmetrics.New()

	petitionSvc := petitionservice.New(petitions, signatures, counterStore, log)
	aggregator := counters.NewAggregator(counterStore, petitionSvc, log, metrics)
	signatureSvc := signatureservice.New(signatures, petitions, aggregator, mailer.NewLogMailer(log), log,
		signatureservice.WithEvents(publisher),
		signatureservice.WithMetrics(metrics),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:      log,
		Petitions:   petitionhandler.New(petitionSvc, log),
		Signatures:  signaturehandler.New(signatureSvc, log),
		Admin:       adminhandler.New(signatureSvc, cfg.Reminders, log),
		AdminAuth:   middleware.NewJWTAdminValidator(cfg.AdminJWTKey),
		HTTPMetrics: platformmetrics.NewHTTP(),
		Readiness:   readiness,
	})

	srv := httpserver.New(cfg.Addr, router)

	if cfg.Reminders.SweepInterval > 0 {
		go sweepLoop(ctx, signatureSvc, cfg.Reminders, log)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepLoop runs the reminder sweep on a fixed interval until ctx is done.
func sweepLoop(ctx context.Context, svc *signatureservice.Service, cfg config.ReminderConfig, log *slog.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, err := svc.SweepReminders(ctx, cfg)
			if err != nil {
				log.ErrorContext(ctx, "reminder sweep failed", "error", err)
				continue
			}
			log.InfoContext(ctx, "reminder sweep finished", "processed", processed)
		}
	}
}
