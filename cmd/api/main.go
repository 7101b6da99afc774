package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inmo_crm_backend/internal/adapters"
	"inmo_crm_backend/internal/agents"
	"inmo_crm_backend/internal/appointments"
	"inmo_crm_backend/internal/email"
	"inmo_crm_backend/internal/events"
	apphttp "inmo_crm_backend/internal/http"
	"inmo_crm_backend/internal/http/router"
	"inmo_crm_backend/internal/leads"
	"inmo_crm_backend/internal/notification"
	"inmo_crm_backend/internal/properties"
	"inmo_crm_backend/internal/scheduler"
	"inmo_crm_backend/internal/subscription"
	subscriptioncache "inmo_crm_backend/internal/subscription/cache"
	"inmo_crm_backend/internal/tenant"
	"inmo_crm_backend/migrations"
	"inmo_crm_backend/platform/config"
	"inmo_crm_backend/platform/db"
	"inmo_crm_backend/platform/httpkit"
	"inmo_crm_backend/platform/logger"
	"inmo_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := db.RunMigrations(ctx, pool, migrations.FS); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	eventBus := events.NewInMemoryBus(log)

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	redisClient := initCacheClient(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	sender := email.NewSender(cfg, log)
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	agentsModule := agents.NewModule(pool, val, cfg, log)
	agentsSvc := agentsModule.Service()

	leadsModule := leads.NewModule(pool, adapters.NewLeadsAgentDirectory(agentsSvc), eventBus, val, cfg, log)

	appointmentsModule := appointments.NewModule(pool, val, cfg, appointments.Dependencies{
		Leads:     adapters.NewAppointmentLeadReader(leadsModule.ManagementService()),
		Agents:    agentsSvc,
		Slots:     adapters.NewAppointmentSlotProvider(agentsSvc),
		Sender:    sender,
		Reminders: reminderScheduler,
		Bus:       eventBus,
	}, log)

	// Agents read bookings back from appointments for slot conflict marking.
	agentsSvc.SetBookingReader(appointmentsModule.Service())

	propertiesModule := properties.NewModule(pool, val, agentsSvc, cfg, log)

	subscriptionModule, err := subscription.NewModule(pool, val, redisClient, cfg, eventBus, log)
	if err != nil {
		log.Error("failed to initialize subscription module", "error", err)
		panic("failed to initialize subscription module: " + err.Error())
	}

	notificationModule := notification.New(sender, adapters.NewNotificationContacts(leadsModule.ManagementService(), agentsSvc), log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Tenants:  tenant.NewResolver(cfg),
		Metrics:  httpkit.NewMetrics(leadsModule.Collectors()...),
		Modules: []apphttp.Module{
			leadsModule,
			agentsModule,
			appointmentsModule,
			propertiesModule,
			subscriptionModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; appointment reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

// initCacheClient returns nil when Redis is not configured or unreachable;
// the module catalog is then read straight from the database.
func initCacheClient(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		return nil
	}
	client, err := subscriptioncache.NewClient(ctx, cfg.GetRedisURL())
	if err != nil {
		log.Warn("module catalog cache disabled", "error", err)
		return nil
	}
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
