package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/damsoledevelopers/spireleap-console/api/controllers"
	"github.com/damsoledevelopers/spireleap-console/api/routes"
	"github.com/damsoledevelopers/spireleap-console/internal/agencies"
	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/auth"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/leads"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/internal/permissions"
	"github.com/damsoledevelopers/spireleap-console/internal/properties"
	"github.com/damsoledevelopers/spireleap-console/internal/settings"
	"github.com/damsoledevelopers/spireleap-console/internal/stats"
	"github.com/damsoledevelopers/spireleap-console/internal/subscriptions"
	"github.com/damsoledevelopers/spireleap-console/internal/transactions"
	"github.com/damsoledevelopers/spireleap-console/internal/uploads"
	"github.com/damsoledevelopers/spireleap-console/internal/users"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/db"
	"github.com/damsoledevelopers/spireleap-console/pkg/instance"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/damsoledevelopers/spireleap-console/pkg/metrics"
	"github.com/damsoledevelopers/spireleap-console/pkg/migrate"
	"github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	// CRM amounts are numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	crm, err := backend.NewClient(cfg.Backend, backend.WithMetrics(metrics.NewBackendMetrics(registry)))
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	auditRepo := audit.NewRepository(dbClient.DB())
	var sink audit.Sink
	if cfg.FeatureFlags.AuditEnable {
		sink = audit.NewRecorder(auditRepo, logg)
	}

	svc, err := buildServices(cfg, logg, crm, redisClient, sessionManager, sink, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Redis:    redisClient,
		Sessions: sessionManager,
		Gatherer: registry,
		Metrics:  metrics.NewHTTPMetrics(registry),
		Probes: map[string]controllers.Pinger{
			"database": dbClient,
			"backend":  crm,
		},
		Auth:          svc.auth,
		Lists:         svc.lists,
		Permissions:   svc.permissions,
		Leads:         svc.leads,
		Users:         svc.users,
		Properties:    svc.properties,
		Subscriptions: svc.subscriptions,
		Transactions:  svc.transactions,
		Agencies:      svc.agencies,
		Settings:      svc.settings,
		Stats:         svc.stats,
		Uploads:       svc.uploads,
		Audit:         auditRepo,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"backend":  cfg.Backend.BaseURL,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

type services struct {
	auth          auth.Service
	lists         *listing.Controller
	permissions   permissions.Service
	leads         leads.Service
	users         users.Service
	properties    properties.Service
	subscriptions subscriptions.Service
	transactions  transactions.Service
	agencies      agencies.Service
	settings      settings.Service
	stats         stats.Service
	uploads       uploads.Service
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	crm *backend.Client,
	store *redis.Client,
	sessions *session.Manager,
	sink audit.Sink,
	reg prometheus.Registerer,
) (*services, error) {
	var (
		out services
		err error
	)

	if out.auth, err = auth.NewService(auth.ServiceParams{
		Backend:   crm,
		Sessions:  sessions,
		JWTConfig: cfg.JWT,
		Audit:     sink,
		Logger:    logg,
	}); err != nil {
		return nil, err
	}

	if out.lists, err = listing.NewController(listing.ControllerParams{
		Backend: crm,
		Store:   store,
		Config:  cfg.List,
		Metrics: metrics.NewListMetrics(reg),
		Logger:  logg,
	}); err != nil {
		return nil, err
	}
	refresher := listing.NewRefresher(out.lists, crm)

	if out.permissions, err = permissions.NewService(permissions.ServiceParams{
		Backend:   crm,
		Drafts:    store,
		Refresher: out.auth,
		Audit:     sink,
		Logger:    logg,
		DraftTTL:  cfg.Session.DraftTTL,
	}); err != nil {
		return nil, err
	}
	if out.leads, err = leads.NewService(leads.ServiceParams{
		Backend:   crm,
		Drafts:    store,
		Refresher: refresher,
		Audit:     sink,
		Logger:    logg,
	}); err != nil {
		return nil, err
	}
	if out.users, err = users.NewService(users.ServiceParams{
		Backend:   crm,
		Refresher: refresher,
		Audit:     sink,
		Logger:    logg,
	}); err != nil {
		return nil, err
	}
	if out.properties, err = properties.NewService(properties.ServiceParams{
		Backend:   crm,
		Refresher: refresher,
		Audit:     sink,
		Logger:    logg,
	}); err != nil {
		return nil, err
	}
	if out.subscriptions, err = subscriptions.NewService(subscriptions.ServiceParams{
		Backend:   crm,
		Refresher: refresher,
		Audit:     sink,
	}); err != nil {
		return nil, err
	}
	if out.transactions, err = transactions.NewService(transactions.ServiceParams{
		Backend: crm,
		Lists:   out.lists,
	}); err != nil {
		return nil, err
	}
	if out.agencies, err = agencies.NewService(agencies.ServiceParams{
		Backend:   crm,
		Refresher: refresher,
		Audit:     sink,
	}); err != nil {
		return nil, err
	}
	if out.settings, err = settings.NewService(settings.ServiceParams{
		Backend: crm,
		Audit:   sink,
	}); err != nil {
		return nil, err
	}
	if out.stats, err = stats.NewService(crm); err != nil {
		return nil, err
	}
	if out.uploads, err = uploads.NewService(crm, cfg.Backend.MaxUploadBytes()); err != nil {
		return nil, err
	}
	return &out, nil
}
