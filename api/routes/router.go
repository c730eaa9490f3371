package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/damsoledevelopers/spireleap-console/api/controllers"
	"github.com/damsoledevelopers/spireleap-console/api/middleware"
	"github.com/damsoledevelopers/spireleap-console/internal/agencies"
	"github.com/damsoledevelopers/spireleap-console/internal/auth"
	"github.com/damsoledevelopers/spireleap-console/internal/leads"
	"github.com/damsoledevelopers/spireleap-console/internal/permissions"
	"github.com/damsoledevelopers/spireleap-console/internal/properties"
	"github.com/damsoledevelopers/spireleap-console/internal/settings"
	"github.com/damsoledevelopers/spireleap-console/internal/stats"
	"github.com/damsoledevelopers/spireleap-console/internal/subscriptions"
	"github.com/damsoledevelopers/spireleap-console/internal/transactions"
	"github.com/damsoledevelopers/spireleap-console/internal/uploads"
	"github.com/damsoledevelopers/spireleap-console/internal/users"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/damsoledevelopers/spireleap-console/pkg/metrics"
	pkgredis "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

type redisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Deps is everything the console API serves.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    redisStore
	Sessions middleware.SessionLoader
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics
	// Probes are pinged by /health/ready in addition to Redis.
	Probes map[string]controllers.Pinger

	Auth          auth.Service
	Lists         controllers.ListViews
	Permissions   permissions.Service
	Leads         leads.Service
	Users         users.Service
	Properties    properties.Service
	Subscriptions subscriptions.Service
	Transactions  transactions.Service
	Agencies      agencies.Service
	Settings      settings.Service
	Stats         stats.Service
	Uploads       uploads.Service
	Audit         controllers.AuditLister
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(d.Metrics),
	)

	probes := map[string]controllers.Pinger{}
	if d.Redis != nil {
		probes["redis"] = d.Redis
	}
	for name, p := range d.Probes {
		probes[name] = p
	}
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, probes))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	can := func(module string, action enums.PermissionAction) func(http.Handler) http.Handler {
		return middleware.RequirePermission(module, action, logg)
	}
	uploadLimits := controllers.UploadLimits{
		MaxBytes: cfg.Backend.MaxUploadBytes(),
		MaxFiles: cfg.Backend.MaxImageCount,
	}
	rl := cfg.AuthRateLimit

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(
				middleware.NewAuthRateLimitPolicy("login", rl.LoginWindow, rl.LoginIPLimit, rl.LoginEmailLimit), d.Redis, logg,
			)).Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.With(middleware.AuthRateLimit(
				middleware.NewAuthRateLimitPolicy("register", rl.RegisterWindow, rl.RegisterIPLimit, rl.RegisterEmailLimit), d.Redis, logg,
			)).Post("/register", controllers.AuthRegister(d.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			// Inline so the matched pattern is complete when it runs.
			idem := middleware.Idempotency(d.Redis, logg)

			r.Post("/auth/logout", controllers.AuthLogout(d.Auth, logg))
			r.Get("/auth/me", controllers.AuthMe(logg))
			r.Post("/auth/refresh", controllers.AuthRefresh(d.Auth, logg))
			r.Get("/auth/check", controllers.AuthCheck(logg))

			r.Get("/views", controllers.ViewIndex(logg))
			r.Route("/views/{view}", func(r chi.Router) {
				r.Get("/", controllers.ViewLoad(d.Lists, logg))
				r.Patch("/", controllers.ViewUpdate(d.Lists, logg))
				r.Delete("/", controllers.ViewReset(d.Lists, logg))
			})

			r.Route("/permissions/editor", func(r chi.Router) {
				r.Get("/", controllers.PermissionsOpen(d.Permissions, logg))
				r.Post("/toggle", controllers.PermissionsToggle(d.Permissions, logg))
				r.Post("/toggle-all", controllers.PermissionsToggleAll(d.Permissions, logg))
				r.Post("/reset", controllers.PermissionsReset(d.Permissions, logg))
				r.Post("/save", controllers.PermissionsSave(d.Permissions, logg))
			})

			r.Route("/leads", func(r chi.Router) {
				r.With(can(permissions.ModuleLeads, enums.PermissionActionCreate), idem).Post("/", controllers.LeadCreate(d.Leads, logg))
				r.With(can(permissions.ModuleLeads, enums.PermissionActionCreate)).Post("/drafts/{draftID}/submit", controllers.LeadCreateAnyway(d.Leads, logg))
				r.With(can(permissions.ModuleLeads, enums.PermissionActionCreate)).Delete("/drafts/{draftID}", controllers.LeadCancelDraft(d.Leads, logg))
				r.With(can(permissions.ModuleLeads, enums.PermissionActionView)).Get("/{id}", controllers.LeadGet(d.Leads, logg))
				r.With(can(permissions.ModuleLeads, enums.PermissionActionEdit)).Put("/{id}", controllers.LeadUpdate(d.Leads, logg))
				r.With(can(permissions.ModuleLeads, enums.PermissionActionEdit)).Patch("/{id}/status", controllers.LeadUpdateStatus(d.Leads, logg))
				r.With(can(permissions.ModuleLeads, enums.PermissionActionDelete)).Delete("/{id}", controllers.LeadDelete(d.Leads, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.With(can(permissions.ModuleUsers, enums.PermissionActionCreate), idem).Post("/", controllers.UserCreate(d.Users, logg))
				r.With(can(permissions.ModuleUsers, enums.PermissionActionView)).Get("/{id}", controllers.UserGet(d.Users, logg))
				r.With(can(permissions.ModuleUsers, enums.PermissionActionEdit)).Put("/{id}", controllers.UserUpdate(d.Users, logg))
				r.With(can(permissions.ModuleUsers, enums.PermissionActionEdit)).Patch("/{id}/status", controllers.UserSetStatus(d.Users, logg))
				r.With(can(permissions.ModuleUsers, enums.PermissionActionDelete)).Delete("/{id}", controllers.UserDelete(d.Users, logg))
				r.With(can(permissions.ModulePermissions, enums.PermissionActionView)).Get("/{id}/permissions", controllers.UserPermissions(d.Users, logg))
			})

			r.Route("/properties", func(r chi.Router) {
				r.With(can(permissions.ModuleProperties, enums.PermissionActionCreate), idem).Post("/", controllers.PropertyCreate(d.Properties, logg))
				r.With(can(permissions.ModuleProperties, enums.PermissionActionView)).Post("/compare", controllers.PropertyCompare(d.Properties, logg))
				r.With(can(permissions.ModuleProperties, enums.PermissionActionCreate)).Post("/images", controllers.PropertyUploadImages(d.Properties, uploadLimits, logg))
				r.With(can(permissions.ModuleProperties, enums.PermissionActionView)).Get("/{id}", controllers.PropertyGet(d.Properties, logg))
				r.With(can(permissions.ModuleProperties, enums.PermissionActionEdit)).Put("/{id}", controllers.PropertyUpdate(d.Properties, logg))
				r.With(can(permissions.ModuleProperties, enums.PermissionActionEdit)).Post("/{id}/approve", controllers.PropertyApprove(d.Properties, logg))
				r.With(can(permissions.ModuleProperties, enums.PermissionActionEdit)).Patch("/{id}/status", controllers.PropertySetStatus(d.Properties, logg))
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.With(can(permissions.ModuleSubscriptions, enums.PermissionActionView)).Get("/users/{userID}", controllers.SubscriptionsForUser(d.Subscriptions, logg))
				r.With(can(permissions.ModuleSubscriptions, enums.PermissionActionView)).Get("/{id}", controllers.SubscriptionGet(d.Subscriptions, logg))
				r.With(can(permissions.ModuleSubscriptions, enums.PermissionActionEdit)).Patch("/{id}/status", controllers.SubscriptionToggle(d.Subscriptions, logg))
				r.With(can(permissions.ModuleSubscriptions, enums.PermissionActionDelete)).Delete("/{id}", controllers.SubscriptionDelete(d.Subscriptions, logg))
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Use(can(permissions.ModuleTransactions, enums.PermissionActionView))
				r.Get("/overview", controllers.TransactionsOverview(d.Transactions, logg))
				r.Get("/revenue", controllers.TransactionsRevenue(d.Transactions, logg))
			})

			r.Route("/agencies/{id}", func(r chi.Router) {
				r.With(can(permissions.ModuleAgencies, enums.PermissionActionView)).Get("/", controllers.AgencyGet(d.Agencies, logg))
				r.With(can(permissions.ModuleAgencies, enums.PermissionActionEdit)).Put("/", controllers.AgencyUpdate(d.Agencies, logg))
				r.With(can(permissions.ModuleAgencies, enums.PermissionActionView)).Get("/stats", controllers.AgencyStats(d.Agencies, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.With(can(permissions.ModuleSettings, enums.PermissionActionView)).Get("/", controllers.SettingsGet(d.Settings, logg))
				r.With(can(permissions.ModuleSettings, enums.PermissionActionEdit)).Put("/", controllers.SettingsUpdate(d.Settings, logg))
			})

			r.Get("/stats/dashboard", controllers.StatsDashboard(d.Stats, logg))
			r.Post("/uploads/profile-image", controllers.UploadProfileImage(d.Uploads, uploadLimits, logg))

			r.With(middleware.RequireRole(logg, enums.UserRoleSuperAdmin)).Get("/audit", controllers.AuditList(d.Audit, logg))
		})
	})

	return r
}
