package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentinelworks/sentinel-backend/api/controllers"
	"github.com/sentinelworks/sentinel-backend/api/middleware"
	"github.com/sentinelworks/sentinel-backend/internal/audit"
	"github.com/sentinelworks/sentinel-backend/internal/auth"
	"github.com/sentinelworks/sentinel-backend/internal/catalog"
	"github.com/sentinelworks/sentinel-backend/internal/delivery"
	"github.com/sentinelworks/sentinel-backend/internal/pricing"
	"github.com/sentinelworks/sentinel-backend/internal/users"
	"github.com/sentinelworks/sentinel-backend/pkg/auth/session"
	"github.com/sentinelworks/sentinel-backend/pkg/config"
	"github.com/sentinelworks/sentinel-backend/pkg/db"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	"github.com/sentinelworks/sentinel-backend/pkg/logger"
	pkgredis "github.com/sentinelworks/sentinel-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. cmd/api builds one and
// hands it to NewRouter.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *pkgredis.Client
	Sessions session.AccessSessionChecker

	Auth     auth.Service
	Register auth.RegisterService
	Users    users.Service
	Catalog  *catalog.Service
	Audit    *audit.Service
	Pricing  pricing.Service
	Email    delivery.EmailService
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// Keep the interface nil when no redis client is wired so the
	// idempotency middleware disables itself instead of panicking.
	var idemStore pkgredis.IdempotencyStore
	var redisPinger pkgredis.Pinger
	if deps.Redis != nil {
		idemStore = deps.Redis
		redisPinger = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, redisPinger, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/me", controllers.Me(deps.Users, logg))

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", controllers.QuotationCreate(deps.Pricing, logg))
			r.Get("/", controllers.QuotationList(deps.Pricing, logg))
			r.Route("/{quotationID}", func(r chi.Router) {
				r.Get("/", controllers.QuotationGet(deps.Pricing, logg))
				r.Delete("/", controllers.QuotationDelete(deps.Pricing, logg))
				r.Post("/recompute", controllers.QuotationRecompute(deps.Pricing, logg))
				r.Get("/pdf", controllers.QuotationPDF(deps.Pricing, deps.Audit, logg))
				r.Post("/email", controllers.QuotationEmail(deps.Email, logg))
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", controllers.CategoryList(deps.Catalog, logg))
			r.Get("/sizing-config", controllers.SizingConfigGet(deps.Catalog, logg))
			r.Get("/{category}/components", controllers.ComponentList(deps.Catalog, logg))
			r.Get("/{category}/components/{componentID}", controllers.ComponentGet(deps.Catalog, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Put("/sizing-config", controllers.SizingConfigPut(deps.Catalog, logg))
			r.Post("/{category}/components", controllers.ComponentCreate(deps.Catalog, logg))
			r.Patch("/{category}/components/{componentID}", controllers.ComponentUpdate(deps.Catalog, logg))
			r.Delete("/{category}/components/{componentID}", controllers.ComponentDelete(deps.Catalog, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUserList(deps.Users, logg))
			r.Post("/{userID}/toggle-role", controllers.AdminUserToggleRole(deps.Users, logg))
			r.Post("/{userID}/toggle-active", controllers.AdminUserToggleActive(deps.Users, logg))
		})

		r.Get("/audit-logs", controllers.AuditLogList(deps.Audit, logg))
	})

	return r
}
