package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thehassans/sial-backend/api/controllers"
	"github.com/thehassans/sial-backend/api/middleware"
	"github.com/thehassans/sial-backend/internal/assignment"
	"github.com/thehassans/sial-backend/internal/drivers"
	"github.com/thehassans/sial-backend/internal/investors"
	internalorders "github.com/thehassans/sial-backend/internal/orders"
	"github.com/thehassans/sial-backend/internal/profit"
	"github.com/thehassans/sial-backend/pkg/config"
	"github.com/thehassans/sial-backend/pkg/db"
	"github.com/thehassans/sial-backend/pkg/enums"
	"github.com/thehassans/sial-backend/pkg/logger"
	"github.com/thehassans/sial-backend/pkg/metrics"
	pkgredis "github.com/thehassans/sial-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *pkgredis.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Orders     internalorders.Service
	Assignment assignment.Service
	Profit     profit.Service
	Investors  investors.Service
	Drivers    drivers.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	// Public storefront checkout. Rate limited per IP; no auth.
	r.Route("/api/storefront", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.AuthRateLimit, deps.Redis, "storefront", logg))
		r.Post("/orders", controllers.StorefrontCreateOrder(deps.Orders, logg))
	})

	// Authenticated customer checkout.
	r.Route("/api/customer", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleCustomer.String()))
		r.Use(middleware.Idempotency(deps.Redis, logg))
		r.Post("/orders", controllers.CustomerCreateOrder(deps.Orders, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		operatorRoles := []string{
			enums.UserRoleAdmin.String(),
			enums.UserRoleUser.String(),
			enums.UserRoleManager.String(),
			enums.UserRoleDropshipper.String(),
		}

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, operatorRoles...))
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/export", controllers.ExportOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Patch("/{orderId}", controllers.UpdateOrderStatus(deps.Orders, logg))
			r.With(middleware.RequireRole(logg,
				enums.UserRoleAdmin.String(),
				enums.UserRoleUser.String(),
				enums.UserRoleManager.String(),
			)).Post("/{orderId}/assign-driver", controllers.AssignDriver(deps.Assignment, logg))
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg,
				enums.UserRoleAdmin.String(),
				enums.UserRoleUser.String(),
				enums.UserRoleManager.String(),
			))
			r.Get("/", controllers.ListDrivers(deps.Drivers, logg))
		})

		r.Route("/driver", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleDriver.String()))
			r.Get("/orders", controllers.DriverOrders(deps.Orders, logg))
			r.Post("/orders/{orderId}/status", controllers.DriverOrderStatus(deps.Orders, logg))
		})

		r.Route("/dropshipper", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleDropshipper.String()))
			r.Get("/dashboard", controllers.DropshipperDashboard(deps.Profit, logg))
			r.Get("/finances", controllers.DropshipperFinances(deps.Orders, logg))
		})

		r.Route("/investors", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg,
				enums.UserRoleAdmin.String(),
				enums.UserRoleUser.String(),
			))
			r.Post("/", controllers.CreateInvestor(deps.Investors, logg))
			r.Get("/", controllers.ListInvestors(deps.Investors, logg))
			r.Patch("/{investorId}", controllers.UpdateInvestor(deps.Investors, logg))
			r.Post("/{investorId}/pause", controllers.PauseInvestor(deps.Investors, logg))
			r.Post("/{investorId}/resume", controllers.ResumeInvestor(deps.Investors, logg))
			r.Get("/{investorId}/stats", controllers.InvestorStats(deps.Profit, logg))
		})
	})

	return r
}
