package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkowalski/containerdepot-backend/api/controllers"
	webhookcontrollers "github.com/dkowalski/containerdepot-backend/api/controllers/webhooks"
	"github.com/dkowalski/containerdepot-backend/api/middleware"
	"github.com/dkowalski/containerdepot-backend/internal/catalog"
	checkoutsvc "github.com/dkowalski/containerdepot-backend/internal/checkout"
	"github.com/dkowalski/containerdepot-backend/internal/media"
	"github.com/dkowalski/containerdepot-backend/internal/orders"
	stripewebhook "github.com/dkowalski/containerdepot-backend/internal/webhooks/stripe"
	"github.com/dkowalski/containerdepot-backend/pkg/config"
	"github.com/dkowalski/containerdepot-backend/pkg/logger"
	"github.com/dkowalski/containerdepot-backend/pkg/metrics"
	"github.com/dkowalski/containerdepot-backend/pkg/redis"
	"github.com/dkowalski/containerdepot-backend/pkg/stripe"
)

type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	CatalogService catalog.Service
	OrdersService  orders.Service
	Checkout       checkoutsvc.Service
	Media          media.Service
	StripeClient   *stripe.Client
	WebhookService *stripewebhook.Service
	WebhookGuard   *stripewebhook.Guard
	WebhookMetrics *metrics.WebhookMetrics
	MetricsHandler http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.WebhookService, deps.StripeClient, deps.WebhookGuard, deps.WebhookMetrics, logg))
	})

	r.Route("/api/v1/containers", func(r chi.Router) {
		r.Get("/", controllers.ListContainers(deps.CatalogService, logg))
		r.Get("/{id}", controllers.GetContainer(deps.CatalogService, logg))
	})
	r.Get("/api/v1/addons", controllers.ListAddons(deps.CatalogService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.OrdersService, logg))
			r.Get("/", controllers.ListMyOrders(deps.OrdersService, logg))
			r.Get("/{id}", controllers.GetOrder(deps.OrdersService, logg))
			r.Put("/{id}", controllers.UpdateOrder(deps.OrdersService, logg))
			r.Delete("/{id}", controllers.DeleteOrder(deps.OrdersService, logg))
		})
		r.Post("/api/v1/checkout", controllers.Checkout(deps.Checkout, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/orders", controllers.AdminListOrders(deps.OrdersService, logg))
		r.Route("/containers", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateContainer(deps.CatalogService, logg))
			r.Post("/upload", controllers.AdminUploadContainer(deps.CatalogService, deps.Media, logg))
			r.Put("/{id}", controllers.AdminUpdateContainer(deps.CatalogService, logg))
			r.Delete("/{id}", controllers.AdminDeleteContainer(deps.CatalogService, logg))
		})
		r.Route("/addons", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateAddon(deps.CatalogService, logg))
			r.Put("/{id}", controllers.AdminUpdateAddon(deps.CatalogService, logg))
			r.Delete("/{id}", controllers.AdminDeleteAddon(deps.CatalogService, logg))
		})
	})

	return r
}
