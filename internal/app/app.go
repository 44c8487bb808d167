// Package app assembles the HTTP application from its dependencies.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/handlers"
	"storefront/internal/mail"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// UploadsPath is the URL prefix under which stored images are served.
const UploadsPath = "/uploads"

// Deps are the collaborators of the application. Cache, Publisher, Mailer
// and Metrics are optional.
type Deps struct {
	Logger    *slog.Logger
	AccessLog io.Writer
	Store     *repositories.Store
	Tokens    *auth.TokenManager
	Hasher    *auth.PasswordHasher
	Cache     cache.ProductListCache
	Images    *storage.DiskImageStore
	Mailer    mail.Sender
	Publisher services.Publisher
	Metrics   *metrics.Metrics
}

// NewApp builds the Fiber application with every route under /api/v1.
func NewApp(deps Deps) (*fiber.App, error) {
	if deps.Store == nil || deps.Tokens == nil || deps.Hasher == nil {
		return nil, errors.New("app: store, tokens and hasher are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.AccessLog == nil {
		deps.AccessLog = io.Discard
	}
	if deps.Mailer == nil {
		deps.Mailer = mail.NewLogSender(deps.Logger)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	publisher := &countingPublisher{
		next:   deps.Publisher,
		events: deps.Metrics,
	}
	if publisher.next == nil {
		publisher.next = services.NopPublisher{}
	}

	// --- Services ---
	userService := services.NewUserService(deps.Store.Users, deps.Hasher, deps.Tokens, deps.Logger)
	var images storage.ImageStore
	if deps.Images != nil {
		images = deps.Images
	}
	productService := services.NewProductService(deps.Store.Products, deps.Cache, images, deps.Logger)
	cartService := services.NewCartService(deps.Store.Cart, deps.Store.Products)
	orderService := services.NewOrderService(deps.Store.Orders, deps.Store.Products, publisher, deps.Logger)

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler(deps.Logger),
	})

	// --- Middleware ---
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: deps.AccessLog,
	}))
	app.Use(middleware.Metrics(deps.Metrics))

	requireAuth := middleware.AuthRequired(deps.Tokens, deps.Logger, deps.Metrics)

	// --- Routes ---
	handlers.NewHealthHandler(deps.Store).RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	if deps.Images != nil {
		app.Static(UploadsPath, deps.Images.Dir())
	}

	apiV1 := app.Group("/api/v1")
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1, requireAuth)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, requireAuth)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, requireAuth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, requireAuth)
	handlers.NewAuthHandler().RegisterRoutes(apiV1, requireAuth)
	handlers.NewMailHandler(deps.Mailer).RegisterRoutes(apiV1, requireAuth)

	return app, nil
}

// countingPublisher counts published order events.
type countingPublisher struct {
	next   services.Publisher
	events *metrics.Metrics
}

func (p *countingPublisher) Publish(ctx context.Context, routingKey string, v any) error {
	if err := p.next.Publish(ctx, routingKey, v); err != nil {
		return err
	}
	p.events.OrderEventsTotal.WithLabelValues(routingKey).Inc()
	return nil
}
