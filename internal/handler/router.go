package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rental-backend/internal/handler/api"
	"rental-backend/internal/handler/middleware"
	"rental-backend/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Health       *api.HealthHandler
	Booking      *api.BookingHandler
	Availability *api.AvailabilityHandler
	Pricing      *api.PricingHandler
	Webhook      *api.WebhookHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.Health.Check)
	engine.GET("/success", api.PaymentSuccess)
	engine.GET("/cancel", api.PaymentCancelled)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Signed payloads are read raw, never bound.
	webhooks := engine.Group("/webhooks")
	addRoutes(webhooks, []route{
		{Method: http.MethodPost, Path: "/stripe", Handler: h.Webhook.Stripe},
	})

	apiGroup := engine.Group("/api")
	{
		bookings := apiGroup.Group("/bookings")
		addRoutes(bookings, []route{
			{Method: http.MethodPost, Path: "", Handler: h.Booking.Create},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
			{Method: http.MethodPost, Path: "/:id/checkout", Handler: h.Booking.Checkout},
		})

		availability := apiGroup.Group("/availability")
		addRoutes(availability, []route{
			{Method: http.MethodGet, Path: "", Handler: h.Availability.Check},
			{Method: http.MethodGet, Path: "/blocked", Handler: h.Availability.Blocked},
		})

		pricing := apiGroup.Group("/pricing")
		addRoutes(pricing, []route{
			{Method: http.MethodGet, Path: "/quote", Handler: h.Pricing.Quote},
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
