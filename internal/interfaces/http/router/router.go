package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quelyos/backend/internal/infrastructure/auth"
	"github.com/quelyos/backend/internal/infrastructure/config"
	"github.com/quelyos/backend/internal/infrastructure/logger"
	"github.com/quelyos/backend/internal/infrastructure/ratelimit"
	"github.com/quelyos/backend/internal/interfaces/http/handler"
	"github.com/quelyos/backend/internal/interfaces/http/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health   *handler.HealthHandler
	Checkout *handler.CheckoutHandler
	Payment  *handler.PaymentHandler
	Chat     *handler.ChatHandler
	StockOps *handler.StockOpsHandler
	Content  *handler.ContentHandler
	Loyalty  *handler.LoyaltyHandler
	SEO      *handler.SEOHandler
}

// Dependencies holds the middleware collaborators
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Tenants  *middleware.TenantResolver
	Sessions *auth.SessionManager
	Limiter  *ratelimit.Limiter
}

// New builds the gin engine with the full middleware chain and all
// route groups
func New(deps Dependencies, h Handlers) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)

	engine.Use(
		logger.Recovery(deps.Logger),
		middleware.RequestID(),
		logger.GinMiddleware(deps.Logger),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: deps.Config.HTTP.CORSAllowOrigins,
			AllowMethods: deps.Config.HTTP.CORSAllowMethods,
			AllowHeaders: deps.Config.HTTP.CORSAllowHeaders,
		}),
		middleware.BodyLimit(deps.Config.HTTP.MaxBodySize),
	)

	health := engine.Group("/health")
	{
		health.GET("/live", h.Health.Live)
		health.GET("/ready", h.Health.Ready)
	}

	classes := ratelimit.ClassesFromConfig(deps.Config.HTTP)
	publicRead := middleware.RateLimit(deps.Limiter, classes.PublicRead)
	adminWrite := middleware.RateLimit(deps.Limiter, classes.AdminMutation)

	v1 := engine.Group("/api/v1",
		deps.Tenants.Handler(),
		middleware.Session(deps.Sessions),
	)

	ecommerce := v1.Group("/ecommerce", publicRead)
	{
		cart := ecommerce.Group("/cart")
		{
			cart.GET("", h.Checkout.GetCart)
			cart.POST("/items", h.Checkout.AddItem)
			cart.PUT("/items", h.Checkout.UpdateItem)
			cart.POST("/validate", h.Checkout.Validate)
			cart.POST("/quote", h.Checkout.Quote)
			cart.POST("/complete", h.Checkout.Complete)
			cart.POST("/cancel", h.Checkout.Cancel)
		}
		ecommerce.GET("/orders/:id", h.Checkout.GetOrder)

		loyalty := ecommerce.Group("/loyalty")
		{
			loyalty.GET("/member", h.Loyalty.GetMember)
			loyalty.GET("/history", h.Loyalty.History)
			loyalty.POST("/redeem", h.Loyalty.Redeem)
		}

		ecommerce.GET("/content/:kind", h.Content.ListVisible)
		ecommerce.GET("/content/:kind/:slug", h.Content.GetBySlug)

		ecommerce.GET("/seo/sitemap.xml", h.SEO.Sitemap)
		ecommerce.GET("/seo/robots.txt", h.SEO.Robots)
	}

	payment := v1.Group("/payment")
	{
		payment.POST("/initiate", publicRead, h.Payment.Initiate)
		payment.GET("/transactions/:id", publicRead, h.Payment.GetTransaction)
		// Webhooks authenticate by signature, not by session or budget
		payment.POST("/webhooks/:provider", h.Payment.Webhook)
	}

	ai := v1.Group("/ai")
	{
		ai.POST("/chat", middleware.ChatRateLimit(deps.Limiter, classes), h.Chat.Chat)
	}

	admin := v1.Group("/admin", middleware.RequireAuth(), adminWrite)
	{
		assistant := admin.Group("/ai", middleware.RequireAdmin())
		{
			assistant.GET("/config", h.Chat.GetConfig)
			assistant.PUT("/config", h.Chat.Configure)
		}

		content := admin.Group("/content", middleware.RequireAnyGroup("marketing"))
		{
			content.GET("/:kind", h.Content.List)
			content.POST("/:kind", h.Content.Create)
			content.POST("/reorder", h.Content.Reorder)
			content.GET("/entries/:id", h.Content.Get)
			content.PUT("/entries/:id", h.Content.Update)
			content.PATCH("/entries/:id/active", h.Content.SetActive)
			content.DELETE("/entries/:id", h.Content.Delete)
		}

		loyalty := admin.Group("/loyalty", middleware.RequireAnyGroup("manager"))
		{
			loyalty.POST("/enroll", h.Loyalty.Enroll)
			loyalty.POST("/adjust", h.Loyalty.Adjust)
			loyalty.GET("/members/:partner_id", h.Loyalty.AdminGetMember)
		}

		stock := admin.Group("/stock", middleware.RequireAnyGroup("stock", "manager"))
		{
			stock.POST("/reservations", h.StockOps.CreateReservation)
			stock.POST("/reservations/:id/activate", h.StockOps.ActivateReservation)
			stock.POST("/reservations/:id/release", h.StockOps.ReleaseReservation)
			stock.DELETE("/reservations/:id", h.StockOps.DeleteReservation)

			stock.POST("/scraps", h.StockOps.CreateScrap)
			stock.POST("/scraps/:id/validate", h.StockOps.ValidateScrap)
			stock.DELETE("/scraps/:id", h.StockOps.DeleteScrap)

			stock.POST("/counts", h.StockOps.ScheduleCount)
			stock.POST("/counts/:id/start", h.StockOps.StartCount)
			stock.POST("/counts/:id/record", h.StockOps.RecordCount)
			stock.POST("/counts/:id/validate", h.StockOps.ValidateCount)
			stock.POST("/counts/:id/cancel", h.StockOps.CancelCount)

			stock.POST("/transfers", h.StockOps.Transfer)

			stock.POST("/locations/:id/reparent", h.StockOps.ReparentLocation)
			stock.POST("/locations/:id/lock", h.StockOps.LockLocation)
			stock.POST("/locations/:id/unlock", h.StockOps.UnlockLocation)

			stock.POST("/rules", h.StockOps.CreateRule)
			stock.PUT("/rules/:id/range", h.StockOps.UpdateRuleRange)
			stock.POST("/rules/:id/archive", h.StockOps.ArchiveRule)
			stock.GET("/replenishment", h.StockOps.ReplenishmentSuggestions)

			stock.GET("/analytics/abc/:warehouse_id", h.StockOps.ABCAnalysis)
			stock.GET("/analytics/turnover", h.StockOps.Turnover)
			stock.GET("/analytics/forecast", h.StockOps.DemandForecast)

			stock.GET("/lots/expiring", h.StockOps.ExpiringLots)
			stock.GET("/lots/fefo/:product_id", h.StockOps.FEFOPick)
			stock.GET("/lots/:id/trace", h.StockOps.TraceLot)
		}
	}

	pos := v1.Group("/pos", middleware.RequireAuth(), middleware.RequireAnyGroup("pos"), publicRead)
	{
		pos.POST("/reservations", h.StockOps.CreateReservation)
		pos.POST("/reservations/:id/activate", h.StockOps.ActivateReservation)
		pos.POST("/reservations/:id/release", h.StockOps.ReleaseReservation)
		pos.GET("/lots/fefo/:product_id", h.StockOps.FEFOPick)
	}

	return engine
}
