package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	aichatapp "github.com/quelyos/backend/internal/application/aichat"
	checkoutapp "github.com/quelyos/backend/internal/application/checkout"
	contentapp "github.com/quelyos/backend/internal/application/content"
	loyaltyapp "github.com/quelyos/backend/internal/application/loyalty"
	paymentapp "github.com/quelyos/backend/internal/application/payment"
	seoapp "github.com/quelyos/backend/internal/application/seo"
	stockopsapp "github.com/quelyos/backend/internal/application/stockops"
	"github.com/quelyos/backend/internal/domain/ai"
	"github.com/quelyos/backend/internal/domain/checkout"
	domainpayment "github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/quelyos/backend/internal/infrastructure/auth"
	"github.com/quelyos/backend/internal/infrastructure/cache"
	"github.com/quelyos/backend/internal/infrastructure/config"
	"github.com/quelyos/backend/internal/infrastructure/event"
	"github.com/quelyos/backend/internal/infrastructure/llm"
	"github.com/quelyos/backend/internal/infrastructure/logger"
	gatewayimpl "github.com/quelyos/backend/internal/infrastructure/payment"
	"github.com/quelyos/backend/internal/infrastructure/persistence"
	"github.com/quelyos/backend/internal/infrastructure/ratelimit"
	"github.com/quelyos/backend/internal/infrastructure/scheduler"
	"github.com/quelyos/backend/internal/interfaces/http/handler"
	"github.com/quelyos/backend/internal/interfaces/http/middleware"
	"github.com/quelyos/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("starting quelyos backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	// Redis is optional: cache, rate limiting and revocation all degrade
	// to in-process fallbacks without it
	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-process fallbacks", zap.Error(err))
		redisClient = nil
	}
	cacheService := cache.NewService(redisClient, log)
	limiter := ratelimit.NewLimiter(redisClient, log)

	var revocation auth.RevocationList
	if redisClient != nil {
		revocation = auth.NewRedisRevocationList(redisClient)
	} else {
		revocation = auth.NewInMemoryRevocationList()
	}
	sessions := auth.NewSessionManager(cfg.JWT, revocation)

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productCatalog := persistence.NewGormProductCatalog(db.DB)
	transactionRepo := persistence.NewGormPaymentTransactionRepository(db.DB)
	paymentScope := persistence.NewGormPaymentTransactionScope(db.DB)
	configRepo := persistence.NewGormAssistantConfigRepository(db.DB)
	conversationRepo := persistence.NewGormConversationRepository(db.DB)
	usageRepo := persistence.NewGormUsageRepository(db.DB)
	entryRepo := persistence.NewGormContentEntryRepository(db.DB)
	memberRepo := persistence.NewGormLoyaltyMemberRepository(db.DB)
	programRepo := persistence.NewGormLoyaltyProgramRepository(db.DB)
	loyaltyTxRepo := persistence.NewGormLoyaltyTransactionRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	scrapRepo := persistence.NewGormScrapRepository(db.DB)
	cycleCountRepo := persistence.NewGormCycleCountRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	locationLockRepo := persistence.NewGormLocationLockRepository(db.DB)
	ruleRepo := persistence.NewGormReorderingRuleRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	quantRepo := persistence.NewGormQuantRepository(db.DB)
	salesReader := persistence.NewGormSalesReader(db.DB)
	stockScope := persistence.NewGormStockTransactionScope(db.DB)
	sitemapSource := persistence.NewGormSitemapSource(db.DB)

	// Payment gateways, per enabled provider
	gateways := buildGateways(cfg.Payment, log)

	// LLM clients
	aiClients := []ai.Client{
		llm.NewGroqClient(cfg.AI),
		llm.NewClaudeClient(cfg.AI),
	}

	// Application services
	checkoutService := checkoutapp.NewService(orderRepo, productCatalog, checkoutSettings(cfg.Checkout, log))
	var webhookLocker paymentapp.Locker = cache.NewLocalLocker()
	if redisClient != nil {
		webhookLocker = cache.NewRedisLocker(redisClient, "payment:webhook", log)
	}
	paymentService := paymentapp.NewService(transactionRepo, orderRepo,
		paymentScope, webhookLocker, gateways...)
	chatService := aichatapp.NewService(configRepo, conversationRepo, usageRepo, entryRepo, aiClients...)
	contentService := contentapp.NewService(entryRepo)
	loyaltyService := loyaltyapp.NewService(memberRepo, programRepo, loyaltyTxRepo)
	stockOpsService := stockopsapp.NewService(
		reservationRepo, scrapRepo, cycleCountRepo,
		locationRepo, locationLockRepo, ruleRepo,
		lotRepo, movementRepo, quantRepo,
		quantRepo, salesReader, stockScope,
	)
	seoService := seoapp.NewService(sitemapSource, cfg.App, cfg.SEO)

	// Event bus: order paid feeds the loyalty ledger
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(loyaltyapp.NewOrderPaidHandler(loyaltyService, log))

	checkoutService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	loyaltyService.SetEventPublisher(eventBus)
	stockOpsService.SetEventPublisher(eventBus)

	// Background sweeps: expired reservations, stuck payments, idle chats
	sweeper := scheduler.NewSweeper(
		cfg.Scheduler,
		cfg.Payment.PendingTimeout,
		cfg.AI.ConversationTTL,
		stockOpsService,
		paymentService,
		chatService,
		log,
	)
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	engine := router.New(router.Dependencies{
		Config:   cfg,
		Logger:   log,
		Tenants:  middleware.NewTenantResolver(tenantRepo, cacheService),
		Sessions: sessions,
		Limiter:  limiter,
	}, router.Handlers{
		Health:   handler.NewHealthHandler(db.DB, redisClient),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Payment:  handler.NewPaymentHandler(paymentService),
		Chat:     handler.NewChatHandler(chatService),
		StockOps: handler.NewStockOpsHandler(stockOpsService),
		Content:  handler.NewContentHandler(contentService, cacheService),
		Loyalty:  handler.NewLoyaltyHandler(loyaltyService),
		SEO:      handler.NewSEOHandler(seoService, cacheService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// buildGateways constructs an adapter per enabled payment provider.
// A misconfigured provider is skipped with a warning rather than
// blocking startup of the others.
func buildGateways(cfg config.PaymentConfig, log *zap.Logger) []domainpayment.Gateway {
	var gateways []domainpayment.Gateway

	if cfg.Flouci.Enabled {
		if g, err := gatewayimpl.NewFlouciAdapter(cfg.Flouci); err != nil {
			log.Warn("flouci gateway disabled", zap.Error(err))
		} else {
			gateways = append(gateways, g)
		}
	}
	if cfg.Konnect.Enabled {
		if g, err := gatewayimpl.NewKonnectAdapter(cfg.Konnect); err != nil {
			log.Warn("konnect gateway disabled", zap.Error(err))
		} else {
			gateways = append(gateways, g)
		}
	}
	if cfg.Stripe.Enabled {
		if g, err := gatewayimpl.NewStripeAdapter(cfg.Stripe); err != nil {
			log.Warn("stripe gateway disabled", zap.Error(err))
		} else {
			gateways = append(gateways, g)
		}
	}

	log.Info("payment gateways ready", zap.Int("count", len(gateways)))
	return gateways
}

// checkoutSettings parses the tenant-level checkout knobs from config
func checkoutSettings(cfg config.CheckoutConfig, log *zap.Logger) checkoutapp.Settings {
	// an empty or unparseable threshold disables free shipping
	threshold := valueobject.NewMoneyTND(decimal.Zero)
	if cfg.FreeShippingThreshold != "" {
		parsed, err := valueobject.NewMoneyFromString(cfg.FreeShippingThreshold, valueobject.TND)
		if err != nil {
			log.Warn("invalid free shipping threshold, feature disabled",
				zap.String("value", cfg.FreeShippingThreshold), zap.Error(err))
		} else {
			threshold = parsed
		}
	}

	taxRate, err := decimal.NewFromString(cfg.DefaultTaxRate)
	if err != nil {
		log.Warn("invalid default tax rate, using 19%",
			zap.String("value", cfg.DefaultTaxRate), zap.Error(err))
		taxRate = decimal.NewFromFloat(0.19)
	}

	return checkoutapp.Settings{
		ZoneTable:      checkout.DefaultZoneTable(),
		FreeThreshold:  threshold,
		DefaultTaxRate: taxRate,
	}
}
