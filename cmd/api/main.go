package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocky-api/internal/ai"
	"stocky-api/internal/apperror"
	"stocky-api/internal/cache"
	"stocky-api/internal/handler"
	"stocky-api/internal/middleware"
	"stocky-api/internal/model"
	"stocky-api/internal/repository"
	"stocky-api/internal/scheduler"
	"stocky-api/internal/service"
	"stocky-api/internal/ws"
	"stocky-api/pkg/blockchain"
	"stocky-api/pkg/config"
	"stocky-api/pkg/database"
	"stocky-api/pkg/jwt"
	"stocky-api/pkg/logger"
	"stocky-api/pkg/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	serviceName    = "stocky-api"
	pricingTimeout = 15 * time.Minute
	shutdownWait   = 30 * time.Second

	defaultJWTSecret = "stocky-dev-secret-change-me"
)

func main() {
	// 1. Config and logging
	cfg := config.Load(serviceName)
	if err := logger.Init(cfg.Log.Level, cfg.Server.Env, cfg.ServiceName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()
	defer log.Sync()
	log.Info("Starting service", cfg.LogFields()...)
	if cfg.IsProduction() && cfg.JWT.Secret == defaultJWTSecret {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// 2. Database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	// AutoMigrate only; there is no separate migration tool
	if err := db.AutoMigrate(
		&model.Privilege{}, &model.Role{}, &model.User{},
		&model.Business{}, &model.Category{}, &model.Product{}, &model.PriceHistory{},
		&model.Order{}, &model.OrderItem{}, &model.Payment{},
	); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 3. Seed privileges, roles, categories and the first admin
	seedDefaults(db, cfg.Seed, log)

	// 4. Outbound integrations
	wallet, err := newWallet(cfg.Blockchain, log)
	if err != nil {
		log.Fatal("Failed to configure blockchain wallet", zap.Error(err))
	}

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()
	resultCache := cache.New(rootCtx, cfg.Redis.URL, log)

	var primary ai.Analyzer
	if cfg.AI.APIKey != "" {
		primary = ai.NewAPIAnalyzer(ai.APIConfig{
			APIKey:  cfg.AI.APIKey,
			URL:     cfg.AI.APIURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
	}
	analyzer := ai.NewCachedAnalyzer(
		ai.NewFallbackAnalyzer(primary, ai.NewMockAnalyzer(), log),
		resultCache, cfg.AI.CacheTTL, log,
	)

	metrics.Register()

	// 5. WebSocket hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 6. Dependency injection
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	businessRepo := repository.NewBusinessRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	dashRepo := repository.NewDashboardRepo(db)

	authService := service.NewAuthService(userRepo, roleRepo, tokens, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	businessService := service.NewBusinessService(businessRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, businessRepo, categoryRepo, wsHub)
	pricingService := service.NewPricingService(productRepo, wsHub, log)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, userRepo, wallet, wsHub, log)
	carbonService := service.NewCarbonService(userRepo, orderRepo, wallet, log)
	orderService := service.NewOrderService(orderRepo, businessRepo, paymentService, carbonService, wsHub, log)
	aiService := service.NewAIService(analyzer, categoryRepo)
	dashService := service.NewDashboardService(dashRepo, businessRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo, userService)
	businessHandler := handler.NewBusinessHandler(businessService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	carbonHandler := handler.NewCarbonHandler(carbonService)
	aiHandler := handler.NewAIHandler(aiService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	dashHandler := handler.NewDashboardHandler(dashService)

	// 7. Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Stocky API v1.0",
		ErrorHandler: apperror.Handler,
		BodyLimit:    6 * 1024 * 1024, // image uploads are capped at 5MB by the handler
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORSOrigins}))
	app.Use(logger.Middleware())
	app.Use(metrics.Middleware())

	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerSecond, cfg.RateLimit.AuthBurst)
	stopCleanup := make(chan struct{})
	go authLimiter.StartCleanup(time.Minute, stopCleanup)

	requireAuth := middleware.RequireAuth(tokens, userRepo)

	// 8. Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(db); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "database": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "database": "up"})
	})
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authLimiter.Handler(), authHandler.Register)
	auth.Post("/login", authLimiter.Handler(), authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)
	auth.Get("/me", requireAuth, authHandler.Me)

	api.Get("/products", productHandler.ListProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Get("/products/:id/price-history", productHandler.GetPriceHistory)
	api.Get("/businesses", businessHandler.ListBusinesses)
	api.Get("/categories", categoryHandler.ListCategories)
	api.Get("/carbon/leaderboard", carbonHandler.GetLeaderboard)
	api.Get("/blockchain/status", paymentHandler.NetworkStatus)
	api.Post("/ai/suggest-price", aiHandler.SuggestPrice)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Users
	protected.Get("/users/me", userHandler.GetMe)
	protected.Put("/users/me", userHandler.UpdateMe)
	protected.Put("/users/me/wallet", userHandler.SetWallet)
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserManage), userHandler.GetUsers)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserManage), userHandler.CreateUser)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserManage), userHandler.GetUser)
	protected.Put("/users/:id/status", middleware.RequirePrivilege(model.PrivUserManage), userHandler.SetStatus)

	// Roles and privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)
	protected.Put("/roles/:code/privileges", middleware.RequirePrivilege(model.PrivUserManage), roleHandler.UpdateRolePrivileges)

	// Businesses
	protected.Get("/businesses/mine", middleware.RequirePrivilege(model.PrivBusinessManage), businessHandler.ListMine)
	protected.Post("/businesses", middleware.RequirePrivilege(model.PrivBusinessManage), businessHandler.CreateBusiness)
	protected.Put("/businesses/:id", middleware.RequirePrivilege(model.PrivBusinessManage), businessHandler.UpdateBusiness)
	protected.Delete("/businesses/:id", middleware.RequirePrivilege(model.PrivBusinessManage), businessHandler.DeleteBusiness)

	// Categories
	protected.Post("/categories", middleware.RequirePrivilege(model.PrivCategoryManage), categoryHandler.CreateCategory)
	protected.Put("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), categoryHandler.UpdateCategory)

	// Products
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), productHandler.CreateProduct)
	protected.Patch("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), productHandler.DeleteProduct)

	// Pricing
	protected.Post("/pricing/run", middleware.RequirePrivilege(model.PrivPricingRun), pricingHandler.RunPass)

	// Orders
	protected.Post("/orders", middleware.RequirePrivilege(model.PrivOrderCreate), orderHandler.CreateOrder)
	protected.Get("/orders/mine", orderHandler.ListMyOrders)
	protected.Get("/orders/business/:id", middleware.RequirePrivilege(model.PrivOrderFulfil), orderHandler.ListBusinessOrders)
	orderParty := middleware.RequireAnyPrivilege(model.PrivOrderCreate, model.PrivOrderFulfil)
	protected.Get("/orders/:id", orderParty, orderHandler.GetOrder)
	protected.Patch("/orders/:id/status", orderParty, orderHandler.UpdateStatus)

	// Payments
	protected.Post("/payments/orders/:id", middleware.RequirePrivilege(model.PrivOrderCreate), paymentHandler.PayOrder)
	protected.Get("/payments/orders/:id", paymentHandler.GetPayment)
	protected.Post("/payments/orders/:id/settle", middleware.RequireRole(model.RoleAdmin), paymentHandler.Settle)

	// Carbon
	protected.Get("/carbon/me", carbonHandler.GetMyCredits)

	// AI
	protected.Post("/ai/analyze-image", middleware.RequirePrivilege(model.PrivProductCreate), aiHandler.AnalyzeImage)

	// Dashboard
	protected.Get("/dashboard/businesses/:id", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetBusinessStats)
	protected.Get("/dashboard/businesses/:id/sales", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetSalesMovement)
	protected.Get("/dashboard/platform", middleware.RequirePrivilege(model.PrivPlatformView), dashHandler.GetPlatformStats)

	// WebSocket Route, token passed as ?token=
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", requireAuth, websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Pricing scheduler
	var sched *scheduler.Scheduler
	if cfg.Pricing.Enabled {
		sched = scheduler.New(pricingService, pricingTimeout, log)
		if err := sched.AddPricingJob(cfg.Pricing.Cron); err != nil {
			log.Fatal("Invalid PRICING_CRON", zap.String("spec", cfg.Pricing.Cron), zap.Error(err))
		}
		sched.Start()
	}

	// 10. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	if sched != nil {
		sched.Stop(ctx)
	}
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stopCleanup)
	if err := resultCache.Close(); err != nil {
		log.Warn("Failed to close cache", zap.Error(err))
	}
	wsHub.Stop()

	log.Info("Server exited")
}

// newWallet picks the escrow/carbon backend. rpc mode talks to the node
// directly and surfaces failures; demo mode masks them, and without an
// RPC URL every transaction is simulated.
func newWallet(cfg config.BlockchainConfig, log *zap.Logger) (blockchain.Wallet, error) {
	var rpc blockchain.Wallet
	if cfg.RPCURL != "" {
		client, err := blockchain.NewClient(blockchain.Config{RPCURL: cfg.RPCURL, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		rpc = blockchain.NewRPCWallet(client, cfg.OperatorAddress, cfg.EscrowContract, cfg.CarbonContract)
	}

	switch cfg.Mode {
	case "rpc":
		if rpc == nil {
			return nil, fmt.Errorf("BLOCKCHAIN_MODE=rpc requires BLOCKCHAIN_RPC_URL")
		}
		log.Info("blockchain: rpc mode", zap.String("rpc_url", cfg.RPCURL))
		return rpc, nil
	case "demo", "":
		log.Info("blockchain: demo mode", zap.Bool("rpc_configured", rpc != nil))
		return blockchain.NewDemoWallet(rpc, log), nil
	default:
		return nil, fmt.Errorf("unknown BLOCKCHAIN_MODE %q", cfg.Mode)
	}
}

// seedDefaults creates default privileges, roles, categories and the admin user if they don't exist
func seedDefaults(db *gorm.DB, cfg config.SeedConfig, log *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warn("Failed to seed privileges", zap.Error(err))
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn("Failed to seed roles", zap.Error(err))
	}
	if err := categoryRepo.SeedDefaults(); err != nil {
		log.Warn("Failed to seed categories", zap.Error(err))
	}

	// Roles that already carry privileges were set up by an operator; leave them alone
	allPrivileges, _ := privilegeRepo.FindAll()
	for _, def := range model.DefaultRoles {
		role, err := roleRepo.FindByCode(def.Code)
		if err != nil || len(role.Privileges) > 0 {
			continue
		}

		privileges := allPrivileges
		if def.Code != model.RoleAdmin {
			privileges, err = privilegeRepo.FindByCodes(model.RolePrivileges[def.Code])
			if err != nil {
				log.Warn("Failed to load role privileges", zap.String("role", def.Code), zap.Error(err))
				continue
			}
		}
		if err := roleRepo.ReplacePrivileges(role, privileges); err != nil {
			log.Warn("Failed to assign role privileges", zap.String("role", def.Code), zap.Error(err))
			continue
		}
		log.Info("Role privileges assigned", zap.String("role", def.Code), zap.Int("count", len(privileges)))
	}

	if _, err := userRepo.FindByEmail(cfg.AdminEmail); err == nil {
		return
	}
	if cfg.AdminPassword == "" {
		log.Warn("No admin user and ADMIN_PASSWORD is empty, skipping admin seed", zap.String("email", cfg.AdminEmail))
		return
	}

	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		log.Warn("ADMIN role missing, skipping admin seed", zap.Error(err))
		return
	}
	admin := &model.User{
		Email:    cfg.AdminEmail,
		FullName: "Platform Administrator",
		RoleID:   &adminRole.ID,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Warn("Failed to hash admin password", zap.Error(err))
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Warn("Failed to create admin user", zap.Error(err))
		return
	}
	log.Info("Admin user created", zap.String("email", cfg.AdminEmail))
}
