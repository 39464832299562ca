package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppayroll "github.com/hrmax/backend/internal/application/payroll"
	"github.com/hrmax/backend/internal/infrastructure/cache"
	"github.com/hrmax/backend/internal/infrastructure/config"
	"github.com/hrmax/backend/internal/infrastructure/logger"
	"github.com/hrmax/backend/internal/infrastructure/persistence"
	"github.com/hrmax/backend/internal/interfaces/http/handler"
	"github.com/hrmax/backend/internal/interfaces/http/middleware"
	"github.com/hrmax/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting HRMax Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis-backed concept catalog cache. The catalog service degrades to
	// the repository when Redis is unavailable, so a failure here only
	// logs a warning.
	var conceptCache apppayroll.ConceptCache
	catalogCache, err := cache.NewRedisCatalogCache(cfg.Redis,
		cache.WithCatalogTTL(cfg.Payroll.CatalogCacheTTL),
		cache.WithCacheLogger(log),
	)
	if err != nil {
		log.Warn("Concept cache unavailable, catalog reads go to the database", zap.Error(err))
	} else {
		conceptCache = catalogCache
		defer func() {
			if err := catalogCache.Close(); err != nil {
				log.Error("Error closing concept cache", zap.Error(err))
			}
		}()
	}

	// Repositories
	conceptRepo := persistence.NewGormConceptRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	periodRepo := persistence.NewGormPeriodRepository(db.DB)
	incidentRepo := persistence.NewGormIncidentRepository(db.DB)
	runRepo := persistence.NewGormPayrollRunRepository(db.DB)

	// Application services
	catalogService := apppayroll.NewCatalogService(conceptRepo, conceptCache, log)
	runService := apppayroll.NewRunService(
		runRepo, employeeRepo, periodRepo, incidentRepo, catalogService,
		apppayroll.WithWorkers(cfg.Payroll.BatchWorkers),
		apppayroll.WithRunLogger(log),
	)

	// Development convenience: install the built-in catalog for the
	// default tenant so a fresh database can run payroll immediately.
	if cfg.Payroll.SeedDefaults {
		devTenant := uuid.MustParse("00000000-0000-0000-0000-000000000001")
		seeded, err := catalogService.SeedDefaults(context.Background(), devTenant)
		if err != nil {
			log.Warn("Failed to seed default catalog", zap.Error(err))
		} else if seeded > 0 {
			log.Info("Default catalog seeded",
				zap.String("tenant_id", devTenant.String()),
				zap.Int("concepts", seeded))
		}
	}

	// Handlers
	conceptHandler := handler.NewConceptHandler(catalogService)
	runHandler := handler.NewRunHandler(runService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging,
	// CORS, then tenant extraction.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Logger = log
	engine.Use(middleware.TenantWithConfig(tenantConfig))

	// Health check endpoint (outside API versioning and tenant scope)
	engine.GET("/health", healthHandler(db))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(conceptHandler).
		Register(runHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
