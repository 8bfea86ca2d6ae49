// Command server runs the POS sale ingestion gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apppos "github.com/erp/posgateway/internal/application/pos"
	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/infrastructure/cache"
	"github.com/erp/posgateway/internal/infrastructure/config"
	"github.com/erp/posgateway/internal/infrastructure/logger"
	"github.com/erp/posgateway/internal/infrastructure/persistence"
	"github.com/erp/posgateway/internal/infrastructure/storage"
	"github.com/erp/posgateway/internal/infrastructure/telemetry"
	"github.com/erp/posgateway/internal/interfaces/http/middleware"
	"github.com/erp/posgateway/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if err := run(cfg, logCfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logCfg *logger.Config, log *zap.Logger) error {
	ctx := context.Background()

	// Log export has to exist before the final logger is built
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	if lp.IsEnabled() {
		bridged, err := logger.New(logCfg, lp.Core(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			return fmt.Errorf("rebuild logger: %w", err)
		}
		log = bridged
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting POS gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.Telemetry.ServiceName, log)
	if err != nil {
		return err
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tp.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.NewDBTracing(cfg.Telemetry, cfg.Database.Driver, log).Register(db.DB); err != nil {
			return err
		}
	}
	if mp.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		reg, err := telemetry.RegisterDBPoolMetrics(mp.Meter("posgateway/db"), sqlDB)
		if err != nil {
			return err
		}
		defer func() { _ = reg.Unregister() }()
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	limiter, err := cache.NewRateLimiterFactory(cfg.POS, redisClient, cache.WithLogger(log)).CreateLimiter()
	if err != nil {
		return err
	}
	if closer, ok := limiter.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	settings := cache.NewSettingsProvider(
		persistence.NewGormSettingsRepository(db.DB),
		settingsDefaults(cfg.POS),
		cfg.POS.SettingsCacheTTL,
		log,
	)

	processor := apppos.NewSaleProcessor(
		persistence.NewReadRepositories(db.DB),
		persistence.NewGormSaleTransactionScope(db.DB),
		limiter,
		settings,
		log,
	)
	if redisClient != nil {
		processor.SetLocker(cache.NewRedisSaleLocker(redisClient, cfg.POS.LockTTL, log))
	}
	if cfg.Storage.Enabled {
		archiver, err := storage.NewS3SaleArchiver(ctx, cfg.Storage, log)
		if err != nil {
			return err
		}
		if err := archiver.EnsureBucket(ctx); err != nil {
			return err
		}
		processor.SetArchiver(archiver)
	}
	saleMetrics, err := telemetry.NewSaleMetrics(mp.Meter("posgateway/sales"))
	if err != nil {
		return err
	}
	processor.SetMetrics(saleMetrics)

	var ipLimiter *middleware.IPRateLimiter
	if cfg.HTTP.RateLimitEnabled {
		ipLimiter = middleware.NewIPRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		defer ipLimiter.Close()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.New(router.Dependencies{
		Logger:      log,
		ServiceName: cfg.Telemetry.ServiceName,
		APIKey:      cfg.POS.APIKey,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		},
		IPLimiter:      ipLimiter,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Sales:          processor,
		Database:       db,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}
	if cfg.POS.APIKey == "" {
		log.Warn("POS API key is empty; sale requests are not authenticated")
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	return nil
}

// settingsDefaults seeds the processor settings with the configured values.
// Rows in the settings table still override them at runtime.
func settingsDefaults(cfg config.POSConfig) pos.Settings {
	s := pos.DefaultSettings()
	s.PriceTolerancePercent = decimal.NewFromFloat(cfg.PriceTolerancePercent)
	s.ValidateStock = cfg.ValidateStock
	s.ValidateCredit = cfg.ValidateCredit
	s.RejectZeroCost = cfg.RejectZeroCost
	if cfg.WalkInCustomerCode != "" {
		s.WalkInCustomerCode = cfg.WalkInCustomerCode
	}
	if cfg.DefaultCurrency != "" {
		s.DefaultCurrency = cfg.DefaultCurrency
	}
	return s
}
