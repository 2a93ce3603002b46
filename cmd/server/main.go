package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/ports"
	"github.com/hansubae/Ghighlights/internal/core/services"
	httphandlers "github.com/hansubae/Ghighlights/internal/handlers/http"
	"github.com/hansubae/Ghighlights/internal/infrastructure/distributed"
	"github.com/hansubae/Ghighlights/internal/infrastructure/middleware"
	"github.com/hansubae/Ghighlights/internal/infrastructure/monitoring"
	"github.com/hansubae/Ghighlights/internal/infrastructure/realtime"
	"github.com/hansubae/Ghighlights/internal/infrastructure/reliability"
	repositories "github.com/hansubae/Ghighlights/internal/infrastructure/repositories"
	"github.com/hansubae/Ghighlights/internal/infrastructure/storage"
	"github.com/hansubae/Ghighlights/pkg/circuitbreaker"
	"github.com/hansubae/Ghighlights/pkg/config"
	"github.com/hansubae/Ghighlights/pkg/logger"
	"github.com/hansubae/Ghighlights/pkg/retry"
	"github.com/hansubae/Ghighlights/pkg/tracing"
	"github.com/hansubae/Ghighlights/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/ghighlights/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	// Tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "ghighlights",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Repositories
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	clipRepo := repoFactory.CreateClipRepository()
	ledger := wrapLedger(repoFactory, cfg, log)

	// Media storage
	mediaStore, err := storage.NewDiskMediaStore(cfg.Storage.MediaDir)
	if err != nil {
		log.Fatalw("failed to initialize media store", "error", err)
	}

	// Realtime fanout
	metricsService := services.NewMetricsService()
	hub := realtime.NewHub(metricsService, log)
	hub.SetPingInterval(cfg.Realtime.PingInterval)
	hub.SetPongTimeout(cfg.Realtime.PongTimeout)
	hub.SetWriteTimeout(cfg.Realtime.WriteTimeout)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Cross-instance relay rides on the shared Redis client; a memory-only
	// deployment runs a single instance and needs none.
	var relay *distributed.RedisEventRelay
	if client := repoFactory.RedisClient(); client != nil && cfg.Redis.RelayEnabled {
		instanceID := utils.GenerateID("instance")
		relay = distributed.NewRedisEventRelay(client, instanceID, log)
		go func() {
			if err := relay.Subscribe(rootCtx, hub); err != nil && rootCtx.Err() == nil {
				log.Errorw("event relay subscription ended", "error", err)
			}
		}()
		log.Infow("event relay enabled", "instance_id", instanceID)
	}

	var relayPort realtime.EventRelay
	if relay != nil {
		relayPort = relay
	}
	notifier := realtime.NewNotifier(hub, relayPort, log)

	// Services
	clipService := services.NewClipService(clipRepo, mediaStore, notifier, log)
	if cfg.Cache.ClipTTL > 0 {
		clipService = services.NewCachedClipService(clipService, cfg.Cache.ClipTTL, cfg.Cache.ListTTL)
	}
	viewService := services.NewViewService(clipRepo, ledger, cfg.Views.Window, metricsService, log)
	authService := services.NewAuthService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	repoFactory.StartHousekeeping(rootCtx)

	// Monitoring
	prometheusCollector := monitoring.NewPrometheusCollector()
	go func() {
		ticker := time.NewTicker(cfg.Monitoring.MetricsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				prometheusCollector.Sample(metricsService)
			}
		}
	}()

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("repositories", func(ctx context.Context) (bool, error) {
		if err := repoFactory.HealthCheck(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, 30*time.Second, 2*time.Second)

	// HTTP handlers
	authHandler := httphandlers.NewAuthHandler(authService, cfg.Auth.AccessTokenTTL)
	clipHandler := httphandlers.NewClipHandler(
		clipService,
		viewService,
		mediaStore,
		authService,
		cfg.Storage.BaseURL,
		cfg.Storage.MaxUploadBytes,
	)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestLoggerMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	authHandler.SetupRoutes(router)
	clipHandler.SetupRoutes(router)

	// Realtime viewer endpoint
	router.GET("/ws", func(c *gin.Context) {
		hub.HandleWebSocket(c.Writer, c.Request)
	})

	// Uploaded payloads are served straight from disk
	router.Static("/uploads", mediaStore.BasePath())

	router.GET("/health", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status.Status,
			"timestamp": status.Timestamp,
			"uptime":    time.Since(startTime).String(),
			"viewers":   hub.Registry().Len(),
			"checks":    status.Checks,
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repoFactory.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not_ready",
				"timestamp": time.Now(),
				"error":     err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now(),
		})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Ghighlights server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down Ghighlights server...")
	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if relay != nil {
		relay.Close()
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("Ghighlights server stopped")
}

// wrapLedger adds retry and circuit breaking around the Redis-backed
// ledger, where transient network failures are a real concern. The
// memory ledger cannot fail and stays bare. Wrapping preserves the
// atomic capability so the view service still takes the one-step path.
func wrapLedger(factory *repositories.RepositoryFactory, cfg *config.Config, log *zap.SugaredLogger) ports.ViewLedger {
	ledger := factory.CreateViewLedger()
	if factory.RedisClient() == nil {
		return ledger
	}

	retryCfg := retry.DefaultConfig()
	cbCfg := circuitbreaker.DefaultConfig()

	if atomic, ok := ledger.(ports.AtomicViewLedger); ok {
		return reliability.NewAtomicViewLedgerWrapper(atomic, retryCfg, cbCfg, log)
	}
	return reliability.NewViewLedgerWrapper(ledger, retryCfg, cbCfg, log)
}
