package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipeline-orchestrator/internal/adapters/primary/http/handlers"
	"pipeline-orchestrator/internal/adapters/primary/http/middleware"
	"pipeline-orchestrator/internal/adapters/secondary/configrepo"
	"pipeline-orchestrator/internal/adapters/secondary/gitops"
	"pipeline-orchestrator/internal/adapters/secondary/postgres"
	"pipeline-orchestrator/internal/adapters/secondary/registry"
	"pipeline-orchestrator/internal/adapters/secondary/runner"
	"pipeline-orchestrator/internal/config"
	output "pipeline-orchestrator/internal/core/ports/output"
	"pipeline-orchestrator/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Secondary adapters (output ports)
	pipelineRepo := postgres.NewPipelineRepository(pool)
	runRepo := postgres.NewRunRepository(pool)
	envRepo := postgres.NewEnvironmentRepository(pool)
	artifactRepo := postgres.NewArtifactRepository(pool)
	promotionRepo := postgres.NewPromotionRepository(pool)
	scanRepo := postgres.NewScanReportRepository(pool)

	stepRunner := runner.NewLocalRunner(cfg.Runner.WorkDir, cfg.Runner.MaxOutputBytes)

	registryClient := registry.NewClient(cfg.Registry.Enabled)
	if cfg.Registry.Enabled {
		log.Info("registry client initialized")
	} else {
		log.Info("registry integration disabled, digests must be supplied by build steps")
	}

	manifestClient := configrepo.NewClient(cfg.ConfigRepo.Enabled, configrepo.Options{
		BaseURL: cfg.ConfigRepo.BaseURL,
		Owner:   cfg.ConfigRepo.Owner,
		Repo:    cfg.ConfigRepo.Repo,
		Branch:  cfg.ConfigRepo.Branch,
		Token:   cfg.ConfigRepo.Token,
	})
	if cfg.ConfigRepo.Enabled {
		log.Info("config repo client initialized")
	} else {
		log.Info("config repo integration disabled, promotions will stay pending")
	}

	// GitOps client (optional - based on config)
	var gitopsClient output.GitOpsClient
	if cfg.Kubernetes.Enabled {
		client, err := gitops.NewGitOpsClient(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("GitOps client init failed (continuing without sync status): %v", err)
		} else {
			gitopsClient = client
			log.Info("GitOps client initialized")
		}
	} else {
		log.Info("GitOps integration disabled")
	}

	// Core services
	gate := services.NewGateEvaluator(envRepo, scanRepo)
	scanSvc := services.NewScanService(scanRepo)
	promotionSvc := services.NewPromotionService(promotionRepo, artifactRepo, envRepo, manifestClient)
	runSvc := services.NewRunService(runRepo, gate, stepRunner, scanSvc, promotionSvc)
	pipelineSvc := services.NewPipelineService(pipelineRepo)
	triggerSvc := services.NewTriggerService(pipelineRepo, runSvc)
	envSvc := services.NewEnvironmentService(envRepo, promotionRepo)
	artifactSvc := services.NewArtifactService(artifactRepo, registryClient)
	syncSvc := services.NewSyncService(promotionRepo, envRepo, gitopsClient)

	// Primary adapter (HTTP handlers)
	h := handlers.New(pipelineSvc, runSvc, triggerSvc, envSvc, artifactSvc, promotionSvc, scanSvc, syncSvc, cfg.Webhook.Secret)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/pipeline-orchestrator")
	h.RegisterRoutes(api)
	h.RegisterWebhookRoutes(router.Group(""))

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Background sync poller
	pollCtx, pollCancel := context.WithCancel(context.Background())
	defer pollCancel()
	go syncSvc.Poll(pollCtx, cfg.Sync.PollInterval)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	pollCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}
	if err := runSvc.Shutdown(ctx); err != nil {
		log.Errorf("runs forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
