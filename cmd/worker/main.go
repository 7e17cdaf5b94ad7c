package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/wjlee930501/motion-ai-cs/common/id"
	"github.com/wjlee930501/motion-ai-cs/common/llm"
	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/common/otel"
	"github.com/wjlee930501/motion-ai-cs/core/config"
	"github.com/wjlee930501/motion-ai-cs/core/db"
	"github.com/wjlee930501/motion-ai-cs/internal/alert"
	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/http/handler"
	"github.com/wjlee930501/motion-ai-cs/internal/http/middleware"
	httprouter "github.com/wjlee930501/motion-ai-cs/internal/http/router"
	"github.com/wjlee930501/motion-ai-cs/internal/queue"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
	"github.com/wjlee930501/motion-ai-cs/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)

	slog.InfoContext(ctx, "cs worker starting",
		"env", cfg.Env,
		"node_id", cfg.Worker.NodeID,
		"batch_size", cfg.Worker.BatchSize,
		"sla_threshold", cfg.Worker.SLAThreshold)

	// Use a different node ID than the ingest API
	if err := id.Init(cfg.Worker.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	stores := store.NewStores(database.Queries())
	txRunner := service.NewTxRunner(database)
	services := service.NewServices(stores, service.Deps{ProfileWindow: cfg.Worker.ProfileWindow})

	var waker worker.Waker
	if cfg.Redis.Enabled() {
		if client, err := connectRedis(ctx, cfg.Redis.URL); err != nil {
			slog.WarnContext(ctx, "redis unavailable, falling back to polling", "error", err)
		} else {
			defer client.Close()
			waker = queue.NewRedisWaker(client, cfg.Redis.Stream)
			slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.Stream)
		}
	}

	var dispatcher alert.Dispatcher
	if cfg.Alert.Enabled() {
		dispatcher = alert.NewSlackWebhook(alert.Config{
			WebhookURL:   cfg.Alert.SlackWebhookURL,
			DashboardURL: cfg.DashboardURL,
			Timeout:      cfg.Alert.Timeout,
			MaxFailures:  5,
			OpenTimeout:  time.Minute,
		}, nil)
	} else {
		slog.WarnContext(ctx, "slack webhook not configured; SLA alerts will not be sent")
	}

	pipeline := classify.NewPipeline(
		classify.NewMatcher(stores.Learnings(), cfg.Classifier.PatternCacheTTL),
		newLLMClient(ctx, "primary", cfg.PrimaryLLM, cfg.Classifier.Timeout),
		newLLMClient(ctx, "escalated", cfg.EscalatedLLM, cfg.Classifier.Timeout),
		stores.Learnings(),
		classify.Config{
			EscalationConfidence: cfg.Classifier.EscalationConfidence,
			GuidanceTTL:          cfg.Classifier.PatternCacheTTL,
			MaxTokens:            cfg.PrimaryLLM.MaxTokens,
		},
		nil,
	)

	processor := worker.NewEventProcessor(
		stores.MessageEvents(),
		stores.Profiles(),
		stores.AlertLogs(),
		pipeline,
		txRunner,
		dispatcher,
		worker.ProcessorConfig{ContextTurns: cfg.Classifier.ContextTurns},
		nil,
	)

	slaMonitor := worker.NewSLAMonitor(stores.Tickets(), txRunner, dispatcher, worker.SLAConfig{
		Threshold: cfg.Worker.SLAThreshold,
		ScanLimit: cfg.Worker.SLAScanLimit,
	}, nil)

	w := worker.New(stores.MessageEvents(), processor, slaMonitor, waker, worker.Config{
		BatchSize:         cfg.Worker.BatchSize,
		PollInterval:      cfg.Worker.PollInterval,
		DebugRoomPrefixes: cfg.Worker.DebugRoomPrefixes,
	}, nil)

	reclaimer := worker.NewReclaimer(stores.MessageEvents(), worker.ReclaimerConfig{
		StaleAfter: cfg.Worker.StaleClaimAfter,
		Interval:   cfg.Worker.ReclaimInterval,
	}, nil)

	scheduler, err := worker.NewScheduler(services.Profiles(), cfg.Worker.ProfileCron, cfg.Location(), nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create scheduler", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	// A pass normally completes within one poll interval; allow slow LLM batches.
	staleAfter := max(10*cfg.Worker.PollInterval, 2*time.Minute)
	httprouter.WorkerRoutes(router, handler.NewWorkerHandler(w, scheduler, pipeline, staleAfter), cfg.AdminAPIKey)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	// The loop is stopped explicitly so an in-flight batch can commit.
	workCtx := context.WithoutCancel(gctx)
	g.Go(func() error {
		return w.Run(workCtx)
	})
	g.Go(func() error {
		reclaimer.Run(workCtx)
		return nil
	})
	g.Go(func() error {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		slog.InfoContext(ctx, "shutting down worker...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reclaimer.Stop()
		w.Stop()
		if err := scheduler.Shutdown(); err != nil {
			slog.ErrorContext(shutdownCtx, "scheduler shutdown error", "error", err)
		}
		return server.Shutdown(shutdownCtx)
	})

	scheduler.Start()
	slog.InfoContext(ctx, "worker initialized and running")

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "worker exited with error", "error", err)
	}

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// newLLMClient returns nil for an unconfigured tier; the pipeline then falls
// back to the other tier or a conservative default.
func newLLMClient(ctx context.Context, tier string, cfg config.LLMConfig, timeout time.Duration) llm.Client {
	if !cfg.Enabled() {
		slog.WarnContext(ctx, "llm tier not configured", "tier", tier)
		return nil
	}
	client, err := llm.New(llm.Config{
		Provider:  cfg.Provider,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "llm tier disabled", "tier", tier, "error", err)
		return nil
	}
	slog.InfoContext(ctx, "llm tier configured", "tier", tier, "provider", cfg.Provider, "model", cfg.Model)
	return llm.WithBreaker(client, llm.BreakerConfig{
		Name:        tier,
		Timeout:     timeout,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	})
}

const banner = `
  ___ ___  __      _____  ___ _  _____ ___
 / __/ __| \ \    / / _ \| _ \ |/ / __| _ \
| (__\__ \  \ \/\/ / (_) |   / ' <| _||   /
 \___|___/   \_/\_/ \___/|_|_\_|\_\___|_|_\
`
