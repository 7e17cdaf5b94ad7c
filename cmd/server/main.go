package main

import (
	"context"
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

	"github.com/wjlee930501/motion-ai-cs/common/id"
	"github.com/wjlee930501/motion-ai-cs/common/llm"
	"github.com/wjlee930501/motion-ai-cs/common/logger"
	"github.com/wjlee930501/motion-ai-cs/common/otel"
	"github.com/wjlee930501/motion-ai-cs/core/config"
	"github.com/wjlee930501/motion-ai-cs/core/db"
	"github.com/wjlee930501/motion-ai-cs/internal/classify"
	"github.com/wjlee930501/motion-ai-cs/internal/http/dto"
	"github.com/wjlee930501/motion-ai-cs/internal/http/middleware"
	httprouter "github.com/wjlee930501/motion-ai-cs/internal/http/router"
	"github.com/wjlee930501/motion-ai-cs/internal/queue"
	"github.com/wjlee930501/motion-ai-cs/internal/sender"
	"github.com/wjlee930501/motion-ai-cs/internal/service"
	"github.com/wjlee930501/motion-ai-cs/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "ingest api starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	if err := dto.RegisterValidators(); err != nil {
		slog.ErrorContext(ctx, "failed to register validators", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	var (
		redisClient *redis.Client
		producer    queue.Producer = queue.NopProducer{}
	)
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Nudges are an optimization; workers still poll.
			slog.WarnContext(ctx, "redis unreachable, worker nudges disabled", "error", err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			producer = queue.NewRedisProducer(redisClient, cfg.Redis.Stream, nil)
			slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.Stream)
		}
	}
	defer producer.Close()

	deps := service.Deps{
		Producer: producer,
		Senders: sender.New(sender.Rules{
			StaffPrefix: cfg.Sender.StaffPrefix,
			KnownStaff:  cfg.Sender.KnownStaff,
		}),
		Ingest: service.EventIngestConfig{
			MaxFutureSkew: cfg.Ingest.MaxFutureSkew,
			MaxPastAge:    cfg.Ingest.MaxPastAge,
		},
		ProfileWindow: cfg.Worker.ProfileWindow,
	}
	if summarizer := newSummarizer(ctx, cfg); summarizer != nil {
		deps.Summarizer = summarizer
	}

	services := service.NewServices(store.NewStores(database.Queries()), deps)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, database, redisClient)
	// No WriteTimeout: the dashboard live feed holds its response open.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// newSummarizer returns nil when the escalated model is not configured; the
// summarize endpoint then answers 503.
func newSummarizer(ctx context.Context, cfg config.Config) *classify.Summarizer {
	if !cfg.EscalatedLLM.Enabled() {
		slog.InfoContext(ctx, "ticket summaries disabled (no escalated model configured)")
		return nil
	}
	client, err := llm.New(llm.Config{
		Provider:  cfg.EscalatedLLM.Provider,
		APIKey:    cfg.EscalatedLLM.APIKey,
		BaseURL:   cfg.EscalatedLLM.BaseURL,
		Model:     cfg.EscalatedLLM.Model,
		MaxTokens: cfg.EscalatedLLM.MaxTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "ticket summaries disabled", "error", err)
		return nil
	}
	client = llm.WithBreaker(client, llm.BreakerConfig{
		Name:        "summarizer",
		Timeout:     30 * time.Second,
		MaxFailures: 3,
		OpenTimeout: time.Minute,
	})
	return classify.NewSummarizer(client, nil)
}

func setupRouter(cfg config.Config, services *service.Services, database *db.DB, redisClient *redis.Client) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		DeviceKey:   cfg.DeviceKey,
		AdminAPIKey: cfg.AdminAPIKey,
		Location:    cfg.Location(),
		DB:          database,
		Redis:       redisClient,
		Stream:      cfg.Redis.Stream,
	})

	return router
}

const banner = `
  ___ ___   ___ _  _  ___ ___ ___ _____
 / __/ __| |_ _| \| |/ __| __/ __|_   _|
| (__\__ \  | || .' | (_ | _|\__ \ | |
 \___|___/ |___|_|\_|\___|___|___/ |_|
`
