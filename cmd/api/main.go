package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"microblog/internal/config"
	handlers "microblog/internal/http/handler"
	"microblog/internal/http/middleware"
	"microblog/internal/logging"
	"microblog/internal/otel"
	"microblog/internal/repository"
	"microblog/internal/repository/filesystem"
	"microblog/internal/repository/mirror"
	"microblog/internal/service"
	"microblog/internal/session"
	"microblog/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		fatal(logger, "tracing_init_failed", err)
	}

	if err := os.MkdirAll(cfg.Storage.ArticlesDir, 0o755); err != nil {
		fatal(logger, "articles_dir_failed", err)
	}

	var articleRepo repository.ArticleRepository = filesystem.NewArticleFS(cfg.Storage.ArticlesDir, logger)
	if cfg.MinIO.Enabled() {
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			fatal(logger, "object_storage_init_failed", err)
		}
		articleRepo = mirror.New(articleRepo, objStore, logger)
		logger.Info("article_mirror_enabled", map[string]any{"bucket": cfg.MinIO.Bucket})
	}

	clock := cfg.Clock()
	articleSvc := service.NewArticleService(articleRepo, clock)
	authSvc := service.NewAuthService(filesystem.NewCredentialFS(cfg.Storage.AdminFile))

	if cfg.Session.Secret == "" {
		logger.Warn("session_secret_missing", map[string]any{
			"detail": "SESSION_SECRET is empty, using a random key; sessions end on restart",
		})
	}
	sessions := session.NewAuthority(cfg.Session)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}

	app := fiber.New(handlers.Config(logger))

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(otelfiber.Middleware())
	app.Use(metrics.Handler())
	app.Use(sessions.Encrypt())
	app.Use(sessions.Resolve())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterRoutes(app, articleSvc, authSvc, sessions, clock)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server_shutdown_failed", err, nil)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_starting", map[string]any{
		"addr":         addr,
		"articles_dir": cfg.Storage.ArticlesDir,
		"admin_file":   cfg.Storage.AdminFile,
	})
	if err := app.Listen(addr); err != nil {
		fatal(logger, "server_failed", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("tracing_shutdown_failed", err, nil)
	}
	logger.Info("server_stopped", nil)
}

func fatal(l *logging.Logger, event string, err error) {
	l.Error(event, err, nil)
	os.Exit(1)
}
