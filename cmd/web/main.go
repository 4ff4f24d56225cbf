package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/workdora/waitlist/internal/config"
	"github.com/workdora/waitlist/internal/infra/cache"
	"github.com/workdora/waitlist/internal/infra/integration/waitlistapi"
	"github.com/workdora/waitlist/internal/logging"
	"github.com/workdora/waitlist/internal/retry"
	"github.com/workdora/waitlist/internal/usecase"
	"github.com/workdora/waitlist/internal/web/handlers"
	"github.com/workdora/waitlist/internal/web/static"
)

func main() {
	cfg, dotenvFound, err := config.LoadWeb()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	if !dotenvFound {
		logger.Info("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy := retry.Policy{
		MaxAttempts:    cfg.Submit.MaxAttempts,
		AttemptTimeout: cfg.Submit.AttemptTimeout,
		Delay:          cfg.Submit.Delay,
	}
	api := waitlistapi.NewClient(cfg.APIBaseURL, policy, logger.Named("waitlistapi"))

	submitUC := usecase.NewSubmitWaitlistUseCase(api, newGuard(ctx, cfg.RedisURL, logger), logger.Named("submit"))
	site := handlers.NewSite(
		submitUC,
		api,
		rate.NewLimiter(rate.Every(cfg.WarmupInterval), 1),
		cfg.SiteURL,
		cfg.SecureCookies,
		logger,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))))

	r.Get("/", site.Landing)
	r.Post("/waitlist", site.Join)
	r.Get("/about", site.About)
	r.Get("/privacy", site.Privacy)
	r.Get("/terms", site.Terms)
	r.Get("/health", site.Health)
	r.NotFound(site.NotFound)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// a submission may run four 30s attempts
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		logger.Info("site listening",
			zap.String("addr", srv.Addr),
			zap.String("api_base_url", api.BaseURL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

// newGuard prefers Redis so that every site instance shares the in-flight
// set. Without REDIS_URL, or when Redis is down at boot, the guard is local.
func newGuard(ctx context.Context, redisURL string, logger *zap.Logger) usecase.SubmissionGuard {
	if redisURL == "" {
		return cache.NewMemoryGuard()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(pingCtx, redisURL)
	if err != nil {
		logger.Warn("redis unavailable, using in-process submission guard", zap.Error(err))
		return cache.NewMemoryGuard()
	}
	return cache.NewRedisGuard(client, logger.Named("guard"))
}
