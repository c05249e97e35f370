package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/language-lab-api/api/swagger"
	"github.com/noah-isme/language-lab-api/internal/handler"
	internalmiddleware "github.com/noah-isme/language-lab-api/internal/middleware"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/repository"
	"github.com/noah-isme/language-lab-api/internal/service"
	"github.com/noah-isme/language-lab-api/pkg/cache"
	"github.com/noah-isme/language-lab-api/pkg/config"
	"github.com/noah-isme/language-lab-api/pkg/database"
	"github.com/noah-isme/language-lab-api/pkg/jobs"
	"github.com/noah-isme/language-lab-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/language-lab-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/language-lab-api/pkg/middleware/requestid"
	"github.com/noah-isme/language-lab-api/pkg/payment"
)

// @title Language Lab API
// @version 1.0.0
// @description Course marketplace backend: catalog, cart, enrollment and payments
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL()); err != nil {
			return err
		}
		logr.Info("migrations applied")
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	auditSvc := service.NewAuditService(repository.NewAuditRepository(db), logr)
	auditQueue := jobs.NewQueue[models.AuditLog]("audit", auditSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		MaxRetries: cfg.Audit.Retries,
		RetryDelay: time.Second,
		Logger:     logr,
	})
	auditSvc.Attach(auditQueue)
	auditQueue.Start(ctx)
	defer auditQueue.Stop()

	cacheRepo := repository.NewCacheRepository(redisClient)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)

	authSvc := service.NewAuthService(denylistFor(redisClient), validate, logr, auditSvc, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "language-lab-api",
	})
	userSvc := service.NewUserService(userRepo, validate, auditSvc, logr)
	classSvc := service.NewClassService(classRepo, cacheSvc, cfg.Catalog.CacheTTL, validate, auditSvc, logr)
	selectionSvc := service.NewSelectionService(repository.NewSelectionRepository(db), classRepo, validate, logr)
	paymentSvc := service.NewPaymentService(service.PaymentServiceParams{
		Enrollments: repository.NewEnrollmentRepository(db),
		Payments:    repository.NewPaymentRepository(db),
		Processor:   processorFor(cfg.Payment),
		Catalog:     classSvc,
		Metrics:     metrics,
		Audit:       auditSvc,
		Validator:   validate,
		Logger:      logr,
	})

	if cfg.Payment.SecretKey == "" {
		logr.Warn("payment secret key not set; payment intents are disabled")
	}

	limiter := internalmiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute, logr)
	defer limiter.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(internalmiddleware.AuditDenied(auditSvc))

	handler.Register(r, handler.Gates{Tokens: authSvc, Roles: userSvc, Limiter: limiter}, handler.Routes(handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Users:      handler.NewUserHandler(userSvc),
		Classes:    handler.NewClassHandler(classSvc, userSvc),
		Selections: handler.NewSelectionHandler(selectionSvc, userSvc),
		Payments:   handler.NewPaymentHandler(paymentSvc, userSvc),
		Metrics:    handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient, cacheRepo)),
	}))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}

type tokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// denylistFor returns an untyped nil when Redis is disabled so logout reports revocation as
// unavailable.
func denylistFor(client *redis.Client) tokenDenylist {
	if client == nil {
		return nil
	}
	return repository.NewTokenDenylistRepository(client)
}

func processorFor(cfg config.PaymentConfig) payment.Processor {
	processor := payment.NewStripeProcessor(cfg.SecretKey, cfg.Currency)
	if processor == nil {
		return nil
	}
	return processor
}

func readinessChecks(db *sqlx.DB, client *redis.Client, cacheRepo *repository.CacheRepository) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{"postgres": db}
	if client != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}
	return checks
}
