package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillbridge/skillbridge-api/config"
	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/handlers"
	"github.com/skillbridge/skillbridge-api/internal/middleware"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/internal/repository"
	"github.com/skillbridge/skillbridge-api/internal/services"
	"github.com/skillbridge/skillbridge-api/pkg/db"
	"github.com/skillbridge/skillbridge-api/pkg/httpclient"
	"github.com/skillbridge/skillbridge-api/pkg/jwt"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"github.com/skillbridge/skillbridge-api/pkg/profiling"
	"github.com/skillbridge/skillbridge-api/pkg/storage"
	"github.com/skillbridge/skillbridge-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerEngagementRoutes registers the authenticated request/session routes
func registerEngagementRoutes(
	v1 *gin.RouterGroup,
	authMW gin.HandlerFunc,
	generalRateLimiter, writeRateLimiter *middleware.RateLimiter,
	requestHandler *handlers.RequestHandler,
	sessionHandler *handlers.SessionHandler,
) {
	requests := v1.Group("/requests", authMW)
	requests.GET("", generalRateLimiter.Middleware(), requestHandler.List)
	requests.POST("", writeRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024),
		middleware.RequireRole(models.RoleLearner), requestHandler.Create)
	requests.GET("/:id", generalRateLimiter.Middleware(), requestHandler.Get)
	requests.PUT("/:id", writeRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), requestHandler.Update)
	requests.POST("/:id/accept", writeRateLimiter.Middleware(), middleware.RequireRole(models.RoleMentor), requestHandler.Accept)
	requests.POST("/:id/decline", writeRateLimiter.Middleware(), middleware.RequireRole(models.RoleMentor), requestHandler.Decline)
	requests.POST("/:id/cancel", writeRateLimiter.Middleware(), requestHandler.Cancel)

	sessions := v1.Group("/sessions", authMW)
	sessions.GET("", generalRateLimiter.Middleware(), sessionHandler.List)
	sessions.POST("", writeRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.Create)
	sessions.GET("/:id", generalRateLimiter.Middleware(), sessionHandler.Get)
	sessions.PUT("/:id", writeRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.Update)
	sessions.POST("/:id/start", writeRateLimiter.Middleware(), sessionHandler.Start)
	sessions.POST("/:id/complete", writeRateLimiter.Middleware(), sessionHandler.Complete)
	sessions.POST("/:id/cancel", writeRateLimiter.Middleware(), sessionHandler.Cancel)
	sessions.POST("/:id/no-show", writeRateLimiter.Middleware(), sessionHandler.MarkNoShow)
	sessions.PUT("/:id/notes", writeRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.SetNotes)
	sessions.POST("/:id/feedback", writeRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.AddFeedback)
}

// registerProfileRoutes registers directory, profile, achievement and auth routes
func registerProfileRoutes(
	v1 *gin.RouterGroup,
	authMW gin.HandlerFunc,
	generalRateLimiter, profileRateLimiter *middleware.RateLimiter,
	userHandler *handlers.UserHandler,
	achievementHandler *handlers.AchievementHandler,
	authHandler *handlers.AuthHandler,
) {
	// Mentor directory is public
	v1.GET("/mentors", generalRateLimiter.Middleware(), userHandler.ListMentors)
	v1.GET("/mentors/:id", generalRateLimiter.Middleware(), userHandler.GetMentor)

	users := v1.Group("/users", authMW)
	users.GET("/me", generalRateLimiter.Middleware(), userHandler.GetMe)
	users.PUT("/me", profileRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), userHandler.UpdateMe)
	users.POST("/me/avatar", profileRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024*1024), userHandler.UploadAvatar)

	v1.GET("/achievements", generalRateLimiter.Middleware(), achievementHandler.Catalog)
	v1.GET("/achievements/my", authMW, generalRateLimiter.Middleware(), achievementHandler.List)
	v1.GET("/auth/session", authMW, generalRateLimiter.Middleware(), authHandler.GetSession)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting SkillBridge API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Distributed tracing (no-op when the collector endpoint is empty)
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.CollectorEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	metrics.Init()

	// Continuous profiling
	if cfg.Profiling.Enabled {
		stopProfiler, profErr := profiling.InitProfiler(cfg.Profiling, cfg.Observability.ServiceName, cfg.Server.AppEnv)
		if profErr != nil {
			logger.Fatal("Failed to initialize profiler", zap.Error(profErr))
		}
		defer stopProfiler()
	}

	// PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer db.Close(pool)

	// NOTE: Database migrations run separately via the migrate command

	// Avatar storage (S3-compatible); disabled when credentials are absent
	var storageClient storage.ClientInterface
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		storageClient, err = storage.NewClient(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			cfg.Storage.BucketName,
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize storage client", zap.Error(err))
		}
	}

	// Repositories
	requestRepo := repository.NewRequestRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	achievementRepo := repository.NewAchievementRepository(pool)

	// Mentor directory cache
	mentorCache := cache.NewMentorCache(userRepo, cfg.Cache.MentorTTLSeconds, cfg.Cache.DisableMentorsCache)
	if cfg.Cache.DisableMentorsCache {
		logger.Warn("Mentor cache is DISABLED - reading from database on every request")
	}

	// HTTP client for lifecycle event webhooks
	httpClient := httpclient.NewStandardClient()

	// Token verification
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}
	tokenManager := jwt.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	// Services
	authService := services.NewAuthService(tokenManager)
	requestService := services.NewRequestService(requestRepo, userRepo, cfg, httpClient)
	sessionService := services.NewSessionService(sessionRepo, requestRepo, cfg, httpClient)
	userService := services.NewUserService(userRepo, mentorCache, storageClient)
	achievementService := services.NewAchievementService(achievementRepo)

	// Background sweep of expired pending requests
	reaperCtx, reaperCancel := context.WithCancel(context.Background())
	defer reaperCancel()
	reaper := services.NewExpiryReaper(requestRepo, cfg.Engagement.ReaperIntervalMinutes)
	reaper.Start(reaperCtx)

	// Handlers
	requestHandler := handlers.NewRequestHandler(requestService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	userHandler := handlers.NewUserHandler(userService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	authHandler := handlers.NewAuthHandler()
	healthHandler := handlers.NewHealthHandler(pool.Ping)

	// Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters per endpoint class
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	writeRateLimiter := middleware.NewRateLimiter(10, 20)     // 10 req/sec, burst of 20
	profileRateLimiter := middleware.NewRateLimiter(5, 10)    // 5 req/sec, burst of 10

	authMW := middleware.AuthMiddleware(authService)

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	registerEngagementRoutes(v1, authMW, generalRateLimiter, writeRateLimiter, requestHandler, sessionHandler)
	registerProfileRoutes(v1, authMW, generalRateLimiter, profileRateLimiter, userHandler, achievementHandler, authHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	reaperCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
