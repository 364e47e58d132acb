package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/crestapp/crest/backend/internal/auth"
	"github.com/crestapp/crest/backend/internal/cache"
	"github.com/crestapp/crest/backend/internal/config"
	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/engagement"
	"github.com/crestapp/crest/backend/internal/feed"
	"github.com/crestapp/crest/backend/internal/handlers"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/middleware"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/realtime"
	"github.com/crestapp/crest/backend/internal/telemetry"
	"github.com/crestapp/crest/backend/internal/trending"
)

const (
	trendingWindow = 72 * time.Hour

	// Read notifications older than this are pruned.
	notificationRetention     = 30 * 24 * time.Hour
	notificationPruneInterval = time.Hour
)

func main() {
	// .env is optional; production sets environment variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== Crest server starting ===")

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "crest-backend",
		Environment:  os.Getenv("ENVIRONMENT"),
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.OTLPEndpoint != "",
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	if err := database.Initialize(cfg.DatabaseURL); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is an optimization layer; the server runs without it.
	var feedCache feed.Cache
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("Redis unavailable, feed caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		feedCache = feed.NewRedisCache(redisClient)
	}

	if len(cfg.JWTSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}

	authService := auth.NewService(database.DB, cfg.JWTSecret)
	engagementService := engagement.NewService(database.DB)
	feedService := feed.NewService(database.DB, feedCache, cfg.FeedCacheTTL)
	trendingService := trending.NewService(database.DB, trendingWindow)

	wsHub := realtime.NewHub()
	wsHandler := realtime.NewHandler(wsHub, authService)
	go wsHub.Run()

	notifier := notify.NewNotifier(database.DB, realtime.NewPusher(wsHub))

	reconciler := engagement.NewReconciler(database.DB, cfg.ReconcileInterval)
	reconciler.Start()
	defer reconciler.Stop()

	pruner := notify.NewPruner(database.DB, notificationPruneInterval, notificationRetention)
	pruner.Start()
	defer pruner.Stop()

	h := handlers.NewHandlers(authService, engagementService, feedService, trendingService, notifier)
	h.SetWebSocketHandler(wsHandler)

	r := setupRouter(cfg, h, authService, wsHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("🌊 Crest backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := wsHandler.Shutdown(ctx); err != nil {
		logger.Log.Warn("WebSocket shutdown incomplete", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}

func setupRouter(cfg *config.Config, h *handlers.Handlers, authService *auth.Service, wsHandler *realtime.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(otelgin.Middleware("crest-backend"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := database.Health(); err != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "crest-backend",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(authService)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", requireAuth, h.Me)
		}

		feedGroup := api.Group("/feed")
		{
			feedGroup.Use(requireAuth)
			feedGroup.GET("", h.GetFeed)
			feedGroup.GET("/following", h.GetFollowingFeed)
		}

		api.GET("/trending", requireAuth, h.GetTrending)

		posts := api.Group("/posts")
		{
			posts.Use(requireAuth)
			posts.POST("", h.CreatePost)
			posts.GET("/:id", h.GetPost)
			posts.DELETE("/:id", h.DeletePost)
			posts.POST("/:id/view", h.RecordView)
			posts.POST("/:id/comments", h.CreateComment)
			posts.GET("/:id/comments", h.GetComments)
			posts.POST("/:id/share", h.SharePost)
			posts.DELETE("/:id/share", h.UnsharePost)
		}

		comments := api.Group("/comments")
		{
			comments.Use(requireAuth)
			comments.DELETE("/:id", h.DeleteComment)
		}

		api.POST("/likes/toggle", requireAuth, h.ToggleLike)

		users := api.Group("/users")
		{
			users.Use(requireAuth)
			users.PATCH("/me", h.UpdateProfile)
			users.GET("/:id", h.GetUser)
			users.GET("/:id/posts", h.GetUserPosts)
			users.POST("/:id/follow", h.FollowUser)
			users.DELETE("/:id/follow", h.UnfollowUser)
		}

		follows := api.Group("/follows")
		{
			follows.Use(requireAuth)
			follows.GET("/requests", h.GetFollowRequests)
			follows.POST("/requests/:id/approve", h.ApproveFollowRequest)
			follows.POST("/requests/:id/reject", h.RejectFollowRequest)
		}

		notifications := api.Group("/notifications")
		{
			notifications.Use(requireAuth)
			notifications.GET("", h.GetNotifications)
			notifications.GET("/counts", h.GetNotificationCounts)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
		}

		ws := api.Group("/ws")
		{
			ws.GET("", wsHandler.HandleWebSocket)
			ws.GET("/metrics", requireAuth, wsHandler.HandleMetrics)
		}
	}

	return r
}
