package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/cache"
	"github.com/cliptide/backend/internal/community"
	"github.com/cliptide/backend/internal/config"
	"github.com/cliptide/backend/internal/database"
	"github.com/cliptide/backend/internal/email"
	"github.com/cliptide/backend/internal/handlers"
	"github.com/cliptide/backend/internal/lists"
	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/metrics"
	"github.com/cliptide/backend/internal/middleware"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/storage"
	"github.com/cliptide/backend/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Fall back to the system environment
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("cliptide server starting", zap.String("environment", cfg.Environment))

	db, err := database.Connect(database.Config{
		URL:          cfg.DatabaseURL,
		MaxIdleConns: cfg.DBMaxIdleConns,
		MaxOpenConns: cfg.DBMaxOpenConns,
		Verbose:      cfg.DBVerboseLogging,
	})
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("redis unavailable, OTP and rate limiting disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var emailService *email.EmailService
	if cfg.SESFromEmail != "" {
		emailService, err = email.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
		if err != nil {
			logger.Log.Warn("SES unavailable, verification emails disabled", zap.Error(err))
		}
	}

	var uploader *storage.S3Uploader
	if cfg.S3Bucket != "" {
		uploader, err = storage.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket, cfg.S3BaseURL)
		if err != nil {
			logger.Log.Fatal("failed to initialize S3 uploader", zap.Error(err))
		}
		if err := uploader.CheckBucketAccess(context.Background()); err != nil {
			logger.Log.Warn("S3 bucket access failed, uploads will fail", zap.Error(err))
		}
	}

	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "cliptide-backend",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: cfg.TracingSamplingRate,
	})
	if err != nil {
		logger.Log.Warn("failed to initialize tracing", zap.Error(err))
	}
	defer telemetry.Shutdown(tracerProvider)

	metrics.Initialize()

	var emailSender auth.OTPSender
	if emailService != nil {
		emailSender = emailService
	}
	authService := auth.NewService(db, []byte(cfg.JWTSecret), redisClient, emailSender,
		cfg.GoogleClientID, cfg.GoogleClientSecret)

	communityService := community.NewService(db)
	listService := lists.NewService(db)

	h := handlers.NewHandlers(db, communityService, listService)
	if uploader != nil {
		h.SetUploader(uploader)
	}
	authHandlers := handlers.NewAuthHandlers(authService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(otelgin.Middleware("cliptide-backend"))
	r.Use(middleware.RedisRateLimitMiddleware(redisClient,
		cfg.RateLimitMaxRequests, time.Duration(cfg.RateLimitWindowSecs)*time.Second))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(db); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "cliptide-backend",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.Register)
			authGroup.POST("/login", authHandlers.Login)
			authGroup.POST("/refresh", authHandlers.Refresh)

			authGroup.GET("/google", authHandlers.GoogleLogin)
			authGroup.GET("/google/callback", authHandlers.GoogleCallback)

			protected := authGroup.Group("")
			protected.Use(authHandlers.AuthMiddleware())
			protected.POST("/logout", authHandlers.Logout)
			protected.GET("/me", authHandlers.Me)
			protected.POST("/otp/send", authHandlers.SendOTP)
			protected.POST("/otp/verify", authHandlers.VerifyOTP)
			protected.GET("/2fa/status", h.Get2FAStatus)
			protected.POST("/2fa/enable", h.Enable2FA)
			protected.POST("/2fa/verify", h.Verify2FA)
			protected.POST("/2fa/disable", h.Disable2FA)
		}

		// Public reads
		api.GET("/communities", h.ListCommunities)
		api.GET("/communities/:communityID", h.GetCommunity)
		api.GET("/videos", h.ListVideos)
		api.GET("/videos/:videoID", h.GetVideo)
		api.GET("/users/:userID", h.GetUserProfile)
		api.GET("/playlists/:playlistID", h.GetPlaylist)

		authed := api.Group("")
		authed.Use(authHandlers.AuthMiddleware())
		{
			authed.POST("/communities", h.CreateCommunity)
			authed.POST("/communities/:communityID/join", h.JoinCommunity)
			authed.POST("/communities/:communityID/leave", h.LeaveCommunity)

			// Membership-gated community reads
			membersOnly := authed.Group("/communities/:communityID")
			membersOnly.Use(middleware.RequireMembership(db))
			membersOnly.GET("/members", h.ListMembers)

			// Owner-only membership management
			ownerOnly := authed.Group("/communities/:communityID")
			ownerOnly.Use(middleware.RequireMembership(db, models.RoleOwner))
			ownerOnly.GET("/requests", h.ListPendingRequests)
			ownerOnly.POST("/requests/:membershipID/approve", h.ApproveMembership)
			ownerOnly.POST("/requests/:membershipID/reject", h.RejectMembership)
			ownerOnly.POST("/members/:membershipID/remove", h.RemoveMember)
			ownerOnly.POST("/avatar", h.UploadCommunityAvatar)

			authed.POST("/videos", h.PublishVideo)
			authed.DELETE("/videos/:videoID", h.DeleteVideo)
			authed.POST("/videos/:videoID/watch", h.RecordWatch)
			authed.POST("/videos/:videoID/like", h.ToggleLike)
			authed.GET("/users/me/likes", h.ListLikedVideos)
			authed.POST("/videos/:videoID/watch-later", h.AddWatchLater)
			authed.DELETE("/videos/:videoID/watch-later", h.RemoveWatchLater)

			authed.GET("/users/me/history", h.GetWatchHistory)
			authed.DELETE("/users/me/history", h.ClearWatchHistory)
			authed.GET("/users/me/watch-later", h.GetWatchLater)
			authed.GET("/users/me/subscriptions", h.ListSubscriptions)
			authed.PUT("/users/me", h.UpdateProfile)
			authed.POST("/users/me/avatar", h.UploadAvatar)
			authed.POST("/users/me/cover", h.UploadCoverImage)
			authed.POST("/users/:userID/subscribe", h.ToggleSubscription)

			authed.POST("/playlists", h.CreatePlaylist)
			authed.GET("/playlists", h.ListPlaylists)
			authed.PUT("/playlists/:playlistID", h.UpdatePlaylist)
			authed.DELETE("/playlists/:playlistID", h.DeletePlaylist)
			authed.POST("/playlists/:playlistID/videos/:videoID", h.AddVideoToPlaylist)
			authed.DELETE("/playlists/:playlistID/videos/:videoID", h.RemoveVideoFromPlaylist)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("cliptide backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("server exited")
}
