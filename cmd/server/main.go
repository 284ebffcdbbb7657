package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gsrtc/transit-ops-backend/internal/config"
	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/handlers"
	"github.com/gsrtc/transit-ops-backend/internal/middleware"
	"github.com/gsrtc/transit-ops-backend/internal/services"
	"github.com/gsrtc/transit-ops-backend/pkg/jwt"
	"github.com/gsrtc/transit-ops-backend/pkg/mailer"
)

var version = "1.0.0"

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Transit Operations Backend")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	userRepo := database.NewUserRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	otpRepo := database.NewOTPRepository(db)
	busRepo := database.NewBusRepository(db)
	standRepo := database.NewStandRepository(db)
	conductorRepo := database.NewConductorRepository(db)
	routeRepo := database.NewRouteRepository(db)

	// Services
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	otpService := services.NewOTPService(otpRepo, cfg.OTP)
	rateLimitService := services.NewRateLimitService(otpRepo, cfg.RateLimit)
	routeService := services.NewRouteService(routeRepo, busRepo, standRepo, cfg.Routes.RecomputeCodeOnUpdate)

	mailGateway := mailer.NewHTTPGateway(mailer.Config{
		APIURL:           cfg.Mail.APIURL,
		APIKey:           cfg.Mail.APIKey,
		Sender:           cfg.Mail.Sender,
		OTPExpiryMinutes: cfg.OTP.ExpiryMinutes,
	})
	if cfg.Mail.Mode != "production" {
		logger.Info("Mail gateway in development mode, OTP codes are echoed in responses")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(
		userRepo, sessionRepo, jwtService, otpService,
		rateLimitService, mailGateway, cfg, logger,
	)
	userHandler := handlers.NewUserHandler(userRepo, cfg.Security.BcryptCost)
	busHandler := handlers.NewBusHandler(busRepo)
	standHandler := handlers.NewStandHandler(standRepo)
	conductorHandler := handlers.NewConductorHandler(conductorRepo)
	routeHandler := handlers.NewRouteHandler(routeService, routeRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/send-otp", authHandler.SendOTP)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	authed := v1.Group("", middleware.AuthMiddleware(jwtService, logger))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/profile", authHandler.GetProfile)
		authed.PUT("/auth/profile", authHandler.UpdateProfile)
		authed.GET("/auth/sessions", authHandler.GetSessions)

		authed.GET("/buses", busHandler.GetAllBuses)
		authed.GET("/buses/:id", busHandler.GetBusByID)
		authed.POST("/buses", busHandler.CreateBus)
		authed.PUT("/buses/:id", busHandler.UpdateBus)
		authed.DELETE("/buses/:id", busHandler.DeleteBus)

		authed.GET("/stands", standHandler.GetAllStands)
		authed.GET("/stands/code/:code", standHandler.GetStandByCode)
		authed.GET("/stands/:id", standHandler.GetStandByID)
		authed.POST("/stands", standHandler.CreateStand)
		authed.PUT("/stands/:id", standHandler.UpdateStand)
		authed.DELETE("/stands/:id", standHandler.DeleteStand)

		authed.GET("/conductors", conductorHandler.GetAllConductors)
		authed.GET("/conductors/:id", conductorHandler.GetConductorByID)
		authed.POST("/conductors", conductorHandler.CreateConductor)
		authed.PUT("/conductors/:id", conductorHandler.UpdateConductor)
		authed.DELETE("/conductors/:id", conductorHandler.DeleteConductor)

		authed.GET("/routes", routeHandler.GetAllRoutes)
		authed.GET("/routes/:id", routeHandler.GetRouteByID)
		authed.POST("/routes", routeHandler.CreateRoute)
		authed.PUT("/routes/:id", routeHandler.UpdateRoute)
		authed.DELETE("/routes/:id", routeHandler.DeleteRoute)

		admin := authed.Group("/users", middleware.RequireAdmin())
		{
			admin.GET("", userHandler.GetAllUsers)
			admin.POST("", userHandler.CreateUser)
			admin.GET("/:id", userHandler.GetUserByID)
			admin.PUT("/:id", userHandler.UpdateUser)
			admin.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// requestLogger logs each request with latency and status
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		}

		entry := logger.WithFields(fields)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// healthCheckHandler reports process and database health
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
