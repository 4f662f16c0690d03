// Package server provides HTTP server setup and configuration.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/auth"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/config"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/email"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/handlers"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/middleware"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/repository"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/trip"
)

// Dependencies holds all dependencies needed to create a server
type Dependencies struct {
	Config       *config.Config
	DB           handlers.HealthChecker // Optional: health skips the store check when nil
	UserRepo     repository.UserRepository
	ProfileRepo  repository.ProfileRepository
	RunRepo      repository.RunRepository
	EmailService email.Service     // Optional: nil disables the run email endpoint
	Engine       *optimizer.Engine // Optional: defaults to optimizer.New()
}

// New creates a new Gin router with all routes configured
func New(deps *Dependencies) *gin.Engine {
	// Release mode keeps ANSI colors out of container logs
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Encoding", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", handlers.RunIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RequestID())
	router.Use(middleware.NewRateLimitMiddleware(deps.Config.Server.RateLimitPerMinute))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	jwtService := auth.NewJWTService(deps.Config.Auth.JWTSecret, deps.Config.Auth.JWTAccessTokenTTL)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	authRateLimiter := middleware.NewRateLimitMiddleware(deps.Config.Server.AuthRateLimitPerMinute)

	engine := deps.Engine
	if engine == nil {
		engine = optimizer.New()
	}

	optimizeHandler := handlers.NewOptimizeHandler(engine, trip.NewPlanner(engine), deps.RunRepo)
	exportHandler := handlers.NewExportHandler()
	authHandler := handlers.NewAuthHandler(deps.UserRepo, jwtService)
	userHandler := handlers.NewUserHandler(deps.UserRepo)
	profileHandler := handlers.NewProfileHandler(deps.ProfileRepo, optimizeHandler)
	runHandler := handlers.NewRunHandler(deps.RunRepo, deps.EmailService, deps.Config.Email.AppURL)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthHandler(deps.DB))

		v1.GET("/functions", optimizeHandler.Functions)
		v1.GET("/functions/defaults", optimizeHandler.Defaults)

		// Anonymous callers get results; signed-in callers also get a stored run
		v1.POST("/optimize", authMiddleware.Optional(), optimizeHandler.Optimize)
		v1.POST("/optimize/trip", authMiddleware.Optional(), optimizeHandler.OptimizeTrip)

		v1.POST("/export", exportHandler.Export)
		v1.POST("/import", exportHandler.Import)

		authGroup := v1.Group("/auth")
		authGroup.Use(authRateLimiter)
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		users := v1.Group("/users")
		users.Use(authMiddleware.Required())
		{
			users.GET("/me", userHandler.Me)
		}

		profiles := v1.Group("/profiles")
		profiles.Use(authMiddleware.Required())
		{
			profiles.GET("", profileHandler.List)
			profiles.POST("", profileHandler.Create)
			profiles.GET("/:id", profileHandler.Get)
			profiles.PATCH("/:id", profileHandler.Update)
			profiles.DELETE("/:id", profileHandler.Delete)
			profiles.POST("/:id/optimize", profileHandler.Optimize)
		}

		runs := v1.Group("/runs")
		runs.Use(authMiddleware.Required())
		{
			runs.GET("", runHandler.List)
			runs.GET("/:id", runHandler.Get)
			runs.GET("/:id/export", runHandler.Export)
			runs.POST("/:id/email", runHandler.Email)
		}
	}

	return router
}
