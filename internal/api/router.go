package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/config"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/database"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/tenant"
)

// Router wraps the Gin engine and holds dependencies
type Router struct {
	Engine      *gin.Engine
	cfg         *config.Config
	db          *database.DB
	redisClient *redis.Client
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// NewRouter creates a new router with dependencies
func NewRouter(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics, db *database.DB, redisClient *redis.Client) *Router {
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	router := &Router{
		Engine:      r,
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		metrics:     metrics,
	}

	router.setupMiddleware()
	router.setupRoutes()

	return router
}

// Run starts the HTTP server
func (r *Router) Run() error {
	addr := fmt.Sprintf(":%d", r.cfg.App.Port)
	r.logger.Info("Starting server", observability.Field{Key: "address", Value: addr}.ToZapField())
	return r.Engine.Run(addr)
}

// setupMiddleware configures middleware for the router
func (r *Router) setupMiddleware() {
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(RequestIDMiddleware())
	r.Engine.Use(RequestLogger(r.logger))
	r.Engine.Use(middleware.ApplySecurityHeaders())

	if r.cfg.CORS.AllowedOrigins != "" {
		corsConfig := cors.Config{
			AllowOrigins:     strings.Split(r.cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Split(r.cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Split(r.cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Split(r.cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: r.cfg.CORS.AllowCredentials,
			MaxAge:           r.cfg.CORS.MaxAge,
		}
		r.Engine.Use(cors.New(corsConfig))
	}
}

// setupRoutes configures the API routes
func (r *Router) setupRoutes() {
	r.Engine.GET("/health", r.HealthCheck)

	if r.metrics != nil {
		r.Engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	// Repositories are stateless; the connection is passed per call.
	companyRepo := data.NewCompanyRepository()
	userRepo := data.NewUserRepository()
	sessionRepo := data.NewSessionRepository()
	categoryRepo := data.NewCategoryRepository()
	tagRepo := data.NewTagRepository()
	pairRepo := data.NewQAPairRepository()
	importRepo := data.NewImportRepository()
	appearanceRepo := data.NewAppearanceRepository()

	sink := activity.NewRecorder(r.metrics)
	activitySvc := activity.NewService()

	authSvc := auth.NewService(r.db, r.db, r.cfg, userRepo, sessionRepo, sink)
	companySvc := services.NewCompanyService(r.db, r.db, companyRepo, userRepo, sink)
	userSvc := services.NewUserService(r.db, r.db, userRepo, sessionRepo, sink)
	profileSvc := services.NewProfileService(r.db, r.db, userRepo, sink)
	categorySvc := services.NewCategoryService(r.db, r.db, categoryRepo, sink)
	tagSvc := services.NewTagService(r.db, r.db, tagRepo, sink)
	pairSvc := services.NewQAPairService(r.db, r.db, pairRepo, categoryRepo, tagRepo, importRepo, sink, r.metrics)
	appearanceSvc := services.NewAppearanceService(r.db, r.db, appearanceRepo, sink)
	resolver := tenant.NewResolver(companyRepo)

	authHandlers := NewAuthHandlers(authSvc)
	companyHandlers := NewCompanyHandlers(companySvc)
	userHandlers := NewUserHandlers(userSvc)
	profileHandlers := NewProfileHandlers(profileSvc)
	categoryHandlers := NewCategoryHandlers(categorySvc)
	tagHandlers := NewTagHandlers(tagSvc)
	pairHandlers := NewQAPairHandlers(pairSvc)
	appearanceHandlers := NewAppearanceHandlers(appearanceSvc)
	activityHandlers := NewActivityHandlers(r.db, activitySvc)
	publicHandlers := NewPublicHandlers(pairSvc, categorySvc, appearanceSvc, r.metrics)

	authMW := middleware.NewAuthMiddleware(authSvc)

	v1 := r.Engine.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandlers.Login)
			authGroup.POST("/logout", authMW.Authenticate(), authHandlers.Logout)
			authGroup.GET("/me", authMW.Authenticate(), authHandlers.Me)
		}

		profile := v1.Group("/profile")
		profile.Use(authMW.Authenticate())
		{
			profile.GET("", profileHandlers.Get)
			profile.PUT("", profileHandlers.Update)
			profile.PUT("/password", profileHandlers.ChangePassword)
		}

		admin := v1.Group("/admin")
		admin.Use(authMW.Authenticate(), authMW.RequireAdmin())
		{
			companies := admin.Group("/companies")
			companies.Use(authMW.RequireSuperAdmin())
			{
				companies.GET("", companyHandlers.List)
				companies.POST("", companyHandlers.Create)
				companies.GET("/:id", companyHandlers.Get)
				companies.PUT("/:id", companyHandlers.Update)
				companies.PATCH("/:id/toggle", companyHandlers.Toggle)
				companies.DELETE("/:id", companyHandlers.Delete)
			}

			users := admin.Group("/users")
			{
				users.GET("", userHandlers.List)
				users.POST("", userHandlers.Create)
				users.GET("/:id", userHandlers.Get)
				users.PUT("/:id", userHandlers.Update)
				users.PATCH("/:id/toggle-admin", userHandlers.ToggleAdmin)
				users.PUT("/:id/password", userHandlers.ResetPassword)
				users.DELETE("/:id", userHandlers.Delete)
			}

			categories := admin.Group("/categories")
			categories.Use(middleware.TenantScope())
			{
				categories.GET("", categoryHandlers.List)
				categories.GET("/tree", categoryHandlers.Tree)
				categories.POST("", categoryHandlers.Create)
				categories.GET("/:id", categoryHandlers.Get)
				categories.PUT("/:id", categoryHandlers.Update)
				categories.PATCH("/:id/move", categoryHandlers.Move)
				categories.PATCH("/:id/toggle", categoryHandlers.Toggle)
				categories.DELETE("/:id", categoryHandlers.Delete)
			}

			tags := admin.Group("/tags")
			{
				tags.GET("", tagHandlers.List)
				tags.POST("", tagHandlers.Create)
				tags.GET("/:id", tagHandlers.Get)
				tags.PUT("/:id", tagHandlers.Update)
				tags.DELETE("/:id", tagHandlers.Delete)
				tags.GET("/:id/qa-pairs", middleware.TenantScope(), tagHandlers.QAPairs)
			}

			pairs := admin.Group("/qa-pairs")
			pairs.Use(middleware.TenantScope())
			{
				pairs.GET("", pairHandlers.List)
				pairs.POST("", pairHandlers.Create)
				pairs.POST("/search", pairHandlers.Search)
				pairs.GET("/export", pairHandlers.Export)
				pairs.POST("/bulk-import", pairHandlers.BulkImport)
				pairs.POST("/bulk-delete", pairHandlers.BulkDelete)
				pairs.POST("/bulk-toggle", pairHandlers.BulkToggle)
				pairs.GET("/:id", pairHandlers.Get)
				pairs.PUT("/:id", pairHandlers.Update)
				pairs.PATCH("/:id/toggle", pairHandlers.Toggle)
				pairs.DELETE("/:id", pairHandlers.Delete)
				pairs.GET("/:id/history", pairHandlers.History)
				pairs.POST("/:id/restore", pairHandlers.Restore)
			}

			imports := admin.Group("/imports")
			{
				imports.GET("", pairHandlers.ListImports)
				imports.GET("/:id", pairHandlers.GetImport)
			}

			activities := admin.Group("/activities")
			{
				activities.GET("", activityHandlers.List)
				activities.GET("/statistics", activityHandlers.Statistics)
				activities.GET("/:id", activityHandlers.Get)
			}

			appearance := admin.Group("/appearance")
			{
				appearance.GET("", appearanceHandlers.Get)
				appearance.PUT("", appearanceHandlers.Update)
			}
		}

		chatbot := v1.Group("/chatbot")
		if r.cfg.RateLimit.Enabled {
			rateLimiter := middleware.NewRateLimiterMiddleware(&middleware.RateLimiterConfig{
				RPS:         r.cfg.RateLimit.RequestsPerSecond,
				Burst:       r.cfg.RateLimit.Burst,
				RedisClient: r.redisClient,
			})
			chatbot.Use(rateLimiter.Limit())
		}
		chatbot.Use(middleware.IdentifyCompany(resolver, r.db))
		{
			chatbot.GET("/qa-pairs", publicHandlers.QAPairs)
			chatbot.POST("/search", publicHandlers.Search)
			chatbot.GET("/categories", publicHandlers.Categories)
			chatbot.GET("/appearance", publicHandlers.Appearance)
		}
	}
}

// HealthCheck reports service and database health
func (r *Router) HealthCheck(c *gin.Context) {
	if err := r.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
