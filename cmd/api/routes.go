package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/bloomcove/booking-api/internal/handler"
	"github.com/bloomcove/booking-api/internal/middleware"
	"github.com/bloomcove/booking-api/internal/models"
	"github.com/bloomcove/booking-api/internal/repository"
	"github.com/bloomcove/booking-api/internal/service"
	"github.com/bloomcove/booking-api/pkg/config"
	"github.com/bloomcove/booking-api/pkg/logger"
	corsmiddleware "github.com/bloomcove/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bloomcove/booking-api/pkg/middleware/requestid"
)

type apiDeps struct {
	cfg *config.Config

	authService    *service.AuthService
	metricsService *service.MetricsService
	userRepo       *repository.UserRepository

	auth         *handler.AuthHandler
	users        *handler.UserHandler
	staff        *handler.StaffHandler
	offerings    *handler.OfferingHandler
	slots        *handler.SlotHandler
	bookings     *handler.BookingHandler
	availability *handler.AvailabilityHandler
	reports      *handler.ReportHandler
	metrics      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	return r
}

func registerRoutes(r *gin.Engine, d *apiDeps) {
	r.Use(middleware.Metrics(d.metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", d.metrics.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", d.auth.Login)
		auth.POST("/refresh", d.auth.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(d.authService))
		authed.POST("/logout", d.auth.Logout)
		authed.POST("/change-password", d.auth.ChangePassword)
		authed.GET("/me", d.auth.Me)
	}

	availability := api.Group("/availability")
	{
		availability.GET("/calendar", d.availability.Calendar)
		availability.GET("/day", d.availability.Day)
	}

	// Public browsing and booking creation. Conflicts are enforced by the
	// booking service, not by authentication.
	api.GET("/offerings", d.offerings.List)
	api.GET("/offerings/:id", d.offerings.Get)
	api.GET("/staff", d.staff.List)
	api.GET("/staff/:id", d.staff.Get)
	api.GET("/slots/:id/next-occurrence", d.availability.NextOccurrence)
	api.POST("/bookings", d.bookings.Create)

	staffOnly := api.Group("")
	staffOnly.Use(middleware.JWT(d.authService), middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
	{
		staffOnly.GET("/bookings", d.bookings.List)
		staffOnly.GET("/bookings/:id", d.bookings.Get)
		staffOnly.POST("/bookings/:id/confirm", d.bookings.Confirm)
		staffOnly.POST("/bookings/:id/cancel", d.bookings.Cancel)
		staffOnly.POST("/bookings/:id/reschedule", d.bookings.Reschedule)

		staffOnly.GET("/slots", d.slots.List)
		staffOnly.GET("/slots/:id", d.slots.Get)
	}

	adminOnly := api.Group("")
	adminOnly.Use(middleware.JWT(d.authService), middleware.RequireRoles(models.RoleAdmin))
	{
		adminOnly.POST("/slots", d.slots.Create)
		adminOnly.PUT("/slots/:id", d.slots.Update)
		adminOnly.DELETE("/slots/:id", d.slots.Delete)

		adminOnly.POST("/staff", d.staff.Create)
		adminOnly.PUT("/staff/:id", d.staff.Update)
		adminOnly.DELETE("/staff/:id", d.staff.Delete)

		adminOnly.POST("/offerings", d.offerings.Create)
		adminOnly.PUT("/offerings/:id", d.offerings.Update)
		adminOnly.DELETE("/offerings/:id", d.offerings.Delete)

		users := adminOnly.Group("/users")
		users.Use(middleware.Audit(d.userRepo, "manage", "users"))
		users.GET("", d.users.List)
		users.GET("/:id", d.users.Get)
		users.POST("", d.users.Create)
		users.PUT("/:id", d.users.Update)
		users.DELETE("/:id", d.users.Delete)
	}

	if d.reports != nil {
		reports := api.Group("/reports")
		reports.Use(middleware.JWT(d.authService), middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
		reports.POST("/generate", d.reports.GenerateReport)
		reports.GET("/status/:id", d.reports.ReportStatus)

		// Downloads authenticate via the signed token in the path.
		api.GET("/export/:token", d.reports.DownloadReport)
	}
}
