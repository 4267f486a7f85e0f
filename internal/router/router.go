// Package router mounts all HTTP routes on a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/exam-seating-api/internal/handler"
	"github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	"github.com/noah-isme/exam-seating-api/internal/service"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/requestid"

	"go.uber.org/zap"
)

// Handlers aggregates all route handlers.
type Handlers struct {
	Auth        *handler.AuthHandler
	Students    *handler.StudentHandler
	Halls       *handler.HallHandler
	Seating     *handler.SeatingHandler
	Recognition *handler.RecognitionHandler
	Exports     *handler.ExportHandler
	Metrics     *handler.MetricsHandler
}

// New builds the gin engine with all middleware and routes mounted.
// Administrative routes write to the audit trail behind users.
func New(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, users *repository.UserRepository, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	// Export downloads are authorised by signed token, not JWT.
	api.GET("/exports/download/:token", h.Exports.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/me", h.Auth.Me)

	protected.GET("/students", h.Students.List)
	protected.GET("/students/:id", h.Students.Get)
	protected.POST("/students", h.Students.Register)
	protected.POST("/students/:id/photo", h.Students.AttachPhoto)

	protected.GET("/halls", h.Halls.List)
	protected.GET("/halls/:id", h.Halls.Get)

	protected.GET("/halls/:id/seating", h.Seating.Chart)
	protected.POST("/halls/:id/seating", h.Seating.AssignAll)
	protected.POST("/halls/:id/seating/:studentId", h.Seating.Place)

	protected.POST("/halls/:id/recognize", h.Recognition.Recognize)

	protected.POST("/halls/:id/exports", h.Exports.Create)
	protected.GET("/exports/jobs/:jobId", h.Exports.Status)

	admin := protected.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.POST("/halls", middleware.Audit(users, models.AuditActionHallCreate, "halls"), h.Halls.Create)
	admin.PUT("/halls/:id", middleware.Audit(users, models.AuditActionHallReconfigure, "halls"), h.Halls.Update)
	admin.DELETE("/halls/:id/seating", middleware.Audit(users, models.AuditActionPlanReset, "seating"), h.Seating.Reset)

	return r
}
