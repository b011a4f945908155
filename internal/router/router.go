package router

import (
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/config"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/handler"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/middleware"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/repository"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/service"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	participantRepo := repository.NewParticipantRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(staffRepo, cfg)
	checkinSvc := service.NewCheckinService(participantRepo, service.NewLogObserver(log.Logger))
	participantSvc := service.NewParticipantService(participantRepo)
	ticketSvc := service.NewTicketService(participantRepo, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	checkinH := handler.NewCheckinHandler(checkinSvc)
	participantsH := handler.NewParticipantsHandler(participantSvc, ticketSvc)
	ticketsH := handler.NewTicketsHandler(ticketSvc, worker.NewDLQ(rdb))
	emailLogsH := handler.NewEmailLogsHandler(emailLogRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Check-in — scanned from the registration desk, no auth required
	r.POST("/api/checkin", middleware.CheckinRateLimiter(), checkinH.CheckIn)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: operator, admin — declared per-endpoint
		v1.GET("/participants", middleware.RequireRole("operator", "admin"), participantsH.List)
		v1.GET("/participants/export", middleware.RequireRole("operator", "admin"), participantsH.ExportCSV)
		v1.GET("/participants/:uniqueID", middleware.RequireRole("operator", "admin"), participantsH.Get)
		v1.PATCH("/participants/:uniqueID/flags", middleware.RequireRole("operator", "admin"), participantsH.UpdateFlags)
		v1.GET("/participants/:uniqueID/qrcode", middleware.RequireRole("operator", "admin"), participantsH.QRCode)

		// Write operations — admin only
		parts := v1.Group("/participants", middleware.RequireRole("admin"))
		{
			parts.POST("", participantsH.Register)
			parts.POST("/import", participantsH.ImportCSV)
			parts.DELETE("/:uniqueID", participantsH.Delete)
			parts.DELETE("", participantsH.DeleteAll)
		}

		v1.POST("/tickets/send", middleware.RequireRole("admin"), ticketsH.Send)
		v1.GET("/tickets/dlq", middleware.RequireRole("admin"), ticketsH.DLQStatus)
		v1.POST("/tickets/dlq/replay", middleware.RequireRole("admin"), ticketsH.DLQReplay)

		logs := v1.Group("/email-logs", middleware.RequireRole("operator", "admin"))
		{
			logs.GET("", emailLogsH.List)
		}
		logsAdmin := v1.Group("/email-logs", middleware.RequireRole("admin"))
		{
			logsAdmin.DELETE("/:id", emailLogsH.Delete)
			logsAdmin.DELETE("", emailLogsH.DeleteAll)
		}

		v1.POST("/staff", middleware.RequireRole("admin"), authH.CreateStaff)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
