package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sharmila-j/church-checkin-gateway/config"
	"github.com/sharmila-j/church-checkin-gateway/database"
	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/auditlog"
	"github.com/sharmila-j/church-checkin-gateway/internal/auth"
	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/consolidation"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/internal/events"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
	"github.com/sharmila-j/church-checkin-gateway/internal/notify"
	"github.com/sharmila-j/church-checkin-gateway/internal/people"
	"github.com/sharmila-j/church-checkin-gateway/internal/reports"
	"github.com/sharmila-j/church-checkin-gateway/middleware"

	_ "github.com/sharmila-j/church-checkin-gateway/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps carries the shared components built in main.
type Deps struct {
	Client *api.Client
	DirSvc *directory.Service
	Engine *checkin.Engine
}

// Setup wires every route group onto the router.
func Setup(r *gin.Engine, cfg *config.Config, deps Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiGroup := r.Group("/api/v1")
	apiGroup.Use(middleware.RateLimiter())
	apiGroup.Use(middleware.AuditMiddleware())
	apiGroup.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4173", "http://127.0.0.1:4173", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// ========== Audit Log Module ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== History Module ==========
	historyRepo := history.NewRepository(database.DB)
	historySvc := history.NewService(historyRepo)
	historyHandler := history.NewHandler(historySvc)

	// ========== Auth ==========
	authSvc := auth.NewService(deps.Client, cfg)
	authHandler := auth.NewHandler(authSvc, auditSvc)

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)

		// Everything past login requires the gateway token
		authGroup.POST("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)
		authGroup.POST("/unlock", middleware.AuthMiddleware(cfg), authHandler.UnlockStation)
		authGroup.GET("/profile", middleware.AuthMiddleware(cfg), authHandler.Profile)
	}

	protected := apiGroup.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg))

	// ========== Check-in Station ==========
	checkinHandler := checkin.NewHandler(deps.Engine, historySvc)

	checkinRoutes := protected.Group("/checkin")
	{
		checkinRoutes.GET("/events", checkinHandler.ListEvents)
		checkinRoutes.GET("/events/today", checkinHandler.TodaysEvents)
		checkinRoutes.POST("/events/:id/select", checkinHandler.SelectEvent)
		checkinRoutes.DELETE("/selection", checkinHandler.ClearSelection)

		checkinRoutes.GET("/grid", checkinHandler.MainGrid)
		checkinRoutes.GET("/present", checkinHandler.PresentList)
		checkinRoutes.GET("/new-people", checkinHandler.NewPeopleList)
		checkinRoutes.GET("/consolidated", checkinHandler.ConsolidatedList)

		checkinRoutes.POST("/toggle/:person_id", checkinHandler.Toggle)

		checkinRoutes.GET("/views/:projection", checkinHandler.GetViewState)
		checkinRoutes.PUT("/views/:projection", checkinHandler.UpdateViewState)
	}

	// ========== People (admin only for writes) ==========
	peopleSvc := people.NewService(deps.Client, deps.DirSvc, deps.Engine, historySvc)
	peopleHandler := people.NewHandler(peopleSvc)

	peopleRoutes := protected.Group("/people")
	{
		peopleRoutes.GET("/", peopleHandler.ListPeople)
		peopleRoutes.GET("/:id", peopleHandler.GetPerson)

		writeRoutes := peopleRoutes.Group("")
		writeRoutes.Use(middleware.RequireAdmin())
		{
			writeRoutes.POST("/", peopleHandler.CreatePerson)
			writeRoutes.PUT("/:id", peopleHandler.UpdatePerson)
			writeRoutes.DELETE("/:id", peopleHandler.DeletePerson)
		}
	}

	// ========== Consolidations ==========
	consolidationSvc := consolidation.NewService(deps.Client, deps.Engine, deps.DirSvc, historySvc)
	consolidationHandler := consolidation.NewHandler(consolidationSvc)

	consolidationRoutes := protected.Group("/consolidations")
	{
		consolidationRoutes.GET("/", consolidationHandler.ListConsolidations)
		consolidationRoutes.POST("/", consolidationHandler.CreateConsolidation)
		consolidationRoutes.DELETE("/:person_id", consolidationHandler.RemoveConsolidation)
	}

	// ========== Event Lifecycle (admin only) ==========
	eventsSvc := events.NewService(deps.Client, deps.Engine, historySvc, cfg.CloseReportRecipients)
	eventsHandler := events.NewHandler(eventsSvc)

	eventRoutes := protected.Group("/events")
	eventRoutes.Use(middleware.RequireAdmin())
	{
		eventRoutes.POST("/:id/close", eventsHandler.CloseEvent)
		eventRoutes.POST("/:id/reopen", eventsHandler.ReopenEvent)
	}

	// ========== History ==========
	protected.GET("/history", historyHandler.ListActions)

	// ========== Audit Logs (admin only) ==========
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RequireAdmin())
	{
		auditRoutes.GET("/", auditHandler.GetAuditLogs)
		auditRoutes.GET("/stats", auditHandler.GetAuditLogStats)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	// ========== Notifications ==========
	notifyRepo := notify.NewRepository(database.DB)
	notifySvc := notify.NewService(notifyRepo)
	notifyHandler := notify.NewHandler(notifySvc)

	notifyRoutes := protected.Group("/notifications")
	{
		notifyRoutes.GET("/", notifyHandler.ListNotifications)
		notifyRoutes.POST("/read-all", notifyHandler.MarkAllRead)
		notifyRoutes.POST("/:id/read", notifyHandler.MarkRead)
	}

	// ========== Reports (admin only) ==========
	reportsExporter := reports.NewReportExporter()
	reportsSvc := reports.NewService(deps.Engine, deps.DirSvc, historySvc, reportsExporter)
	reportsHandler := reports.NewHandler(reportsSvc)

	reportRoutes := protected.Group("/reports")
	reportRoutes.Use(middleware.RequireAdmin())
	{
		reportRoutes.GET("/:type", reportsHandler.DownloadReport)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}
