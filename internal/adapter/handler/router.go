package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	httpMiddleware "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/http/middleware"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	authHandler    *Auth
	clientHandler  *Client
	meetingHandler *Meeting
	taskHandler    *Task
	webhookHandler *Webhook
	billingHandler *Billing
	aiHandler      *AI
	storageHandler *Storage
	authMW         echo.MiddlewareFunc
	metricsHandler echo.HandlerFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	authHandler *Auth,
	clientHandler *Client,
	meetingHandler *Meeting,
	taskHandler *Task,
	webhookHandler *Webhook,
	billingHandler *Billing,
	aiHandler *AI,
	storageHandler *Storage,
	authMW echo.MiddlewareFunc,
	metricsHandler echo.HandlerFunc,
) *Router {
	return &Router{
		cfg:            cfg,
		authHandler:    authHandler,
		clientHandler:  clientHandler,
		meetingHandler: meetingHandler,
		taskHandler:    taskHandler,
		webhookHandler: webhookHandler,
		billingHandler: billingHandler,
		aiHandler:      aiHandler,
		storageHandler: storageHandler,
		authMW:         authMW,
		metricsHandler: metricsHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	if rt.metricsHandler != nil {
		e.GET("/metrics", rt.metricsHandler)
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupClientRoutes(v1)
	rt.setupMeetingRoutes(v1)
	rt.setupTaskRoutes(v1)
	rt.setupWebhookRoutes(v1)
	rt.setupBillingRoutes(v1)
	rt.setupAdminRoutes(v1)

	// Provider callback, authenticated by HMAC signature instead of a session
	v1.POST("/webhooks/transcription", rt.aiHandler.TranscriptionWebhook)
}

func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	authGroup.POST("/register", rt.authHandler.Register)
	authGroup.POST("/login", rt.authHandler.Login)
	authGroup.POST("/refresh", rt.authHandler.RefreshToken)
	authGroup.POST("/logout", rt.authHandler.Logout)
	authGroup.POST("/logout-all", rt.authHandler.LogoutAll, rt.authMW)
	authGroup.GET("/me", rt.authHandler.Me, rt.authMW)
}

func (rt *Router) setupClientRoutes(g *echo.Group) {
	clientGroup := g.Group("/clients", rt.authMW)

	clientGroup.GET("", rt.clientHandler.List)
	clientGroup.POST("", rt.clientHandler.Create)
	clientGroup.GET("/:id", rt.clientHandler.Get)
	clientGroup.PUT("/:id", rt.clientHandler.Update)
	clientGroup.DELETE("/:id", rt.clientHandler.Delete)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings", rt.authMW)

	meetingGroup.GET("", rt.meetingHandler.List)
	meetingGroup.POST("", rt.meetingHandler.Create)
	meetingGroup.GET("/:id", rt.meetingHandler.Get)
	meetingGroup.PUT("/:id", rt.meetingHandler.Update)
	meetingGroup.DELETE("/:id", rt.meetingHandler.Delete)
	meetingGroup.PUT("/:id/transcript", rt.meetingHandler.AttachTranscript)
	meetingGroup.POST("/:id/recording", rt.storageHandler.UploadRecording)

	// AI pipeline
	meetingGroup.POST("/:id/summary", rt.aiHandler.RequestSummary)
	meetingGroup.GET("/:id/jobs", rt.aiHandler.ListJobs)

	g.GET("/analysis-jobs/:id", rt.aiHandler.GetJob, rt.authMW)
	g.POST("/analysis-jobs/:id/cancel", rt.aiHandler.CancelJob, rt.authMW)
}

func (rt *Router) setupTaskRoutes(g *echo.Group) {
	taskGroup := g.Group("/tasks", rt.authMW)

	taskGroup.GET("", rt.taskHandler.List)
	taskGroup.POST("", rt.taskHandler.Create)
	taskGroup.POST("/reorder", rt.taskHandler.Reorder)
	taskGroup.GET("/:id", rt.taskHandler.Get)
	taskGroup.PUT("/:id", rt.taskHandler.Update)
	taskGroup.PATCH("/:id/status", rt.taskHandler.Transition)
	taskGroup.DELETE("/:id", rt.taskHandler.Delete)
}

func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhookGroup := g.Group("/webhooks", rt.authMW)

	configGroup := webhookGroup.Group("/configs")
	configGroup.GET("", rt.webhookHandler.ListConfigs)
	configGroup.POST("", rt.webhookHandler.CreateConfig)
	configGroup.GET("/:id", rt.webhookHandler.GetConfig)
	configGroup.PUT("/:id", rt.webhookHandler.UpdateConfig)
	configGroup.DELETE("/:id", rt.webhookHandler.DeleteConfig)
	configGroup.GET("/:id/logs", rt.webhookHandler.ListConfigLogs)
	configGroup.POST("/:id/test", rt.webhookHandler.TestFire)

	queueGroup := webhookGroup.Group("/queue")
	queueGroup.GET("", rt.webhookHandler.ListQueue)
	queueGroup.GET("/:id", rt.webhookHandler.GetEvent)
	queueGroup.POST("/:id/requeue", rt.webhookHandler.RequeueEvent)
	queueGroup.GET("/:id/logs", rt.webhookHandler.ListEventLogs)
}

func (rt *Router) setupBillingRoutes(g *echo.Group) {
	g.GET("/plans", rt.billingHandler.ListPlans)

	subGroup := g.Group("/subscription", rt.authMW)
	subGroup.GET("", rt.billingHandler.GetSubscription)
	subGroup.POST("", rt.billingHandler.Subscribe)
	subGroup.DELETE("", rt.billingHandler.Cancel)
}

func (rt *Router) setupAdminRoutes(g *echo.Group) {
	adminGroup := g.Group("/admin", rt.authMW, httpMiddleware.RequireRole(entities.RoleAdmin))

	adminGroup.POST("/sessions/cleanup", rt.authHandler.CleanupSessions)
	adminGroup.GET("/webhooks/queue", rt.webhookHandler.AdminListQueue)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
