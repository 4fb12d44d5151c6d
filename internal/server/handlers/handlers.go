package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/application/escrow"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/reporting"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/adminrepo"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/middleware"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/websocket"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

type Handlers struct {
	EscrowSvc  escrow.IEscrowService
	ReportSvc  reporting.IReportService
	AdminRepo  adminrepo.IAdminRepository
	Queue      EventQueue
	Hub        *websocket.WsHub
	DB         Pinger
	Middleware *middleware.Middleware
	Limiter    *middleware.RateLimiter
	Logger     zerolog.Logger
	Config     *config.Config
	Version    string
}

func (h *Handlers) SetupHandlers(router *gin.Engine) {
	healthHandler := NewHealthHandler(h.DB, h.Version)
	webhookHandler := NewWebhookHandler(h.Queue, h.Logger)
	adminHandler := NewAdminHandler(h.EscrowSvc, h.ReportSvc, h.AdminRepo, h.Config.Admin, h.Logger)
	streamHandler := NewStreamHandler(h.Hub, h.Config.WebSocket, h.Logger)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	router.POST("/webhook", webhookHandler.HandleMessengerWebhook)

	admin := router.Group("/v1/admin", h.Limiter.Middleware(), h.Middleware.AuthMiddleware())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/stream", streamHandler.HandleStream)

		transactions := admin.Group("/transactions")
		{
			transactions.GET("", adminHandler.ListTransactions)
			transactions.GET("/:id", adminHandler.GetTransaction)
			transactions.POST("/:id/confirm-payment", adminHandler.ConfirmPayment)
			transactions.POST("/:id/reject-payment", adminHandler.RejectPayment)
			transactions.POST("/:id/payout", adminHandler.ConfirmPayout)
			transactions.POST("/:id/payout-problem", adminHandler.ReportPayoutProblem)
			transactions.POST("/:id/cancel", adminHandler.Cancel)
		}

		reports := admin.Group("/reports")
		{
			reports.GET("", adminHandler.ListReports)
			reports.GET("/:id", adminHandler.GetReport)
			reports.POST("/:id/reply", adminHandler.ReplyReport)
			reports.POST("/:id/close", adminHandler.CloseReport)
		}

		admins := admin.Group("/admins")
		{
			admins.GET("", adminHandler.ListAdmins)
			admins.PUT("/:id", adminHandler.UpdateAdmin)
		}
	}
}
