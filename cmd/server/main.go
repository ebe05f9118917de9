package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brewhub-system/config"
	"brewhub-system/internal/commission"
	"brewhub-system/internal/contract"
	"brewhub-system/internal/database"
	"brewhub-system/internal/filters"
	"brewhub-system/internal/notify"
	"brewhub-system/internal/reports"
	"brewhub-system/internal/server/handlers"
	"brewhub-system/internal/server/middleware"
	"brewhub-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	rdb := config.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	channels := []notify.Channel{
		notify.NewEmailChannel(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort, cfg.Notify.SMTPUser, cfg.Notify.SMTPPassword, cfg.Notify.SMTPFrom),
		notify.NewPushChannel(cfg.Notify.PushRelayURL, cfg.Notify.PushRelayKey),
	}
	if cfg.Notify.TelegramToken != "" {
		telegram, err := notify.NewTelegramChannel(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			log.Printf("Warning: Telegram channel unavailable: %v", err)
		} else {
			channels = append(channels, telegram)
		}
	}

	retryQueue := notify.NewRetryQueue(db, channels...)
	dispatcher := notify.NewDispatcher(retryQueue, channels...)

	alertStore := commission.NewRedisAlertStore(rdb)
	evaluator := commission.NewEvaluator(alertStore, alertStore, dispatcher)

	rateSettings := commission.NewSettingsStore(db)
	tokenStore := commission.NewRedisTokenStore(rdb)
	summarySvc := commission.NewSummaryService(db, rdb)
	commissionSvc := commission.NewService(db, rateSettings, tokenStore, evaluator, summarySvc)

	userHandler := handlers.NewUserHTTPHandler(db, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	commissionHandler := handlers.NewCommissionHTTPHandler(commissionSvc, rateSettings, summarySvc)
	alertHandler := handlers.NewAlertHTTPHandler(alertStore, evaluator)
	notificationHandler := handlers.NewNotificationHTTPHandler(retryQueue)
	reportHandler := handlers.NewReportHTTPHandler(reports.NewSettingsStore(db))
	filterHandler := handlers.NewFilterHTTPHandler(filters.NewStore(rdb))
	exportHandler := handlers.NewExportHTTPHandler(commissionSvc)
	contractHandler := handlers.NewContractHTTPHandler(contract.NewService(db))

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit("100-M"))

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
			auth.POST("/register", userHandler.Register)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
		}

		commissions := protected.Group("/commissions")
		{
			commissions.POST("", middleware.AdminOnly(), commissionHandler.CreateCommission)
			commissions.GET("", commissionHandler.ListCommissions)
			commissions.GET("/summary", commissionHandler.GetSummary)
			commissions.GET("/export/csv", exportHandler.ExportCSV)
			commissions.GET("/export/excel", exportHandler.ExportExcel)
			commissions.POST("/confirmations", middleware.AdminOnly(), commissionHandler.RequestConfirmation)
			commissions.PUT("/status", middleware.AdminOnly(), commissionHandler.BulkSetStatus)
			commissions.GET("/:id", commissionHandler.GetCommission)
			commissions.PUT("/:id/status", middleware.AdminOnly(), commissionHandler.SetStatus)
		}

		settings := protected.Group("/settings")
		{
			settings.GET("/commission-rates", commissionHandler.GetRateSettings)
			settings.PUT("/commission-rates", middleware.AdminOnly(), commissionHandler.SaveRateSettings)
			settings.GET("/alerts", alertHandler.GetAlertSettings)
			settings.PUT("/alerts", alertHandler.SaveAlertSettings)
			settings.POST("/alerts/reset", alertHandler.ResetNotification)
			settings.GET("/reports", reportHandler.GetReportSettings)
			settings.PUT("/reports", reportHandler.SaveReportSettings)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("/failed", notificationHandler.ListFailedDeliveries)
			notifications.POST("/retry", notificationHandler.RetryFailedDeliveries)
		}

		filterTemplates := protected.Group("/filter-templates")
		{
			filterTemplates.POST("", filterHandler.SaveTemplate)
			filterTemplates.GET("", filterHandler.ListTemplates)
			filterTemplates.DELETE("/:name", filterHandler.DeleteTemplate)
		}

		contracts := protected.Group("/contracts")
		{
			contracts.POST("", contractHandler.CreateContract)
			contracts.GET("", contractHandler.ListContracts)
			contracts.GET("/:id", contractHandler.GetContract)
			contracts.POST("/:id/fund", contractHandler.FundContract)
			contracts.POST("/:id/release", middleware.AdminOnly(), contractHandler.ReleaseContract)
			contracts.POST("/:id/refund", middleware.AdminOnly(), contractHandler.RefundContract)
		}
	}

	r.GET("/health", healthCheckHandler())

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}
