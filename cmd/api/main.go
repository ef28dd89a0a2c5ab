package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/medicore/medicore-api/docs" // Swagger docs
	"github.com/medicore/medicore-api/internal/config"
	"github.com/medicore/medicore-api/internal/database"
	"github.com/medicore/medicore-api/internal/handlers"
	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/medicore/medicore-api/internal/services"
	"github.com/medicore/medicore-api/internal/storage"
	"github.com/medicore/medicore-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title MediCore API
// @version 1.0
// @description REST API for the MediCore hospital site and investor installment management

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" {
		logger.Warn("Email disabled: RESEND_API_KEY not set")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath + "/uploads")
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, cfg, db)

	scheduleJobs(worker, svcs)

	h := handlers.NewHandlers(svcs, store)

	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Uploaded images are served from the public disk
	router.Static("/uploads", cfg.StoragePath+"/uploads")

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		// Public surface for the marketing site
		v1.GET("/health", h.Health.Index)
		v1.GET("/departments", h.Content.ListDepartments)
		v1.GET("/departments/:id", h.Content.ShowDepartment)
		v1.GET("/doctors", h.Content.ListDoctors)
		v1.GET("/doctors/:id", h.Content.ShowDoctor)
		v1.GET("/blogs", h.Content.ListBlogs)
		v1.GET("/blogs/:id", h.Content.ShowBlog)
		v1.GET("/hero-section", h.Content.ShowHeroSection)

		// Public investor application form
		v1.POST("/investors", h.Investor.Create)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)
			protected.GET("/notifications", h.Notification.Index)
			protected.POST("/notifications/:id/read", h.Notification.MarkAsRead)
			protected.POST("/notifications/read-all", h.Notification.MarkAllAsRead)
			protected.DELETE("/notifications/:id", h.Notification.Destroy)
			protected.POST("/users/change-password", h.User.ChangePassword)

			investors := protected.Group("/investors")
			investors.Use(middleware.RequirePrivilege(models.PrivilegeManageInvestors))
			{
				investors.GET("", h.Investor.Index)
				investors.GET("/:id", h.Investor.Show)
				investors.PUT("/:id", h.Investor.Update)
				investors.POST("/:id", h.Investor.Update)
				investors.DELETE("/:id", h.Investor.Destroy)
			}

			installments := protected.Group("/investor-installments")
			installments.Use(middleware.RequirePrivilege(models.PrivilegeManageInstallments))
			{
				installments.GET("", h.Installment.Index)
				installments.POST("", h.Installment.Create)
				installments.GET("/stats", h.Installment.Stats)
				installments.GET("/:id", h.Installment.Show)
				installments.POST("/:id", h.Installment.Update)
				installments.DELETE("/:id", h.Installment.Destroy)
			}

			rules := protected.Group("/installment-rules")
			rules.Use(middleware.RequirePrivilege(models.PrivilegeManageRules))
			{
				rules.GET("", h.Rule.Index)
				rules.POST("", h.Rule.Create)
				rules.GET("/:id", h.Rule.Show)
				rules.PUT("/:id", h.Rule.Update)
				rules.DELETE("/:id", h.Rule.Destroy)
				rules.POST("/:id/set-active", h.Rule.SetActive)
				rules.GET("/:id/schedule-preview", h.Rule.SchedulePreview)
			}

			content := protected.Group("")
			content.Use(middleware.RequirePrivilege(models.PrivilegeManageContent))
			{
				content.POST("/departments", h.Content.CreateDepartment)
				content.PUT("/departments/:id", h.Content.UpdateDepartment)
				content.DELETE("/departments/:id", h.Content.DestroyDepartment)
				content.POST("/doctors", h.Content.CreateDoctor)
				content.PUT("/doctors/:id", h.Content.UpdateDoctor)
				content.DELETE("/doctors/:id", h.Content.DestroyDoctor)
				content.POST("/blogs", h.Content.CreateBlog)
				content.PUT("/blogs/:id", h.Content.UpdateBlog)
				content.DELETE("/blogs/:id", h.Content.DestroyBlog)
				content.PUT("/hero-section", h.Content.UpsertHeroSection)
			}

			reports := protected.Group("/reports")
			reports.Use(middleware.RequirePrivilege(models.PrivilegeViewReports))
			{
				reports.GET("/investors/:id/statement", h.Report.InvestorStatement)
				reports.GET("/installments/csv", h.Report.InstallmentsCSV)
				reports.GET("/installments/xlsx", h.Report.InstallmentsXLSX)
			}

			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.GET("/users/:id", h.User.Show)
				admin.PUT("/users/:id", h.User.Update)
				admin.DELETE("/users/:id", h.User.Destroy)
				admin.POST("/users/:id/toggle-status", h.User.ToggleStatus)
				admin.POST("/users/:id/reset-password", h.User.ResetPassword)
				admin.GET("/audit-logs", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Daily past-due sweep: notifies admins and reminds investors, never
	// mutates installment status
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Checking past due installments...")
		return svcs.Installment.CheckPastDueInstallments(ctx)
	})
}
