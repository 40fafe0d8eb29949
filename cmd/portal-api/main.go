package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"geo-survey/survey-portal/survey-portal-backend/internal/auth"
	"geo-survey/survey-portal/survey-portal-backend/internal/config"
	"geo-survey/survey-portal/survey-portal-backend/internal/geography"
	"geo-survey/survey-portal/survey-portal-backend/internal/notifications"
	"geo-survey/survey-portal/survey-portal-backend/internal/projects"
	"geo-survey/survey-portal/survey-portal-backend/internal/search"
	"geo-survey/survey-portal/survey-portal-backend/internal/stats"
	"geo-survey/survey-portal/survey-portal-backend/internal/tasks"
	"geo-survey/survey-portal/survey-portal-backend/internal/users"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment")
	}

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to database
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&users.User{},
		&projects.Project{},
		&tasks.Task{},
		&notifications.SentEmail{},
	); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// The geography and stats queries go through sqlx directly
	sqlxDB, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer sqlxDB.Close()

	// Outbound email channel
	emailChannel, err := notifications.NewEmailChannel(context.Background(), cfg.Email)
	if err != nil {
		logger.Fatal("Failed to initialize email channel", zap.Error(err))
	}
	notifier := notifications.NewService(gormDB, emailChannel, logger)

	// Search index (nil when disabled)
	indexer, err := search.NewIndexer(cfg.Search, logger)
	if err != nil {
		logger.Warn("Search index unavailable, continuing without it", zap.Error(err))
	}

	// Wire modules
	geographyRepo := geography.NewRepository(sqlxDB)
	geographyService := geography.NewService(geographyRepo, logger)
	geographyHandler := geography.NewHandler(geographyService)

	usersRepo := users.NewRepository(gormDB)
	usersService := users.NewService(usersRepo, geographyService, notifier, logger)
	usersHandler := users.NewHandler(usersService)

	projectsRepo := projects.NewRepository(gormDB)
	projectsService := projects.NewService(projectsRepo, usersService, indexer, logger)
	projectsHandler := projects.NewHandler(projectsService)

	tasksRepo := tasks.NewRepository(gormDB)
	tasksService := tasks.NewService(tasksRepo, projectsService, usersService, indexer, logger)
	tasksHandler := tasks.NewHandler(tasksService)

	statsRepo := stats.NewRepository(sqlxDB)
	statsService := stats.NewService(statsRepo, usersRepo, logger)
	statsHandler := stats.NewHandler(statsService)

	authService := auth.NewService(usersRepo, cfg.Security, logger)
	authHandler := auth.NewHandler(authService)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	auth.RegisterRoutes(router, authHandler, authService)

	// Register Routes
	api := router.Group("/api/v1")
	api.Use(auth.RequireAuth(authService))
	{
		usersGroup := api.Group("/users")
		usersGroup.Use(auth.RequireRoles(users.RoleAdmin))
		usersHandler.RegisterRoutes(usersGroup)

		projectsGroup := api.Group("/projects")
		projectsHandler.RegisterRoutes(projectsGroup)

		tasksGroup := api.Group("/tasks")
		tasksHandler.RegisterRoutes(tasksGroup)

		statsGroup := api.Group("/stats")
		statsGroup.Use(auth.RequireRoles(users.RoleAdmin, users.RoleTopographe))
		statsHandler.RegisterRoutes(statsGroup)

		geographyGroup := api.Group("/geography")
		geographyHandler.RegisterRoutes(geographyGroup)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}
