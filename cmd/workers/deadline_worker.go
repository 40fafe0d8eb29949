package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"geo-survey/survey-portal/survey-portal-backend/internal/config"
	"geo-survey/survey-portal/survey-portal-backend/internal/notifications"
)

// DeadlineWorker mails each topographe a daily digest of their projects
// that are past the planned end date and still open
type DeadlineWorker struct {
	db       *sqlx.DB
	notifier *notifications.Service
	logger   *zap.Logger
}

type overdueProject struct {
	ProjectName     string `db:"project_name"`
	TopographeEmail string `db:"topographe_email"`
}

func NewDeadlineWorker(db *sqlx.DB, notifier *notifications.Service, logger *zap.Logger) *DeadlineWorker {
	return &DeadlineWorker{db: db, notifier: notifier, logger: logger}
}

// Run sends one digest per topographe with overdue projects
func (w *DeadlineWorker) Run(ctx context.Context) {
	query := `
		SELECT p.name AS project_name, u.email AS topographe_email
		FROM projects p
		JOIN users u ON u.id = p.topographe_id
		WHERE p.end_date < NOW()
		  AND p.status NOT IN ('COMPLETED', 'CANCELLED')
		ORDER BY u.email, p.end_date`

	var rows []overdueProject
	if err := w.db.SelectContext(ctx, &rows, query); err != nil {
		w.logger.Error("Failed to query overdue projects", zap.Error(err))
		return
	}
	if len(rows) == 0 {
		w.logger.Info("No overdue projects")
		return
	}

	byTopographe := make(map[string][]string)
	for _, row := range rows {
		byTopographe[row.TopographeEmail] = append(byTopographe[row.TopographeEmail], row.ProjectName)
	}

	w.logger.Info("Sending deadline digests",
		zap.Int("overdue_projects", len(rows)),
		zap.Int("recipients", len(byTopographe)))

	for email, projectNames := range byTopographe {
		w.notifier.SendDeadlineDigest(ctx, email, projectNames)
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	channel, err := notifications.NewEmailChannel(context.Background(), cfg.Email)
	if err != nil {
		logger.Fatal("Failed to initialize email channel", zap.Error(err))
	}
	notifier := notifications.NewService(gormDB, channel, logger)

	worker := NewDeadlineWorker(db, notifier, logger)

	schedule := os.Getenv("DEADLINE_CRON")
	if schedule == "" {
		schedule = "0 7 * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		worker.Run(context.Background())
	}); err != nil {
		logger.Fatal("Failed to schedule deadline job", zap.Error(err))
	}

	logger.Info("Deadline worker starting", zap.String("schedule", schedule))
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received")
	<-c.Stop().Done()
	logger.Info("Deadline worker stopped")
}
