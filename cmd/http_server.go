package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/access"
	"github.com/frahmantamala/timesheet-management/internal/approval"
	approvalPostgres "github.com/frahmantamala/timesheet-management/internal/approval/postgres"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	authPostgres "github.com/frahmantamala/timesheet-management/internal/auth/postgres"
	"github.com/frahmantamala/timesheet-management/internal/project"
	projectPostgres "github.com/frahmantamala/timesheet-management/internal/project/postgres"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetPostgres "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	"github.com/frahmantamala/timesheet-management/internal/transport/rest"
	"github.com/frahmantamala/timesheet-management/internal/user"
	userPostgres "github.com/frahmantamala/timesheet-management/internal/user/postgres"
	"github.com/frahmantamala/timesheet-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// GORM rides on the same pgx connection pool the health check pings.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	// Repositories
	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	projectRepo := projectPostgres.NewProjectRepository(gormDB)
	timesheetRepo := timesheetPostgres.NewTimesheetRepository(gormDB)
	approvalRepo := approvalPostgres.NewApprovalRepository(gormDB)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)
	userService := user.NewService(userRepo, config.Security.BCryptCost, lg)
	projectService := project.NewService(projectRepo, lg)

	policy := access.NewPolicy(projectRepo, userRepo, lg)
	timesheetService := timesheet.NewService(timesheetRepo, projectRepo, userRepo, policy, lg)
	approvalService := approval.NewService(approvalRepo, policy, config.Approval.AllowSelfApproval, lg)

	// Handlers
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	projectHandler := project.NewHandler(projectService)
	timesheetHandler := timesheet.NewHandler(timesheetService)
	approvalHandler := approval.NewHandler(approvalService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(
		router,
		db.DB,
		authHandler,
		userHandler,
		projectHandler,
		timesheetHandler,
		approvalHandler,
		config.Server.AllowedOrigins,
		lg,
	)

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

// initDB opens the pgx connection pool shared by the health check and GORM.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
