package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/service"
	"github.com/staffbridge/hr-payroll/internal/cache"
	"github.com/staffbridge/hr-payroll/internal/config"
	"github.com/staffbridge/hr-payroll/internal/email"
	httpserver "github.com/staffbridge/hr-payroll/internal/interfaces/http"
	"github.com/staffbridge/hr-payroll/internal/notification"
	"github.com/staffbridge/hr-payroll/internal/repository"
	"github.com/staffbridge/hr-payroll/internal/worker"
	"github.com/staffbridge/hr-payroll/pkg/database"
	"github.com/staffbridge/hr-payroll/pkg/utils"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).RunMigrations(cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	redisClient, err := cache.OpenRedis(cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	sessions := cache.NewSessionStore(redisClient)

	employeeRepo := repository.NewEmployeeRepository(db.DB, logger)
	leaveRepo := repository.NewLeaveRepository(db.DB, logger)
	loanRepo := repository.NewLoanRepository(db.DB, logger)
	appraisalRepo := repository.NewAppraisalRepository(db.DB, logger)
	attendanceRepo := repository.NewAttendanceRepository(db.DB, logger)
	payslipRepo := repository.NewPayslipRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	mailer := email.NewSender(email.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		Enabled:   cfg.SMTP.Enabled,
	}, logger)
	notifier := notification.NewDispatcher(notificationRepo, employeeRepo, mailer, logger)

	services := httpserver.Services{
		Auth:          service.NewAuthService(employeeRepo, sessions, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger),
		Employees:     service.NewEmployeeService(employeeRepo, cfg.Auth.BcryptCost, logger),
		Leave:         service.NewLeaveService(leaveRepo, employeeRepo, employeeRepo, notifier, logger),
		Loans:         service.NewLoanService(loanRepo, employeeRepo, notifier, logger),
		Appraisals:    service.NewAppraisalService(appraisalRepo, employeeRepo, notifier, logger),
		Attendance:    service.NewAttendanceService(attendanceRepo, logger),
		Payroll:       service.NewPayrollService(payslipRepo, employeeRepo, loanRepo, notifier, int64(cfg.Payroll.PensionRatePercent), logger),
		Notifications: service.NewNotificationService(notificationRepo, logger),
		Reports:       service.NewReportService(payslipRepo, logger),
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, services, logger)

	sweeper := worker.NewExpirySweeper(
		leaveRepo,
		loanRepo,
		time.Duration(cfg.Workflow.LeaveExpiryDays)*24*time.Hour,
		time.Duration(cfg.Workflow.LoanExpiryDays)*24*time.Hour,
		cfg.Workflow.SweepInterval,
		logger,
	)
	workers := worker.NewManager(logger)
	workers.Register(sweeper)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workers.StartAll(ctx); err != nil {
		return fmt.Errorf("workers: %w", err)
	}
	defer workers.StopAll()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	return server.Start(ctx)
}
