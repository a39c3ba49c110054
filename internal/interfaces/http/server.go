// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/service"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services the server exposes
type Services struct {
	Auth          service.AuthService
	Employees     service.EmployeeService
	Leave         service.LeaveService
	Loans         service.LoanService
	Appraisals    service.AppraisalService
	Attendance    service.AttendanceService
	Payroll       service.PayrollService
	Notifications service.NotificationService
	Reports       service.ReportService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()))
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", s.requireAuth(), handlers.Logout)
	}

	authed := api.Group("", s.requireAuth())

	reviewers := requireRoles(entity.RoleTeamLead, entity.RoleHR, entity.RoleMD)
	hrOnly := requireRoles(entity.RoleHR, entity.RoleAdmin)

	employees := authed.Group("/employees", hrOnly)
	{
		employees.POST("", handlers.CreateEmployee)
		employees.GET("", handlers.ListEmployees)
		employees.GET("/:id", handlers.GetEmployee)
		employees.PUT("/:id", handlers.UpdateEmployee)
		employees.DELETE("/:id", handlers.DeactivateEmployee)
	}

	leave := authed.Group("/leave")
	{
		leave.POST("", handlers.CreateLeave)
		leave.GET("", handlers.ListMyLeave)
		leave.GET("/pending", reviewers, handlers.ListPendingLeave)
		leave.GET("/:id", handlers.GetLeave)
		leave.POST("/:id/decision", reviewers, handlers.DecideLeave)
	}

	loans := authed.Group("/loans")
	{
		loans.POST("", handlers.CreateLoan)
		loans.GET("", handlers.ListMyLoans)
		loans.GET("/pending", reviewers, handlers.ListPendingLoans)
		loans.GET("/:id", handlers.GetLoan)
		loans.POST("/:id/decision", reviewers, handlers.DecideLoan)
	}

	appraisals := authed.Group("/appraisals")
	{
		appraisals.POST("", handlers.CreateAppraisal)
		appraisals.GET("", handlers.ListMyAppraisals)
		appraisals.GET("/pending", reviewers, handlers.ListPendingAppraisals)
		appraisals.GET("/:id", handlers.GetAppraisal)
		appraisals.POST("/:id/decision", reviewers, handlers.DecideAppraisal)
		appraisals.POST("/:id/revision", reviewers, handlers.RequestAppraisalRevision)
		appraisals.POST("/:id/resubmit", handlers.ResubmitAppraisal)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.POST("/clock-in", handlers.ClockIn)
		attendance.POST("/clock-out", handlers.ClockOut)
		attendance.GET("", handlers.ListAttendance)
	}

	payroll := authed.Group("/payroll")
	{
		payroll.POST("/run", hrOnly, handlers.RunPayroll)
		payroll.GET("/payslips", hrOnly, handlers.ListPayslipsByPeriod)
		payroll.GET("/payslips/me", handlers.ListMyPayslips)
		payroll.GET("/payslips/me/:period", handlers.GetMyPayslip)
	}

	reports := authed.Group("/reports", hrOnly)
	{
		reports.GET("/payroll-register", handlers.PayrollRegister)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", handlers.ListNotifications)
		notifications.POST("/:id/read", handlers.MarkNotificationRead)
	}
}

// requireAuth builds the token-verification middleware bound to this
// server's auth service
func (s *Server) requireAuth() gin.HandlerFunc {
	return authMiddleware(s.services.Auth)
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
