package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// ErrUnauthenticated is returned when a token is missing, malformed, expired,
// or its session has been revoked
var ErrUnauthenticated = errors.New("unauthenticated")

// AuthService authenticates employees and issues revocable tokens
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *entity.Employee, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (workflow.Actor, error)
}

type authClaims struct {
	Role       string `json:"role"`
	Department string `json:"department"`
	Company    string `json:"company"`
	jwt.RegisteredClaims
}

type authServiceImpl struct {
	employees port.EmployeeRepository
	sessions  port.SessionStore
	secret    []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	employees port.EmployeeRepository,
	sessions port.SessionStore,
	secret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		employees: employees,
		sessions:  sessions,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login verifies credentials and issues a session-backed JWT
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *entity.Employee, error) {
	emp, err := s.employees.GetByEmail(ctx, email)
	if errors.Is(err, port.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("login lookup: %w", err)
	}
	if !emp.Active {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := authClaims{
		Role:       emp.Role,
		Department: emp.Department,
		Company:    emp.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.Save(ctx, token, emp.ID, s.tokenTTL); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Employee logged in",
		zap.String("employee_id", emp.ID),
		zap.String("company_id", emp.CompanyID))
	return token, emp, nil
}

// Logout revokes the session backing the token
func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Verify parses the token, checks the signature and expiry, and requires a
// live session so revoked tokens fail even before their JWT expiry.
func (s *authServiceImpl) Verify(ctx context.Context, token string) (workflow.Actor, error) {
	var claims authClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return workflow.Actor{}, ErrUnauthenticated
	}

	if _, err := s.sessions.Get(ctx, token); err != nil {
		return workflow.Actor{}, ErrUnauthenticated
	}

	return workflow.Actor{
		ID:         claims.Subject,
		Role:       claims.Role,
		Department: claims.Department,
		Company:    claims.Company,
	}, nil
}
