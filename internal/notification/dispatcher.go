// Package notification dispatches in-app and email notices. Delivery is
// best-effort: failures are logged and never propagated back into the
// workflow that triggered them.
package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/pkg/id"
)

// Dispatcher implements port.Notifier
type Dispatcher struct {
	notificationRepo port.NotificationRepository
	employeeRepo     port.EmployeeRepository
	mailer           port.Mailer
	logger           *zap.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(
	notificationRepo port.NotificationRepository,
	employeeRepo port.EmployeeRepository,
	mailer port.Mailer,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		notificationRepo: notificationRepo,
		employeeRepo:     employeeRepo,
		mailer:           mailer,
		logger:           logger,
	}
}

// Notify stores an in-app notification and emails the recipient
func (d *Dispatcher) Notify(ctx context.Context, notice port.Notice) {
	record := &entity.Notification{
		ID:        id.New(),
		CompanyID: notice.CompanyID,
		UserID:    notice.RecipientID,
		Kind:      notice.Kind,
		Title:     notice.Title,
		Message:   notice.Message,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.notificationRepo.Create(ctx, record); err != nil {
		d.logger.Error("Failed to store notification",
			zap.String("recipient", notice.RecipientID),
			zap.String("kind", notice.Kind),
			zap.Error(err))
	}

	recipient, err := d.employeeRepo.GetByID(ctx, notice.RecipientID)
	if err != nil {
		d.logger.Error("Failed to resolve notification recipient",
			zap.String("recipient", notice.RecipientID),
			zap.Error(err))
		return
	}

	if err := d.mailer.Send(ctx, recipient.Email, notice.Title, notice.Message); err != nil {
		d.logger.Error("Failed to email notification",
			zap.String("recipient", notice.RecipientID),
			zap.Error(err))
	}
}
