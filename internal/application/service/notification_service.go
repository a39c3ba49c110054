package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// NotificationService exposes a user's in-app notification feed
type NotificationService interface {
	List(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, actor workflow.Actor, id string) error
}

type notificationServiceImpl struct {
	notifications port.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications port.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		logger:        logger,
	}
}

// List retrieves the actor's notifications, newest first
func (s *notificationServiceImpl) List(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.Notification, error) {
	return s.notifications.ListByUser(ctx, actor.ID, limit, offset)
}

// MarkRead flags one of the actor's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor workflow.Actor, id string) error {
	return s.notifications.MarkRead(ctx, id, actor.ID)
}
