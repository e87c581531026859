package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/events"
	"github.com/jabana-gov/case-service/internal/repository"
)

// NotificationService turns case events into citizen feed entries and drives
// the outbound delivery stubs.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifications repository.NotificationRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to case events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCaseCreated, n.handleCaseCreated)
	n.dispatcher.Subscribe(events.EventCaseStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventCaseAssigned, n.handleAssigned)
	n.dispatcher.Subscribe(events.EventCaseReopened, n.handleReopened)
}

// ListForUser returns a citizen's feed, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return n.notifications.ListByUser(ctx, userID, limit, offset)
}

// MarkRead marks one feed entry as read. Only the owner may do so.
func (n *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return n.notifications.MarkRead(ctx, userID, notificationID)
}

func (n *NotificationService) handleCaseCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseCreated", zap.String("reference", event.Reference), zap.Any("payload", event.Payload))
	n.store(ctx, event, domain.NotificationStatusUpdate,
		"Request Received",
		fmt.Sprintf("Your request %s has been received and logged.", event.Reference))
	n.sendEmailStub(ctx, event)
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseStatusChanged", zap.String("reference", event.Reference), zap.Any("payload", event.Payload))

	kind := domain.NotificationStatusUpdate
	title := "Request Status Updated"
	body := fmt.Sprintf("Your request %s has a new status.", event.Reference)
	if payload, ok := event.Payload.(events.CaseStatusChangedPayload); ok {
		if payload.NewStatus == domain.CaseStatusResolved {
			kind = domain.NotificationResolution
			title = "Request Resolved"
			body = fmt.Sprintf("Your request %s has been resolved.", event.Reference)
		} else {
			body = fmt.Sprintf("Your request %s is now %s.", event.Reference, statusLabels[payload.NewStatus].label)
		}
	}
	n.store(ctx, event, kind, title, body)
	n.sendEmailStub(ctx, event)
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseAssigned", zap.String("reference", event.Reference), zap.Any("payload", event.Payload))

	payload, ok := event.Payload.(events.CaseAssignedPayload)
	if !ok || payload.AssigneeStaffID == nil {
		// Unassignment stays internal; citizens only hear about progress.
		return nil
	}
	n.store(ctx, event, domain.NotificationAssignment,
		"Request Assigned",
		fmt.Sprintf("Your request %s has been assigned to a sector officer.", event.Reference))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleReopened(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseReopened", zap.String("reference", event.Reference))
	n.store(ctx, event, domain.NotificationStatusUpdate,
		"Request Reopened",
		fmt.Sprintf("Your request %s has been reopened for further review.", event.Reference))
	n.sendWebhookStub(ctx, event)
	return nil
}

// store persists a feed entry for the owning citizen. Anonymous complaints
// still carry the owner link, so their author keeps receiving updates.
func (n *NotificationService) store(ctx context.Context, event events.Event, kind domain.NotificationKind, title, body string) {
	if event.CitizenID == nil || n.notifications == nil {
		return
	}
	notification := &domain.Notification{
		UserID:        *event.CitizenID,
		CaseReference: event.Reference,
		Kind:          kind,
		Title:         title,
		Body:          body,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("persist notification failed",
			zap.String("reference", event.Reference),
			zap.Error(err))
	}
}

func (n *NotificationService) sendEmailStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("reference", event.Reference),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("reference", event.Reference),
		zap.String("event_type", string(event.Type)))
}
