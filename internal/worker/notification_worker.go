package worker

import (
	"context"

	"github.com/jabana-gov/case-service/internal/events"
	"github.com/jabana-gov/case-service/internal/service"
)

// StartNotificationWorker registers the event handlers that fan case changes
// out to citizen feeds and keep the public tracking cache fresh.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, tracking *service.TrackingService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if dispatcher == nil || tracking == nil {
		return
	}

	invalidate := func(ctx context.Context, event events.Event) error {
		tracking.Invalidate(ctx, event.Reference)
		return nil
	}
	dispatcher.Subscribe(events.EventCaseStatusChanged, invalidate)
	dispatcher.Subscribe(events.EventCaseReopened, invalidate)
	dispatcher.Subscribe(events.EventCaseAssigned, invalidate)
}
