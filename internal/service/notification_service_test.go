package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/events"
)

type notificationFixture struct {
	dispatcher events.Dispatcher
	repo       *fakeNotificationRepo
	svc        *NotificationService
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		dispatcher: events.NewInMemoryDispatcher(),
		repo:       &fakeNotificationRepo{},
	}
	f.svc = NewNotificationService(f.dispatcher, f.repo, zap.NewNop(), config.NotificationConfig{})
	f.svc.RegisterHandlers()
	return f
}

func citizenEvent(eventType events.EventType, payload interface{}) events.Event {
	citizenID := "user-1"
	return events.Event{
		Type:      eventType,
		CaseID:    "case-1",
		Reference: "JAB-2025-100001",
		CitizenID: &citizenID,
		Payload:   payload,
	}
}

func TestCaseCreatedStoresFeedEntry(t *testing.T) {
	f := newNotificationFixture()

	err := f.dispatcher.Publish(context.Background(), citizenEvent(events.EventCaseCreated, events.CaseCreatedPayload{
		Type:     domain.CaseTypeService,
		Category: "Road Repair",
	}))
	require.NoError(t, err)

	require.Len(t, f.repo.stored, 1)
	entry := f.repo.stored[0]
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "JAB-2025-100001", entry.CaseReference)
	assert.Equal(t, domain.NotificationStatusUpdate, entry.Kind)
	assert.Equal(t, "Request Received", entry.Title)
	assert.Contains(t, entry.Body, "JAB-2025-100001")
}

func TestEventWithoutOwnerStoresNothing(t *testing.T) {
	f := newNotificationFixture()

	event := citizenEvent(events.EventCaseCreated, nil)
	event.CitizenID = nil
	require.NoError(t, f.dispatcher.Publish(context.Background(), event))

	assert.Empty(t, f.repo.stored)
}

func TestResolvedStatusUsesResolutionKind(t *testing.T) {
	f := newNotificationFixture()

	err := f.dispatcher.Publish(context.Background(), citizenEvent(events.EventCaseStatusChanged, events.CaseStatusChangedPayload{
		OldStatus: domain.CaseStatusProgress,
		NewStatus: domain.CaseStatusResolved,
	}))
	require.NoError(t, err)

	require.Len(t, f.repo.stored, 1)
	assert.Equal(t, domain.NotificationResolution, f.repo.stored[0].Kind)
	assert.Equal(t, "Request Resolved", f.repo.stored[0].Title)
}

func TestIntermediateStatusUsesCitizenLabel(t *testing.T) {
	f := newNotificationFixture()

	err := f.dispatcher.Publish(context.Background(), citizenEvent(events.EventCaseStatusChanged, events.CaseStatusChangedPayload{
		OldStatus: domain.CaseStatusReview,
		NewStatus: domain.CaseStatusProgress,
	}))
	require.NoError(t, err)

	require.Len(t, f.repo.stored, 1)
	assert.Equal(t, domain.NotificationStatusUpdate, f.repo.stored[0].Kind)
	assert.Contains(t, f.repo.stored[0].Body, "In Progress")
}

func TestAssignmentNotifiesButUnassignmentStaysInternal(t *testing.T) {
	f := newNotificationFixture()

	staffID := "staff-1"
	err := f.dispatcher.Publish(context.Background(), citizenEvent(events.EventCaseAssigned, events.CaseAssignedPayload{
		AssigneeStaffID: &staffID,
		AssigneeName:    "Alice Mukamana",
	}))
	require.NoError(t, err)
	require.Len(t, f.repo.stored, 1)
	assert.Equal(t, domain.NotificationAssignment, f.repo.stored[0].Kind)

	err = f.dispatcher.Publish(context.Background(), citizenEvent(events.EventCaseAssigned, events.CaseAssignedPayload{}))
	require.NoError(t, err)
	assert.Len(t, f.repo.stored, 1)
}

func TestReopenedStoresFeedEntry(t *testing.T) {
	f := newNotificationFixture()

	err := f.dispatcher.Publish(context.Background(), citizenEvent(events.EventCaseReopened, events.CaseReopenedPayload{}))
	require.NoError(t, err)

	require.Len(t, f.repo.stored, 1)
	assert.Equal(t, "Request Reopened", f.repo.stored[0].Title)
}

func TestListForUserClampsLimit(t *testing.T) {
	f := newNotificationFixture()

	_, err := f.svc.ListForUser(context.Background(), "user-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, f.repo.lastLimit)

	_, err = f.svc.ListForUser(context.Background(), "user-1", 500, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, f.repo.lastLimit)

	_, err = f.svc.ListForUser(context.Background(), "user-1", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, f.repo.lastLimit)
}

func TestMarkReadOnlyForOwner(t *testing.T) {
	f := newNotificationFixture()

	require.NoError(t, f.dispatcher.Publish(context.Background(), citizenEvent(events.EventCaseCreated, nil)))
	require.Len(t, f.repo.stored, 1)
	id := f.repo.stored[0].ID

	assert.Error(t, f.svc.MarkRead(context.Background(), "someone-else", id))
	assert.NoError(t, f.svc.MarkRead(context.Background(), "user-1", id))
	require.NotNil(t, f.repo.stored[0].ReadAt)

	// Re-reading is idempotent and keeps the original timestamp.
	firstRead := *f.repo.stored[0].ReadAt
	assert.NoError(t, f.svc.MarkRead(context.Background(), "user-1", id))
	assert.Equal(t, firstRead, *f.repo.stored[0].ReadAt)
}
