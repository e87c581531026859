package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/domain"
)

func newTrackingFixture(t *testing.T) (*TrackingService, *caseFixture) {
	t.Helper()
	f := newCaseFixture(t)
	tracking := NewTrackingService(config.TrackingConfig{CacheTTLSec: 0}, TrackingDependencies{
		CaseRepo:    f.cases,
		HistoryRepo: f.history,
		Cache:       nil,
	}, zap.NewNop())
	return tracking, f
}

func TestTrackByReference(t *testing.T) {
	tracking, f := newTrackingFixture(t)
	created := f.createCase(t, serviceInput())
	_, err := f.svc.UpdateStatus(context.Background(), &testOfficer, created.ID, domain.CaseStatusReview, "", 0)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), &testOfficer, created.ID, domain.CaseStatusProgress, "", 0)
	require.NoError(t, err)

	result, err := tracking.Track(context.Background(), created.Reference)
	require.NoError(t, err)
	assert.Equal(t, created.Reference, result.Reference)
	assert.Equal(t, domain.CaseStatusProgress, result.Status)
	assert.Equal(t, created.Description, result.Description)
	assert.Equal(t, created.Priority, result.Priority)

	require.Len(t, result.Timeline, 3)
	assert.Equal(t, "Submitted", result.Timeline[0].Label)
	assert.Equal(t, "Request received and logged", result.Timeline[0].Detail)
	assert.Equal(t, "Under Review", result.Timeline[1].Label)
	assert.Equal(t, "In Progress", result.Timeline[2].Label)
}

func TestTrackExposesNoIdentity(t *testing.T) {
	tracking, f := newTrackingFixture(t)
	created := f.createCase(t, serviceInput())

	result, err := tracking.Track(context.Background(), created.Reference)
	require.NoError(t, err)

	// The public projection has no citizen or assignee fields at all; spot
	// check that what it does carry is only case metadata.
	assert.Equal(t, created.Category, result.Category)
	assert.Equal(t, created.Type, result.Type)
}

func TestTrackCaseInsensitive(t *testing.T) {
	tracking, f := newTrackingFixture(t)
	created := f.createCase(t, serviceInput())

	lower := "  " + strings.ToLower(created.Reference) + "  "
	result, err := tracking.Track(context.Background(), lower)
	require.NoError(t, err)
	assert.Equal(t, created.Reference, result.Reference)
}

func TestTrackMalformedReference(t *testing.T) {
	tracking, _ := newTrackingFixture(t)
	_, err := tracking.Track(context.Background(), "NOPE")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestTrackUnknownReference(t *testing.T) {
	tracking, _ := newTrackingFixture(t)
	_, err := tracking.Track(context.Background(), "JAB-2025-999999")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestTrackReopenedCaseTimeline(t *testing.T) {
	tracking, f := newTrackingFixture(t)
	created := f.createCase(t, serviceInput())
	_, err := f.svc.UpdateStatus(context.Background(), &testOfficer, created.ID, domain.CaseStatusResolved, "", 0)
	require.NoError(t, err)
	_, err = f.svc.Reopen(context.Background(), &testExecutive, created.ID, 0)
	require.NoError(t, err)

	result, err := tracking.Track(context.Background(), created.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusReview, result.Status)
	assert.Nil(t, result.ResolvedAt)

	last := result.Timeline[len(result.Timeline)-1]
	assert.Equal(t, "Under Review", last.Label)
	assert.Equal(t, "Case reopened for further review", last.Detail)
}
