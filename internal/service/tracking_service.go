package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/observability"
	"github.com/jabana-gov/case-service/internal/repository"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// TrackingStep is one entry on the public status timeline.
type TrackingStep struct {
	Status     domain.CaseStatus `json:"status"`
	Label      string            `json:"label"`
	Detail     string            `json:"detail"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// TrackingResult is the public view of a case. It deliberately exposes no
// citizen identity, assignee, or internal notes.
type TrackingResult struct {
	Reference   string              `json:"reference"`
	Type        domain.CaseType     `json:"type"`
	Category    string              `json:"category"`
	Description string              `json:"description"`
	Status      domain.CaseStatus   `json:"status"`
	Priority    domain.CasePriority `json:"priority"`
	SubmittedAt time.Time           `json:"submitted_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	ResolvedAt  *time.Time          `json:"resolved_at,omitempty"`
	Timeline    []TrackingStep      `json:"timeline"`
}

// TrackingService answers unauthenticated reference lookups, with a short
// Redis cache in front of the database.
type TrackingService struct {
	cases    repository.CaseRepository
	history  repository.CaseHistoryRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// TrackingDependencies wires the tracking service.
type TrackingDependencies struct {
	CaseRepo    repository.CaseRepository
	HistoryRepo repository.CaseHistoryRepository
	Cache       *redis.Client
}

// NewTrackingService builds the service.
func NewTrackingService(cfg config.TrackingConfig, deps TrackingDependencies, logger *zap.Logger) *TrackingService {
	return &TrackingService{
		cases:    deps.CaseRepo,
		history:  deps.HistoryRepo,
		cache:    deps.Cache,
		cacheTTL: time.Duration(cfg.CacheTTLSec) * time.Second,
		logger:   logger,
	}
}

// Track resolves a reference number to its public status view. The lookup is
// case-insensitive and tolerates surrounding whitespace.
func (s *TrackingService) Track(ctx context.Context, reference string) (*TrackingResult, error) {
	ref := domain.NormalizeReference(reference)
	if !domain.ValidReference(ref) {
		observability.RecordTrackLookup("invalid")
		return nil, apperrors.NewValidationError("reference number is not in a recognized format", map[string]any{
			"reference": reference,
		})
	}

	if cached := s.fromCache(ctx, ref); cached != nil {
		observability.RecordTrackLookup("hit")
		return cached, nil
	}

	c, err := s.cases.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observability.RecordTrackLookup("miss")
			return nil, apperrors.NewNotFound("case", map[string]any{"reference": ref})
		}
		return nil, err
	}

	entries, err := s.history.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	result := &TrackingResult{
		Reference:   c.Reference,
		Type:        c.Type,
		Category:    c.Category,
		Description: c.Description,
		Status:      c.Status,
		Priority:    c.Priority,
		SubmittedAt: c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		ResolvedAt:  c.ResolvedAt,
		Timeline:    buildTimeline(c, entries),
	}

	s.toCache(ctx, ref, result)
	observability.RecordTrackLookup("hit")
	return result, nil
}

func (s *TrackingService) fromCache(ctx context.Context, ref string) *TrackingResult {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, trackCacheKey(ref)).Bytes()
	if err != nil {
		return nil
	}
	var result TrackingResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return &result
}

func (s *TrackingService) toCache(ctx context.Context, ref string, result *TrackingResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, trackCacheKey(ref), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("track cache write failed", zap.String("reference", ref), zap.Error(err))
	}
}

// Invalidate drops the cached view after a case changes so the public page
// never lags behind a status update by more than one request.
func (s *TrackingService) Invalidate(ctx context.Context, reference string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, trackCacheKey(domain.NormalizeReference(reference))).Err(); err != nil {
		s.logger.Debug("track cache invalidation failed", zap.String("reference", reference), zap.Error(err))
	}
}

func trackCacheKey(ref string) string {
	return "track:" + ref
}

var statusLabels = map[domain.CaseStatus]struct {
	label  string
	detail string
}{
	domain.CaseStatusSubmitted: {"Submitted", "Request received and logged"},
	domain.CaseStatusReview:    {"Under Review", "Being reviewed by sector staff"},
	domain.CaseStatusProgress:  {"In Progress", "Work on this request is underway"},
	domain.CaseStatusResolved:  {"Resolved", "This request has been resolved"},
}

// buildTimeline converts the audit trail into citizen-facing steps. Creation
// always yields the first step; each status_change and reopen entry adds one.
func buildTimeline(c *domain.Case, entries []domain.CaseHistory) []TrackingStep {
	steps := []TrackingStep{{
		Status:     domain.CaseStatusSubmitted,
		Label:      statusLabels[domain.CaseStatusSubmitted].label,
		Detail:     statusLabels[domain.CaseStatusSubmitted].detail,
		OccurredAt: c.CreatedAt,
	}}

	for _, entry := range entries {
		if entry.ChangeType != domain.ChangeTypeStatus && entry.ChangeType != domain.ChangeTypeReopen {
			continue
		}
		raw, ok := entry.NewValue["status"].(string)
		if !ok {
			continue
		}
		status := domain.CaseStatus(raw)
		meta, known := statusLabels[status]
		if !known {
			continue
		}
		detail := meta.detail
		if entry.ChangeType == domain.ChangeTypeReopen {
			detail = "Case reopened for further review"
		}
		steps = append(steps, TrackingStep{
			Status:     status,
			Label:      meta.label,
			Detail:     detail,
			OccurredAt: entry.CreatedAt,
		})
	}

	return steps
}
