package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/events"
	"github.com/jabana-gov/case-service/internal/observability"
	"github.com/jabana-gov/case-service/internal/repository"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// ReferenceSource issues public case references.
type ReferenceSource interface {
	Next(ctx context.Context, caseType domain.CaseType) (string, error)
}

// CaseService coordinates the case lifecycle. It is the single source of
// truth for status transitions, assignment and the note thread; every
// mutation is audited and guarded by a version compare-and-swap.
type CaseService struct {
	cases      repository.CaseRepository
	notes      repository.NoteRepository
	history    repository.CaseHistoryRepository
	staff      repository.StaffRepository
	refs       ReferenceSource
	dispatcher events.Dispatcher
}

// CaseDependencies bundles what the case service needs.
type CaseDependencies struct {
	CaseRepo    repository.CaseRepository
	NoteRepo    repository.NoteRepository
	HistoryRepo repository.CaseHistoryRepository
	StaffRepo   repository.StaffRepository
	References  ReferenceSource
	Dispatcher  events.Dispatcher
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	return &CaseService{
		cases:      deps.CaseRepo,
		notes:      deps.NoteRepo,
		history:    deps.HistoryRepo,
		staff:      deps.StaffRepo,
		refs:       deps.References,
		dispatcher: deps.Dispatcher,
	}
}

// CaseCreateInput describes a citizen submission.
type CaseCreateInput struct {
	Type        domain.CaseType
	Category    string
	Description string
	Priority    domain.CasePriority
	Location    string
	Phone       *string
	Email       *string
	Anonymous   bool
}

// CaseListFilter describes staff listing parameters.
type CaseListFilter struct {
	Search     *string
	Status     *domain.CaseStatus
	Priority   *domain.CasePriority
	Type       *domain.CaseType
	AssigneeID *string
	Limit      int
	Offset     int
}

// CreateCase registers a new service request or complaint. Every case starts
// in submitted with no assignee; the reference is generated server-side.
func (s *CaseService) CreateCase(ctx context.Context, citizen *domain.User, input CaseCreateInput) (*domain.Case, error) {
	if !domain.ValidType(input.Type) {
		return nil, apperrors.NewValidationError("unknown case type", map[string]any{"type": input.Type})
	}
	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if category == "" || description == "" {
		return nil, apperrors.NewValidationError("category and description required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.CasePriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	if input.Anonymous && input.Type != domain.CaseTypeComplaint {
		return nil, apperrors.NewValidationError("only complaints may be anonymous", nil)
	}

	reference, err := s.refs.Next(ctx, input.Type)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	c := &domain.Case{
		Reference:   reference,
		Type:        input.Type,
		Category:    category,
		Description: description,
		Status:      domain.CaseStatusSubmitted,
		Priority:    priority,
		CitizenID:   &citizen.ID,
		CitizenName: citizen.Name,
		Location:    strings.TrimSpace(input.Location),
	}
	if input.Anonymous {
		// Owner link is kept so the citizen still sees their own case, but
		// the stored display identity carries nothing.
		c.CitizenName = domain.AnonymousCitizen
	} else {
		c.CitizenPhone = input.Phone
		c.CitizenEmail = input.Email
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, apperrors.MapError(err)
	}
	observability.RecordCaseCreated(string(c.Type))
	s.publish(ctx, events.Event{
		Type:      events.EventCaseCreated,
		CaseID:    c.ID,
		Reference: c.Reference,
		CitizenID: c.CitizenID,
		Actor:     citizenActor(citizen.ID),
		Payload: events.CaseCreatedPayload{
			Type:     c.Type,
			Category: c.Category,
			Priority: c.Priority,
			Location: c.Location,
		},
	})
	return c, nil
}

// ListCitizenCases returns the caller's own cases in submission order.
func (s *CaseService) ListCitizenCases(ctx context.Context, userID string, limit, offset int) ([]domain.Case, error) {
	cases, err := s.cases.ListWithFilter(ctx, repository.CaseFilter{
		CitizenID: &userID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return cases, nil
}

// GetCaseForCitizen fetches a case ensuring ownership. The returned history
// is reduced to status changes; internal notes are staff-only and never
// leave this boundary.
func (s *CaseService) GetCaseForCitizen(ctx context.Context, userID, caseID string) (*domain.Case, []domain.CaseHistory, error) {
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	if c.CitizenID == nil || *c.CitizenID != userID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	history, err := s.history.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	visible := make([]domain.CaseHistory, 0, len(history))
	for _, entry := range history {
		if entry.ChangeType == domain.ChangeTypeStatus || entry.ChangeType == domain.ChangeTypeReopen {
			visible = append(visible, entry)
		}
	}
	return c, visible, nil
}

// ListCases returns cases for staff views, filtered and in insertion order.
func (s *CaseService) ListCases(ctx context.Context, filter CaseListFilter) ([]domain.Case, error) {
	cases, err := s.cases.ListWithFilter(ctx, repository.CaseFilter{
		Search:     filter.Search,
		Status:     filter.Status,
		Priority:   filter.Priority,
		Type:       filter.Type,
		AssigneeID: filter.AssigneeID,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return cases, nil
}

// GetCaseDetail fetches a case with its note thread and full audit history.
func (s *CaseService) GetCaseDetail(ctx context.Context, caseID string) (*domain.Case, []domain.CaseNote, []domain.CaseHistory, error) {
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, nil, nil, err
	}
	notes, err := s.notes.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	history, err := s.history.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return c, notes, history, nil
}

// UpdateStatus moves a case forward through the lifecycle. Backward moves
// are rejected; resolved cases only come back through Reopen. The version
// is the one the caller last read; a stale version is a conflict.
func (s *CaseService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, caseID string, newStatus domain.CaseStatus, comment string, version int64) (*domain.Case, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == newStatus {
		return nil, apperrors.NewValidationError("case already in requested status", map[string]any{"status": newStatus})
	}
	if !domain.CanTransition(c.Status, newStatus) {
		return nil, apperrors.NewConflict("status cannot move backward", map[string]any{
			"from": c.Status,
			"to":   newStatus,
		})
	}

	oldStatus := c.Status
	c.Status = newStatus
	if newStatus == domain.CaseStatusResolved {
		now := time.Now()
		c.ResolvedAt = &now
	}
	if err := s.update(ctx, c, version); err != nil {
		return nil, err
	}

	if err := s.recordHistory(ctx, domain.ActorTypeStaff, &staff.ID, c.ID, domain.ChangeTypeStatus,
		map[string]any{"status": string(oldStatus)},
		map[string]any{"status": string(newStatus), "comment": comment}); err != nil {
		return nil, apperrors.MapError(err)
	}
	observability.RecordStatusChange(string(oldStatus), string(newStatus))
	s.publish(ctx, events.Event{
		Type:      events.EventCaseStatusChanged,
		CaseID:    c.ID,
		Reference: c.Reference,
		CitizenID: c.CitizenID,
		Actor:     staffActor(staff.ID),
		Payload: events.CaseStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return c, nil
}

// UpdatePriority changes case priority. Staff-only; citizens never touch
// priority after submission.
func (s *CaseService) UpdatePriority(ctx context.Context, staff *domain.StaffMember, caseID string, newPriority domain.CasePriority, version int64) (*domain.Case, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Priority == newPriority {
		return c, nil
	}

	oldPriority := c.Priority
	c.Priority = newPriority
	if err := s.update(ctx, c, version); err != nil {
		return nil, err
	}

	if err := s.recordHistory(ctx, domain.ActorTypeStaff, &staff.ID, c.ID, domain.ChangeTypePriority,
		map[string]any{"priority": string(oldPriority)},
		map[string]any{"priority": string(newPriority)}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventCasePriorityChanged,
		CaseID:    c.ID,
		Reference: c.Reference,
		CitizenID: c.CitizenID,
		Actor:     staffActor(staff.ID),
		Payload: events.CasePriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return c, nil
}

// Assign sets or clears the assignee. The unified rule: assignment of a
// submitted case auto-advances it to review; assignment in any other status
// never touches status, and unassignment never does either. Officers may
// only self-assign; executives and admins assign anyone.
func (s *CaseService) Assign(ctx context.Context, actor *domain.StaffMember, caseID string, staffID *string, version int64) (*domain.Case, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	assigningSelf := staffID != nil && *staffID == actor.ID
	if !assigningSelf && !actor.Role.CanAssignOthers() {
		return nil, apperrors.NewForbidden("insufficient role for assignment")
	}

	var assignee *domain.StaffMember
	if staffID != nil {
		var err error
		assignee, err = s.staff.GetByID(ctx, *staffID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": *staffID})
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.Active {
			return nil, apperrors.NewConflict("assignee inactive", map[string]any{"staff_id": *staffID})
		}
	}

	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	oldAssignee := c.AssigneeID
	oldStatus := c.Status
	c.AssigneeID = staffID
	c.AssigneeName = nil
	if assignee != nil {
		c.AssigneeName = &assignee.Name
	}
	statusAdvanced := staffID != nil && c.Status == domain.CaseStatusSubmitted
	if statusAdvanced {
		c.Status = domain.CaseStatusReview
	}
	if err := s.update(ctx, c, version); err != nil {
		return nil, err
	}

	if err := s.recordHistory(ctx, domain.ActorTypeStaff, &actor.ID, c.ID, domain.ChangeTypeAssignee,
		map[string]any{"assignee_staff_id": oldAssignee},
		map[string]any{"assignee_staff_id": staffID}); err != nil {
		return nil, apperrors.MapError(err)
	}
	if statusAdvanced {
		if err := s.recordHistory(ctx, domain.ActorTypeStaff, &actor.ID, c.ID, domain.ChangeTypeStatus,
			map[string]any{"status": string(oldStatus)},
			map[string]any{"status": string(c.Status), "comment": "auto-advanced on assignment"}); err != nil {
			return nil, apperrors.MapError(err)
		}
		observability.RecordStatusChange(string(oldStatus), string(c.Status))
	}
	observability.RecordAssignment()

	payload := events.CaseAssignedPayload{AssigneeStaffID: staffID}
	if assignee != nil {
		payload.AssigneeName = assignee.Name
	}
	s.publish(ctx, events.Event{
		Type:      events.EventCaseAssigned,
		CaseID:    c.ID,
		Reference: c.Reference,
		CitizenID: c.CitizenID,
		Actor:     staffActor(actor.ID),
		Payload:   payload,
	})
	return c, nil
}

// SelfAssign lets any staff member pick up a case.
func (s *CaseService) SelfAssign(ctx context.Context, staff *domain.StaffMember, caseID string) (*domain.Case, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return s.Assign(ctx, staff, caseID, &staff.ID, 0)
}

// Reopen is the one sanctioned backward move: resolved goes back to review,
// with its own audit entry. Executive or admin only.
func (s *CaseService) Reopen(ctx context.Context, actor *domain.StaffMember, caseID string, version int64) (*domain.Case, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if !actor.Role.CanAssignOthers() {
		return nil, apperrors.NewForbidden("insufficient role for reopen")
	}
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.CaseStatusResolved {
		return nil, apperrors.NewConflict("only resolved cases can be reopened", map[string]any{"status": c.Status})
	}

	previousResolvedAt := c.ResolvedAt
	c.Status = domain.CaseStatusReview
	c.ResolvedAt = nil
	if err := s.update(ctx, c, version); err != nil {
		return nil, err
	}

	if err := s.recordHistory(ctx, domain.ActorTypeStaff, &actor.ID, c.ID, domain.ChangeTypeReopen,
		map[string]any{"status": string(domain.CaseStatusResolved)},
		map[string]any{"status": string(domain.CaseStatusReview)}); err != nil {
		return nil, apperrors.MapError(err)
	}
	observability.RecordStatusChange(string(domain.CaseStatusResolved), string(domain.CaseStatusReview))
	s.publish(ctx, events.Event{
		Type:      events.EventCaseReopened,
		CaseID:    c.ID,
		Reference: c.Reference,
		CitizenID: c.CitizenID,
		Actor:     staffActor(actor.ID),
		Payload:   events.CaseReopenedPayload{PreviousResolvedAt: previousResolvedAt},
	})
	return c, nil
}

// AddNote appends an internal annotation. Empty or whitespace-only text is
// rejected here, not just in a client. Notes never change status.
func (s *CaseService) AddNote(ctx context.Context, staff *domain.StaffMember, caseID, body string) (*domain.CaseNote, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("note body required", nil)
	}
	c, err := s.getCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	note := &domain.CaseNote{
		CaseID:     c.ID,
		AuthorID:   staff.ID,
		AuthorName: staff.Name,
		Body:       body,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventCaseNoteAdded,
		CaseID:    c.ID,
		Reference: c.Reference,
		CitizenID: c.CitizenID,
		Actor:     staffActor(staff.ID),
		Payload: events.CaseNoteAddedPayload{
			NoteID:      note.ID,
			AuthorID:    staff.ID,
			BodyPreview: preview(body, 120),
		},
	})
	return note, nil
}

// ListHistory returns the full audit trail for staff.
func (s *CaseService) ListHistory(ctx context.Context, caseID string) ([]domain.CaseHistory, error) {
	if _, err := s.getCase(ctx, caseID); err != nil {
		return nil, err
	}
	history, err := s.history.ListByCase(ctx, caseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

func (s *CaseService) getCase(ctx context.Context, caseID string) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

// update persists via compare-and-swap. A positive version overrides the
// fetched one so the check runs against what the caller actually read.
func (s *CaseService) update(ctx context.Context, c *domain.Case, version int64) error {
	if version > 0 {
		c.Version = version
	}
	if err := s.cases.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("case was modified concurrently, refetch and retry", map[string]any{"case_id": c.ID})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("case", map[string]any{"case_id": c.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CaseService) recordHistory(ctx context.Context, actorType domain.ActorType, actorID *string, caseID string, changeType domain.CaseChangeType, oldValue, newValue map[string]any) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.CaseHistory{
		CaseID:        caseID,
		ChangedByType: actorType,
		ChangedByID:   actorID,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	})
}

func (s *CaseService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func citizenActor(userID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeCitizen, UserID: &userID}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &staffID}
}

// preview truncates on rune boundaries so multi-byte text is never split
// mid-character.
func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
