package dto

import (
	"time"

	"github.com/jabana-gov/case-service/internal/domain"
)

// CreateCaseRequest payload.
type CreateCaseRequest struct {
	Type        domain.CaseType     `json:"type"`
	Category    string              `json:"category"`
	Description string              `json:"description"`
	Priority    domain.CasePriority `json:"priority"`
	Location    string              `json:"location"`
	Phone       *string             `json:"phone"`
	Email       *string             `json:"email"`
	Anonymous   bool                `json:"anonymous"`
}

// CaseSummary response for list views.
type CaseSummary struct {
	ID           string              `json:"id"`
	Reference    string              `json:"reference"`
	Type         domain.CaseType     `json:"type"`
	Category     string              `json:"category"`
	Status       domain.CaseStatus   `json:"status"`
	Priority     domain.CasePriority `json:"priority"`
	CitizenName  string              `json:"citizen_name"`
	AssigneeID   *string             `json:"assignee_id"`
	AssigneeName *string             `json:"assignee_name,omitempty"`
	Version      int64               `json:"version"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CaseDetailResponse provides full case info for staff views.
type CaseDetailResponse struct {
	CaseSummary
	Description  string                `json:"description"`
	Location     string                `json:"location"`
	CitizenPhone *string               `json:"citizen_phone,omitempty"`
	CitizenEmail *string               `json:"citizen_email,omitempty"`
	ResolvedAt   *time.Time            `json:"resolved_at,omitempty"`
	Notes        []CaseNoteResponse    `json:"notes,omitempty"`
	History      []CaseHistoryResponse `json:"history,omitempty"`
}

// CaseNoteResponse represents an internal annotation.
type CaseNoteResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// CaseHistoryResponse represents one audit trail entry.
type CaseHistoryResponse struct {
	ID            string                `json:"id"`
	ChangedByType domain.ActorType      `json:"changed_by_type"`
	ChangedByID   *string               `json:"changed_by_id,omitempty"`
	ChangeType    domain.CaseChangeType `json:"change_type"`
	OldValue      map[string]any        `json:"old_value,omitempty"`
	NewValue      map[string]any        `json:"new_value,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// UpdateStatusRequest payload. Version enables optimistic concurrency; zero
// means "no check".
type UpdateStatusRequest struct {
	Status  domain.CaseStatus `json:"status"`
	Comment string            `json:"comment"`
	Version int64             `json:"version"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.CasePriority `json:"priority"`
	Version  int64               `json:"version"`
}

// AssignCaseRequest payload. A null staff_id unassigns.
type AssignCaseRequest struct {
	StaffID *string `json:"staff_id"`
	Version int64   `json:"version"`
}

// ReopenCaseRequest payload.
type ReopenCaseRequest struct {
	Version int64 `json:"version"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Body string `json:"body"`
}

// NewCaseSummary maps a domain case to its list representation.
func NewCaseSummary(c domain.Case) CaseSummary {
	return CaseSummary{
		ID:           c.ID,
		Reference:    c.Reference,
		Type:         c.Type,
		Category:     c.Category,
		Status:       c.Status,
		Priority:     c.Priority,
		CitizenName:  c.CitizenName,
		AssigneeID:   c.AssigneeID,
		AssigneeName: c.AssigneeName,
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// NewCaseSummaries maps a slice of cases.
func NewCaseSummaries(cases []domain.Case) []CaseSummary {
	out := make([]CaseSummary, 0, len(cases))
	for _, c := range cases {
		out = append(out, NewCaseSummary(c))
	}
	return out
}

// NewCaseDetail maps a case plus its notes and history.
func NewCaseDetail(c *domain.Case, notes []domain.CaseNote, history []domain.CaseHistory) CaseDetailResponse {
	resp := CaseDetailResponse{
		CaseSummary:  NewCaseSummary(*c),
		Description:  c.Description,
		Location:     c.Location,
		CitizenPhone: c.CitizenPhone,
		CitizenEmail: c.CitizenEmail,
		ResolvedAt:   c.ResolvedAt,
	}
	for _, note := range notes {
		resp.Notes = append(resp.Notes, CaseNoteResponse{
			ID:         note.ID,
			AuthorID:   note.AuthorID,
			AuthorName: note.AuthorName,
			Body:       note.Body,
			CreatedAt:  note.CreatedAt,
		})
	}
	resp.History = NewCaseHistory(history)
	return resp
}

// NewCaseHistory maps audit entries.
func NewCaseHistory(history []domain.CaseHistory) []CaseHistoryResponse {
	out := make([]CaseHistoryResponse, 0, len(history))
	for _, entry := range history {
		out = append(out, CaseHistoryResponse{
			ID:            entry.ID,
			ChangedByType: entry.ChangedByType,
			ChangedByID:   entry.ChangedByID,
			ChangeType:    entry.ChangeType,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return out
}
