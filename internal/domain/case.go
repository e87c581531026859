package domain

import (
	"regexp"
	"strings"
	"time"
)

// CaseType distinguishes citizen service requests from complaints.
type CaseType string

const (
	CaseTypeService   CaseType = "service"
	CaseTypeComplaint CaseType = "complaint"
)

// CaseStatus enumerates lifecycle states for cases.
type CaseStatus string

const (
	CaseStatusSubmitted CaseStatus = "submitted"
	CaseStatusReview    CaseStatus = "review"
	CaseStatusProgress  CaseStatus = "progress"
	CaseStatusResolved  CaseStatus = "resolved"
)

// CasePriority enumerates urgency levels.
type CasePriority string

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
)

// Case is the aggregate for citizen-government interactions. The Reference
// field is the public tracking token; AssigneeID references a StaffMember by
// id; AssigneeName is not stored on the case, reads resolve it from the
// staff record. Version is the
// compare-and-swap key for concurrent staff edits.
type Case struct {
	ID           string
	Reference    string
	Type         CaseType
	Category     string
	Description  string
	Status       CaseStatus
	Priority     CasePriority
	CitizenID    *string
	CitizenName  string
	CitizenPhone *string
	CitizenEmail *string
	Location     string
	AssigneeID   *string
	AssigneeName *string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
}

// AnonymousCitizen is the display name stored for anonymous complaints.
const AnonymousCitizen = "Anonymous"

var statusRank = map[CaseStatus]int{
	CaseStatusSubmitted: 0,
	CaseStatusReview:    1,
	CaseStatusProgress:  2,
	CaseStatusResolved:  3,
}

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s CaseStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p CasePriority) bool {
	return p == CasePriorityLow || p == CasePriorityMedium || p == CasePriorityHigh
}

// ValidType reports whether t is a known case type.
func ValidType(t CaseType) bool {
	return t == CaseTypeService || t == CaseTypeComplaint
}

// CanTransition reports whether a status change is permitted. The lifecycle
// is forward-only: submitted < review < progress < resolved, skips allowed.
// Backward moves are never permitted here; resolved cases go back to review
// only through the explicit reopen operation.
func CanTransition(current, next CaseStatus) bool {
	from, ok := statusRank[current]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

var referencePattern = regexp.MustCompile(`^JAB-(CMP-)?\d{4}-\d{5,6}$`)

// NormalizeReference upper-cases and trims a citizen-supplied reference.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// ValidReference reports whether a normalized reference matches the
// JAB-YYYY-NNNNNN / JAB-CMP-YYYY-NNNNN numbering scheme.
func ValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}
