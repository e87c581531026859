package domain

import "strings"

// CaseQuery captures the composable list filters shared by the staff views.
// Empty fields pass everything through.
type CaseQuery struct {
	Search   string
	Status   CaseStatus
	Priority CasePriority
	Type     CaseType
}

// Matches reports whether a case satisfies the query. Search is a
// case-insensitive substring match against reference, category and citizen
// name (OR across fields); status, priority and type are exact matches.
// All clauses are ANDed.
func (q CaseQuery) Matches(c Case) bool {
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if q.Priority != "" && c.Priority != q.Priority {
		return false
	}
	if q.Type != "" && c.Type != q.Type {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		if !strings.Contains(strings.ToLower(c.Reference), search) &&
			!strings.Contains(strings.ToLower(c.Category), search) &&
			!strings.Contains(strings.ToLower(c.CitizenName), search) {
			return false
		}
	}
	return true
}

// FilterCases returns the cases matching the query, preserving relative
// order. The input slice is never mutated.
func FilterCases(cases []Case, q CaseQuery) []Case {
	result := make([]Case, 0, len(cases))
	for _, c := range cases {
		if q.Matches(c) {
			result = append(result, c)
		}
	}
	return result
}
