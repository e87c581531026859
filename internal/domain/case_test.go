package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    CaseStatus
		to      CaseStatus
		allowed bool
	}{
		{"submitted to review", CaseStatusSubmitted, CaseStatusReview, true},
		{"submitted to progress skips review", CaseStatusSubmitted, CaseStatusProgress, true},
		{"submitted to resolved skips ahead", CaseStatusSubmitted, CaseStatusResolved, true},
		{"review to progress", CaseStatusReview, CaseStatusProgress, true},
		{"review to resolved", CaseStatusReview, CaseStatusResolved, true},
		{"progress to resolved", CaseStatusProgress, CaseStatusResolved, true},
		{"review back to submitted", CaseStatusReview, CaseStatusSubmitted, false},
		{"progress back to review", CaseStatusProgress, CaseStatusReview, false},
		{"resolved back to submitted", CaseStatusResolved, CaseStatusSubmitted, false},
		{"resolved back to review without reopen", CaseStatusResolved, CaseStatusReview, false},
		{"same status is not a transition", CaseStatusReview, CaseStatusReview, false},
		{"unknown target", CaseStatusSubmitted, CaseStatus("archived"), false},
		{"unknown source", CaseStatus("draft"), CaseStatusReview, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []CaseStatus{CaseStatusSubmitted, CaseStatusReview, CaseStatusProgress, CaseStatusResolved} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus(CaseStatus("closed")))
	assert.False(t, ValidStatus(CaseStatus("")))
}

func TestValidReference(t *testing.T) {
	tests := []struct {
		ref   string
		valid bool
	}{
		{"JAB-2025-001234", true},
		{"JAB-CMP-2025-00456", true},
		{"JAB-2025-01234", true},
		{"jab-2025-001234", false}, // callers normalize first
		{"JAB-25-001234", false},
		{"JAB-CMP-2025-1", false},
		{"NOPE", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidReference(tt.ref), tt.ref)
	}
}

func TestNormalizeReference(t *testing.T) {
	assert.Equal(t, "JAB-2025-001234", NormalizeReference("  jab-2025-001234 "))
	assert.True(t, ValidReference(NormalizeReference("jab-cmp-2025-00456")))
}
