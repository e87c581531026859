package dto

import (
	"time"

	"github.com/jabana-gov/case-service/internal/domain"
)

// NotificationResponse is one entry of the citizen feed.
type NotificationResponse struct {
	ID            string                  `json:"id"`
	CaseReference string                  `json:"case_reference"`
	Kind          domain.NotificationKind `json:"kind"`
	Title         string                  `json:"title"`
	Body          string                  `json:"body"`
	ReadAt        *time.Time              `json:"read_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// NewNotifications maps feed entries.
func NewNotifications(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:            n.ID,
			CaseReference: n.CaseReference,
			Kind:          n.Kind,
			Title:         n.Title,
			Body:          n.Body,
			ReadAt:        n.ReadAt,
			CreatedAt:     n.CreatedAt,
		})
	}
	return out
}
