package domain

import "time"

// CaseNote is an internal staff annotation on a case. Notes are append-only:
// no edit or delete operation exists anywhere in the service.
type CaseNote struct {
	ID         string
	CaseID     string
	AuthorID   string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
