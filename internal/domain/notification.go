package domain

import "time"

// NotificationKind categorizes citizen feed entries.
type NotificationKind string

const (
	NotificationStatusUpdate NotificationKind = "status_update"
	NotificationAssignment   NotificationKind = "assignment"
	NotificationResolution   NotificationKind = "resolution"
	NotificationAnnouncement NotificationKind = "announcement"
)

// Notification is a per-citizen feed entry produced from case events.
type Notification struct {
	ID            string
	UserID        string
	CaseReference string
	Kind          NotificationKind
	Title         string
	Body          string
	ReadAt        *time.Time
	CreatedAt     time.Time
}
