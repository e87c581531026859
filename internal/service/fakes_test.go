package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/events"
	"github.com/jabana-gov/case-service/internal/repository"
)

// fakeCaseRepo is an in-memory CaseRepository with the same CAS semantics as
// the Postgres implementation.
type fakeCaseRepo struct {
	mu    sync.Mutex
	cases map[string]domain.Case
	order []string
	seq   int
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[string]domain.Case)}
}

func (r *fakeCaseRepo) Create(_ context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = fmt.Sprintf("case-%d", r.seq)
	c.Version = 1
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.cases[c.ID] = *c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *fakeCaseRepo) Update(_ context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cases[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != c.Version {
		return repository.ErrVersionConflict
	}
	c.Version++
	c.UpdatedAt = time.Now()
	r.cases[c.ID] = *c
	return nil
}

func (r *fakeCaseRepo) GetByID(_ context.Context, id string) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r *fakeCaseRepo) GetByReference(_ context.Context, reference string) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		c := r.cases[id]
		if strings.EqualFold(c.Reference, reference) {
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCaseRepo) ListWithFilter(_ context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Case
	for _, id := range r.order {
		c := r.cases[id]
		if filter.CitizenID != nil && (c.CitizenID == nil || *c.CitizenID != *filter.CitizenID) {
			continue
		}
		if filter.AssigneeID != nil && (c.AssigneeID == nil || *c.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && c.Priority != *filter.Priority {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.CreatedFrom != nil && c.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && c.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCaseRepo) CountByStatus(_ context.Context) (map[domain.CaseStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.CaseStatus]int)
	for _, c := range r.cases {
		counts[c.Status]++
	}
	return counts, nil
}

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes []domain.CaseNote
	seq   int
}

func (r *fakeNoteRepo) Create(_ context.Context, note *domain.CaseNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	note.ID = fmt.Sprintf("note-%d", r.seq)
	note.CreatedAt = time.Now()
	r.notes = append(r.notes, *note)
	return nil
}

func (r *fakeNoteRepo) ListByCase(_ context.Context, caseID string) ([]domain.CaseNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CaseNote
	for _, n := range r.notes {
		if n.CaseID == caseID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.CaseHistory
	seq     int
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.CaseHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("hist-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByCase(_ context.Context, caseID string) ([]domain.CaseHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CaseHistory
	for _, e := range r.entries {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, nil
}

// failingHistoryRepo refuses every audit write so tests can assert that
// mutations do not succeed silently without their history entry.
type failingHistoryRepo struct {
	fakeHistoryRepo
}

func (r *failingHistoryRepo) Create(context.Context, *domain.CaseHistory) error {
	return errors.New("history insert failed")
}

func (r *fakeHistoryRepo) byType(changeType domain.CaseChangeType) []domain.CaseHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CaseHistory
	for _, e := range r.entries {
		if e.ChangeType == changeType {
			out = append(out, e)
		}
	}
	return out
}

type fakeStaffRepo struct {
	mu      sync.Mutex
	members map[string]domain.StaffMember
}

func newFakeStaffRepo(members ...domain.StaffMember) *fakeStaffRepo {
	r := &fakeStaffRepo{members: make(map[string]domain.StaffMember)}
	for _, m := range members {
		r.members[m.ID] = m
	}
	return r
}

func (r *fakeStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if staff.ID == "" {
		staff.ID = fmt.Sprintf("staff-%d", len(r.members)+1)
	}
	r.members[staff.ID] = *staff
	return nil
}

func (r *fakeStaffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.members[staff.ID] = *staff
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &m, nil
}

func (r *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.Email == email {
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaffRepo) List(_ context.Context, _ repository.StaffFilter) ([]domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StaffMember
	for _, m := range r.members {
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeStaffRepo) ListWithCaseLoad(_ context.Context) ([]domain.StaffCaseLoad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StaffCaseLoad
	for _, m := range r.members {
		out = append(out, domain.StaffCaseLoad{Staff: m})
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
	seq   int
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]repository.PasswordResetToken
	seq    int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]repository.PasswordResetToken)}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	token.ID = fmt.Sprintf("reset-%d", r.seq)
	token.CreatedAt = time.Now()
	r.tokens[token.ID] = *token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == tokenStr {
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil
	}
	now := time.Now()
	t.UsedAt = &now
	r.tokens[id] = t
	return nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	stored    []domain.Notification
	lastLimit int
	seq       int
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = fmt.Sprintf("notif-%d", r.seq)
	n.CreatedAt = time.Now()
	r.stored = append(r.stored, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []domain.Notification
	for _, n := range r.stored {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.stored {
		if n.ID == id && n.UserID == userID {
			if n.ReadAt == nil {
				now := time.Now()
				r.stored[i].ReadAt = &now
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

// fakeReferences returns predictable references.
type fakeReferences struct {
	mu  sync.Mutex
	seq int
}

func (f *fakeReferences) Next(_ context.Context, caseType domain.CaseType) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if caseType == domain.CaseTypeComplaint {
		return fmt.Sprintf("JAB-CMP-2025-%05d", 10000+f.seq), nil
	}
	return fmt.Sprintf("JAB-2025-%06d", 100000+f.seq), nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
