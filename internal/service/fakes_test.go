package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/mail"
	"github.com/aarnav1729/premier-support-hub/internal/numbering"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
)

var fixedNow = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

type fakeMEPRepo struct {
	mu      sync.Mutex
	numbers numbering.Allocator
	tickets map[string]domain.MEPTicket
	failErr error
	// beforeUpdate runs inside UpdateStatus before the status check.
	beforeUpdate func(t *domain.MEPTicket)
}

func newFakeMEPRepo() *fakeMEPRepo {
	return &fakeMEPRepo{numbers: numbering.NewMemoryAllocator(time.UTC), tickets: map[string]domain.MEPTicket{}}
}

func (r *fakeMEPRepo) Create(ctx context.Context, t *domain.MEPTicket) error {
	if r.failErr != nil {
		return r.failErr
	}
	number, err := r.numbers.Next(ctx, nil, domain.KindMEP.Prefix(), fixedNow)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.TicketNumber = number
	t.Kind = domain.KindMEP
	t.CreatedAt = fixedNow
	r.tickets[number] = *t
	return nil
}

func (r *fakeMEPRepo) GetByNumber(_ context.Context, number string) (*domain.MEPTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r *fakeMEPRepo) List(_ context.Context, f repository.TicketFilter) ([]domain.MEPTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.MEPTicket{}
	for _, t := range r.tickets {
		if matches(t.Ticket, f) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeMEPRepo) UpdateStatus(_ context.Context, number string, from, to domain.TicketStatus) (*domain.MEPTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(&t)
		r.tickets[number] = t
	}
	if t.Status != from {
		return nil, repository.ErrStaleStatus
	}
	t.Status = to
	r.tickets[number] = t
	return &t, nil
}

func (r *fakeMEPRepo) UpdateFeedback(_ context.Context, number, feedback string) (*domain.MEPTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.Feedback = null.StringFrom(feedback)
	r.tickets[number] = t
	return &t, nil
}

type fakeVRRepo struct {
	mu      sync.Mutex
	numbers numbering.Allocator
	tickets map[string]domain.VRTicket
}

func newFakeVRRepo() *fakeVRRepo {
	return &fakeVRRepo{numbers: numbering.NewMemoryAllocator(time.UTC), tickets: map[string]domain.VRTicket{}}
}

func (r *fakeVRRepo) Create(ctx context.Context, t *domain.VRTicket) error {
	number, err := r.numbers.Next(ctx, nil, domain.KindVR.Prefix(), fixedNow)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.TicketNumber = number
	t.Kind = domain.KindVR
	t.CreatedAt = fixedNow
	r.tickets[number] = *t
	return nil
}

func (r *fakeVRRepo) GetByNumber(_ context.Context, number string) (*domain.VRTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r *fakeVRRepo) List(_ context.Context, f repository.TicketFilter) ([]domain.VRTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.VRTicket{}
	for _, t := range r.tickets {
		if matches(t.Ticket, f) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeVRRepo) UpdateStatus(_ context.Context, number string, from, to domain.TicketStatus, assignee string) (*domain.VRTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if t.Status != from {
		return nil, repository.ErrStaleStatus
	}
	t.Status = to
	if assignee != "" {
		t.AssigneeEmail = assignee
	}
	r.tickets[number] = t
	return &t, nil
}

func (r *fakeVRRepo) UpdateFeedback(_ context.Context, number, feedback string) (*domain.VRTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.Feedback = null.StringFrom(feedback)
	r.tickets[number] = t
	return &t, nil
}

func (r *fakeVRRepo) UpdateDriver(_ context.Context, number, name, phone string) (*domain.VRTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.DriverName = null.StringFrom(name)
	t.DriverNumber = null.StringFrom(phone)
	r.tickets[number] = t
	return &t, nil
}

func matches(t domain.Ticket, f repository.TicketFilter) bool {
	switch f.Scope {
	case domain.ScopeMine:
		if t.RequesterEmail != f.Email {
			return false
		}
	case domain.ScopeAssigned:
		if t.AssigneeEmail != f.Email {
			return false
		}
	}
	return f.Status == nil || *f.Status == t.Status
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	failErr error
}

func (r *fakeHistoryRepo) Append(_ context.Context, e *domain.HistoryEntry) error {
	if r.failErr != nil {
		return r.failErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.entries) + 1)
	e.CreatedAt = fixedNow.Add(time.Duration(e.ID) * time.Second)
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, number string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.HistoryEntry{}
	for _, e := range r.entries {
		if e.TicketNumber == number {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) forTicket(number string) []domain.HistoryEntry {
	out, _ := r.ListByTicket(context.Background(), number)
	return out
}

type fakeChatRepo struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

func (r *fakeChatRepo) Create(_ context.Context, m *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = int64(len(r.messages) + 1)
	m.CreatedAt = fixedNow
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeChatRepo) ListByTicket(_ context.Context, number string, limit int) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ChatMessage{}
	for _, m := range r.messages {
		if m.TicketNumber == number && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	byID     map[string]domain.Employee
	hods     map[string]string
	upserted []domain.Employee
	failErr  error
}

func newFakeEmployeeRepo(emps ...domain.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{byID: map[string]domain.Employee{}, hods: map[string]string{}}
	for _, e := range emps {
		r.byID[e.EmpID] = e
	}
	return r
}

func (r *fakeEmployeeRepo) FindActiveByEmail(_ context.Context, email string) (*domain.Employee, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, e := range r.byID {
		if e.Active && strings.EqualFold(e.Email, email) {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) FindActiveByID(_ context.Context, id string) (*domain.Employee, error) {
	e, ok := r.byID[id]
	if !ok || !e.Active {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (r *fakeEmployeeRepo) HODFor(_ context.Context, dept, subdept string) (null.String, error) {
	if id, ok := r.hods[dept+"/"+subdept]; ok {
		return null.StringFrom(id), nil
	}
	return null.String{}, nil
}

func (r *fakeEmployeeRepo) UpsertMany(_ context.Context, emps []domain.Employee) error {
	r.upserted = append(r.upserted, emps...)
	return nil
}

type fakeAnalyticsRepo struct {
	failColumn string
}

func (fakeAnalyticsRepo) CountByTable(context.Context) ([]domain.CountRow, error) {
	return []domain.CountRow{{Key: "MEP", Count: 3}, {Key: "VR", Count: 1}}, nil
}

func (fakeAnalyticsRepo) CountByStatus(context.Context) ([]domain.CountRow, error) {
	return []domain.CountRow{{Key: "pending", Count: 4}}, nil
}

func (r fakeAnalyticsRepo) CountMEPBy(_ context.Context, column string) ([]domain.CountRow, error) {
	if column == r.failColumn {
		return nil, errors.New("boom")
	}
	if column == "location" {
		return []domain.CountRow{{Key: "PEPPL", Count: 3}}, nil
	}
	return []domain.CountRow{{Key: "Electrical", Count: 2}, {Key: "Civil", Count: 1}}, nil
}

type recordingDispatcher struct {
	mu       sync.Mutex
	events   []events.Event
	handlers map[events.EventType][]events.EventHandler
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(t events.EventType, h events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers == nil {
		d.handlers = map[events.EventType][]events.EventHandler{}
	}
	d.handlers[t] = append(d.handlers[t], h)
}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type staticRouter map[string]string

func (r staticRouter) MEPMailbox(location string) string {
	if mb, ok := r[strings.ToLower(location)]; ok {
		return mb
	}
	return "mep.default@example.com"
}
