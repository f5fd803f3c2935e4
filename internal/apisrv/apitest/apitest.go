// Package apitest holds in-memory fakes of the store interfaces for handler
// tests.
package apitest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
)

// Repo implements dependency.Repository over whatever fakes the test plugs
// in. Calls to stores a test didn't set up panic via the embedded nil
// interface, which is exactly what we want from an unexpected dependency.
type Repo struct {
	dependency.Repository

	SubscribersStore dependency.Subscribers
	ProgramsStore    dependency.Programs
	EventsStore      dependency.Events
	PostsStore       dependency.Posts
	PromosStore      dependency.Promos
	SolutionsStore   dependency.Solutions
	CallbacksStore   dependency.Callbacks
	MailStore        dependency.Mail
	AdminStore       dependency.Admin
}

func (r *Repo) Subscribers() dependency.Subscribers { return r.SubscribersStore }
func (r *Repo) Programs() dependency.Programs       { return r.ProgramsStore }
func (r *Repo) Events() dependency.Events           { return r.EventsStore }
func (r *Repo) Posts() dependency.Posts             { return r.PostsStore }
func (r *Repo) Promos() dependency.Promos           { return r.PromosStore }
func (r *Repo) Solutions() dependency.Solutions     { return r.SolutionsStore }
func (r *Repo) Callbacks() dependency.Callbacks     { return r.CallbacksStore }
func (r *Repo) Mail() dependency.Mail               { return r.MailStore }
func (r *Repo) Admin() dependency.Admin             { return r.AdminStore }

func (r *Repo) Now() time.Time                 { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
func (r *Repo) Ping(ctx context.Context) error { return nil }
func (r *Repo) InTx() bool                     { return false }
func (r *Repo) Close()                         {}

func (r *Repo) Tx(ctx context.Context, f func(context.Context, dependency.Repository) error) error {
	return f(ctx, r)
}

// SubscribersMem is an in-memory dependency.Subscribers good enough to drive
// the REST contract end to end.
type SubscribersMem struct {
	mu     sync.Mutex
	nextID int
	rows   []entity.Subscriber
	now    time.Time
}

func NewSubscribersMem(seed []entity.Subscriber) *SubscribersMem {
	maxID := 0
	for _, s := range seed {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return &SubscribersMem{
		nextID: maxID + 1,
		rows:   append([]entity.Subscriber(nil), seed...),
		now:    time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *SubscribersMem) matching(filters entity.SubscriberFilters) []entity.Subscriber {
	out := make([]entity.Subscriber, 0, len(m.rows))
	for _, s := range m.rows {
		if filters.Search != "" && !strings.Contains(s.Email, strings.ToLower(filters.Search)) {
			continue
		}
		if filters.IsActive != nil && s.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (m *SubscribersMem) ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.SubscriberFilters) ([]entity.Subscriber, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.matching(filters)
	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch sortField {
		case "email":
			less = rows[i].Email < rows[j].Email
		case "id":
			less = rows[i].ID < rows[j].ID
		case "is_active":
			less = !rows[i].IsActive && rows[j].IsActive
		default:
			less = rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		if of == entity.Descending {
			return !less
		}
		return less
	})

	total := len(rows)
	if offset >= len(rows) {
		return []entity.Subscriber{}, total, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return append([]entity.Subscriber(nil), rows[offset:end]...), total, nil
}

func (m *SubscribersMem) GetByID(ctx context.Context, id int) (*entity.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, gerr.ErrNotFound
}

func (m *SubscribersMem) Subscribe(ctx context.Context, email string) (*entity.Subscriber, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.rows {
		if s.Email == email {
			if s.IsActive {
				return nil, false, gerr.ErrAlreadySubscribed
			}
			m.rows[i].IsActive = true
			m.rows[i].CreatedAt = m.now
			out := m.rows[i]
			return &out, true, nil
		}
	}
	sub := entity.Subscriber{
		ID:        m.nextID,
		Email:     email,
		IsActive:  true,
		CreatedAt: m.now,
	}
	m.nextID++
	m.rows = append(m.rows, sub)
	return &sub, false, nil
}

func (m *SubscribersMem) Unsubscribe(ctx context.Context, id int) (*entity.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.rows {
		if s.ID == id {
			if !s.IsActive {
				return nil, gerr.ErrAlreadyUnsubscribed
			}
			m.rows[i].IsActive = false
			out := m.rows[i]
			return &out, nil
		}
	}
	return nil, gerr.ErrNotFound
}

func (m *SubscribersMem) Update(ctx context.Context, id int, upd entity.SubscriberUpdate) (*entity.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, s := range m.rows {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, gerr.ErrNotFound
	}
	if upd.Email != nil {
		for _, s := range m.rows {
			if s.Email == *upd.Email && s.ID != id {
				return nil, gerr.ErrEmailTaken
			}
		}
		m.rows[idx].Email = *upd.Email
	}
	if upd.IsActive != nil {
		m.rows[idx].IsActive = *upd.IsActive
	}
	out := m.rows[idx]
	return &out, nil
}

func (m *SubscribersMem) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.rows {
		if s.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return gerr.ErrNotFound
}

func (m *SubscribersMem) GetActive(ctx context.Context) ([]entity.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Subscriber{}
	for _, s := range m.rows {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

// MailerMock records the notification calls the handlers make.
type MailerMock struct {
	mu            sync.Mutex
	Subscriptions []string
	Registrations []string
	Orders        []string
	Newsletters   []string
}

func (m *MailerMock) SendNewSubscriber(ctx context.Context, rep dependency.Repository, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subscriptions = append(m.Subscriptions, to)
	return nil
}

func (m *MailerMock) SendEventRegistration(ctx context.Context, rep dependency.Repository, to, eventTitle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Registrations = append(m.Registrations, to)
	return nil
}

func (m *MailerMock) SendOrderReceived(ctx context.Context, rep dependency.Repository, to, solutionTitle, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, to)
	return nil
}

func (m *MailerMock) SendNewsletter(ctx context.Context, rep dependency.Repository, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Newsletters = append(m.Newsletters, to)
	return nil
}

func (m *MailerMock) Start(ctx context.Context) error { return nil }
func (m *MailerMock) Stop() error                     { return nil }
