package actions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkleber/kaltrack/internal/models"
)

// Action lifecycle states.
const (
	StatusPending   = "pending"
	StatusExecuting = "executing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

var (
	// ErrNotFound means no action with the given ID is tracked.
	ErrNotFound = errors.New("action not found")
	// ErrNotPending means the action already left the pending state.
	ErrNotPending = errors.New("action is not pending")
)

// Settled actions linger briefly so the client can show the outcome,
// then the sweeper drops them.
const (
	completedGrace = 3 * time.Second
	rejectedGrace  = 2 * time.Second
)

// Pending is one confirmable action and its lifecycle state.
type Pending struct {
	ID        string             `json:"id"`
	Draft     models.ActionDraft `json:"draft"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	SettledAt time.Time          `json:"settled_at,omitempty"`
}

// Ledger is the storage surface action execution writes to.
type Ledger interface {
	AddMeal(ctx context.Context, date string, meal models.MealEntry) error
	AddWater(ctx context.Context, date string, liters float64) error
	DeleteMeal(ctx context.Context, date, mealID string) error
	UpdateMeal(ctx context.Context, date, mealID, mealName string, upd models.MealUpdate) error
	ClearDay(ctx context.Context, date string) error
	UpdateNote(ctx context.Context, date, note, mood string) error
	TrackWeight(ctx context.Context, date string, weight float64) error
	SaveProfile(ctx context.Context, p models.Profile) error
}

// Manager tracks pending actions and executes confirmed ones strictly in
// the order they were added. A single mutex covers both bookkeeping and
// execution, so two confirmed actions touching the same date never
// interleave their ledger writes.
type Manager struct {
	mu      sync.Mutex
	ledger  Ledger
	actions map[string]*Pending
	order   []string
	now     func() time.Time
}

// NewManager creates a manager writing through the given ledger.
func NewManager(ledger Ledger) *Manager {
	return &Manager{
		ledger:  ledger,
		actions: make(map[string]*Pending),
		now:     time.Now,
	}
}

// Add registers drafts as pending actions and returns them in input order.
func (m *Manager) Add(drafts []models.ActionDraft) []Pending {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := make([]Pending, 0, len(drafts))
	for _, d := range drafts {
		p := &Pending{
			ID:        uuid.NewString(),
			Draft:     d,
			Status:    StatusPending,
			CreatedAt: m.now(),
		}
		m.actions[p.ID] = p
		m.order = append(m.order, p.ID)
		added = append(added, *p)
	}
	return added
}

// Get returns a snapshot of one action.
func (m *Manager) Get(id string) (Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.actions[id]
	if !ok {
		return Pending{}, ErrNotFound
	}
	return *p, nil
}

// List returns snapshots of all tracked actions in insertion order.
func (m *Manager) List() []Pending {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Pending, 0, len(m.order))
	for _, id := range m.order {
		if p, ok := m.actions[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Confirm executes one pending action against the ledger. The action ends
// up completed or failed; either way it is settled and will be swept.
func (m *Manager) Confirm(ctx context.Context, id string) (Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.actions[id]
	if !ok {
		return Pending{}, ErrNotFound
	}
	if p.Status != StatusPending {
		return *p, fmt.Errorf("%w: %s is %s", ErrNotPending, id, p.Status)
	}

	m.executeLocked(ctx, p)
	return *p, nil
}

// Reject marks one pending action as rejected without touching the ledger.
func (m *Manager) Reject(id string) (Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.actions[id]
	if !ok {
		return Pending{}, ErrNotFound
	}
	if p.Status != StatusPending {
		return *p, fmt.Errorf("%w: %s is %s", ErrNotPending, id, p.Status)
	}

	p.Status = StatusRejected
	p.SettledAt = m.now()
	return *p, nil
}

// ConfirmAll executes every pending action sequentially in insertion
// order. A failing action is marked failed and does not stop the rest.
func (m *Manager) ConfirmAll(ctx context.Context) []Pending {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Pending, 0, len(m.order))
	for _, id := range m.order {
		p, ok := m.actions[id]
		if !ok || p.Status != StatusPending {
			continue
		}
		m.executeLocked(ctx, p)
		out = append(out, *p)
	}
	return out
}

// RejectAll rejects every pending action.
func (m *Manager) RejectAll() []Pending {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Pending, 0, len(m.order))
	for _, id := range m.order {
		p, ok := m.actions[id]
		if !ok || p.Status != StatusPending {
			continue
		}
		p.Status = StatusRejected
		p.SettledAt = m.now()
		out = append(out, *p)
	}
	return out
}

// Reset drops all tracked actions, settled or not. Used on session reset.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = make(map[string]*Pending)
	m.order = nil
}

// Sweep removes settled actions whose grace period has elapsed and
// returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	kept := m.order[:0]
	for _, id := range m.order {
		p, ok := m.actions[id]
		if !ok {
			continue
		}
		if expired(p, now) {
			delete(m.actions, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed
}

func expired(p *Pending, now time.Time) bool {
	if p.SettledAt.IsZero() {
		return false
	}
	grace := completedGrace
	if p.Status == StatusRejected {
		grace = rejectedGrace
	}
	return now.Sub(p.SettledAt) >= grace
}

func (m *Manager) executeLocked(ctx context.Context, p *Pending) {
	p.Status = StatusExecuting
	if err := execute(ctx, m.ledger, p.Draft, m.now); err != nil {
		p.Status = StatusFailed
		p.Error = err.Error()
	} else {
		p.Status = StatusCompleted
	}
	p.SettledAt = m.now()
}
