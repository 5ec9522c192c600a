// Package ledger keeps the user's keep/discard history and mirrors it to
// the remote interaction store.
package ledger

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/recsvc"
	"github.com/charmbracelet/log"
)

// Action is what the user did with a card.
type Action string

const (
	Added     Action = "added"
	Discarded Action = "discarded"
)

// Fixed interaction weights.
const (
	WeightAdded     = 0.8
	WeightDiscarded = -0.8
)

// Weight returns the fixed weight for an action.
func (a Action) Weight() float64 {
	if a == Added {
		return WeightAdded
	}
	return WeightDiscarded
}

// Interaction is one recorded keep or discard.
type Interaction struct {
	CardID   string
	Name     string
	ImageURI string
	Action   Action
	Weight   float64
}

// Store is the remote interaction log.
type Store interface {
	AddInteraction(ctx context.Context, userID, cardID, action string, weight float64) error
	Interactions(ctx context.Context, userID string) ([]recsvc.Interaction, error)
	ClearInteractions(ctx context.Context, userID string) error
}

// Ledger is a cached view of one user's interactions. It is safe for
// concurrent use.
type Ledger struct {
	store  Store
	userID string
	log    *log.Logger

	mu      sync.RWMutex
	cache   []Interaction
	pending []Interaction // tracked, remote write not settled yet
}

// New creates an empty ledger for userID.
func New(store Store, userID string, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ledger{store: store, userID: userID, log: logger}
}

// Track builds the interaction for action on c and appends it to the
// local cache, so the count reflects it before the remote write lands.
func (l *Ledger) Track(c card.Card, action Action) Interaction {
	it := Interaction{
		CardID:   c.ID,
		Name:     c.Name,
		ImageURI: c.ImageURI,
		Action:   action,
		Weight:   action.Weight(),
	}
	l.mu.Lock()
	l.cache = append(l.cache, it)
	l.pending = append(l.pending, it)
	l.mu.Unlock()
	return it
}

// Record appends it to the remote log. A failure is logged and the
// interaction is lost; the caller is never held up. After a successful
// append the cache is refreshed from the store, keeping interactions whose
// own Record has not settled yet. The returned error is informational only.
func (l *Ledger) Record(ctx context.Context, it Interaction) error {
	if err := l.store.AddInteraction(ctx, l.userID, it.CardID, string(it.Action), it.Weight); err != nil {
		l.log.Warn("record interaction failed", "card", it.CardID, "action", it.Action, "err", err)
		l.mu.Lock()
		l.settle(it)
		l.mu.Unlock()
		return fmt.Errorf("record interaction: %w", err)
	}

	next, err := l.fetch(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settle(it)
	if err != nil {
		l.log.Warn("refresh interactions failed", "err", err)
		return nil
	}
	l.cache = append(next, l.pending...)
	return nil
}

// settle drops one pending copy of it.
// Caller must hold l.mu.
func (l *Ledger) settle(it Interaction) {
	for i, p := range l.pending {
		if p == it {
			l.pending = append(l.pending[:i:i], l.pending[i+1:]...)
			return
		}
	}
}

// List fetches the full remote log, oldest first. Failure degrades to an
// empty list.
func (l *Ledger) List(ctx context.Context) []Interaction {
	out, err := l.fetch(ctx)
	if err != nil {
		l.log.Warn("list interactions failed", "err", err)
		return []Interaction{}
	}
	return out
}

// Refresh replaces the cache with the remote log followed by any tracked
// interactions still in flight. The cache is kept when the store cannot be
// read.
func (l *Ledger) Refresh(ctx context.Context) bool {
	next, err := l.fetch(ctx)
	if err != nil {
		l.log.Warn("refresh interactions failed", "err", err)
		return false
	}
	l.mu.Lock()
	l.cache = append(next, l.pending...)
	l.mu.Unlock()
	return true
}

func (l *Ledger) fetch(ctx context.Context) ([]Interaction, error) {
	remote, err := l.store.Interactions(ctx, l.userID)
	if err != nil {
		return nil, err
	}
	out := make([]Interaction, 0, len(remote))
	for _, r := range remote {
		out = append(out, Interaction{
			CardID:   r.ItemID,
			Name:     r.Name,
			ImageURI: r.ImageURI,
			Action:   Action(r.Action),
			Weight:   r.Weight,
		})
	}
	return out, nil
}

// Clear deletes the remote log. The cache is emptied only when the store
// confirms; otherwise it is left alone and the error is returned.
// Interactions still in flight land after the clear and stay counted.
func (l *Ledger) Clear(ctx context.Context) error {
	if err := l.store.ClearInteractions(ctx, l.userID); err != nil {
		l.log.Error("clear interactions failed", "err", err)
		return fmt.Errorf("clear interactions: %w", err)
	}
	l.mu.Lock()
	l.cache = append([]Interaction(nil), l.pending...)
	l.mu.Unlock()
	return nil
}

// Count returns the number of cached interactions.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

// Interactions returns a copy of the cache, oldest first.
func (l *Ledger) Interactions() []Interaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Interaction, len(l.cache))
	copy(out, l.cache)
	return out
}

// Recent returns the cache newest first.
func (l *Ledger) Recent() []Interaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Interaction, len(l.cache))
	for i, it := range l.cache {
		out[len(out)-1-i] = it
	}
	return out
}
