// Package pool owns the bounded set of candidate cards shown to the user.
//
// The Reconciler is not safe for concurrent use. It is owned by the UI
// model's Update loop; fetches run elsewhere and come back as Results.
package pool

import (
	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/strategy"
)

// State is the reconciler's coarse lifecycle.
type State int

const (
	Idle State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Mode says how a result is merged into the pool.
type Mode int

const (
	// ModeReplace swaps the pool wholesale.
	ModeReplace Mode = iota
	// ModeFill appends to the existing pool.
	ModeFill
)

func (m Mode) String() string {
	if m == ModeFill {
		return "fill"
	}
	return "replace"
}

// Params carries the session state a request is built from.
type Params struct {
	Signals strategy.Signals
	Seeds   []string // deck card ids, insertion order
}

// Request describes one fetch. Gen identifies it; only the result of the
// most recently issued request is ever applied. Count is the number of new
// cards wanted; Exclude lists cards already in the pool, which Dispatch
// over-requests by and filters out.
type Request struct {
	Gen              uint64
	Mode             Mode
	Strategy         strategy.Strategy
	UserID           string
	Count            int
	Seeds            []string
	Exclude          []string // ids on screen when a fill was issued
	Filter           strategy.Filter
	DeckSize         int
	InteractionCount int
}

// Result is the settled outcome of a Request.
type Result struct {
	Gen      uint64
	Strategy strategy.Strategy
	Cards    []card.Card
	Total    int
	Err      error
}

// merge appends fetched to existing, skipping ids already present (in
// existing or earlier in fetched), and stops at capacity. Existing cards
// always keep their place.
func merge(existing, fetched []card.Card, capacity int) []card.Card {
	out := make([]card.Card, 0, capacity)
	seen := make(map[string]struct{}, capacity)
	add := func(c card.Card) {
		if len(out) >= capacity {
			return
		}
		if _, dup := seen[c.ID]; dup {
			return
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	for _, c := range existing {
		add(c)
	}
	for _, c := range fetched {
		add(c)
	}
	return out
}
