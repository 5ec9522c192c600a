package pool

import (
	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/strategy"
)

// Reconciler keeps the pool within capacity and free of duplicate ids.
type Reconciler struct {
	capacity int
	userID   string

	cards     []card.Card
	highlight string

	gen   uint64 // last issued generation
	mode  Mode   // mode of the last issued request
	state State
	total int // total reported by the last applied result
}

// New creates an empty reconciler. Capacity below one is raised to one.
func New(capacity int, userID string) *Reconciler {
	if capacity < 1 {
		capacity = 1
	}
	return &Reconciler{capacity: capacity, userID: userID}
}

// Capacity returns the target pool size.
func (r *Reconciler) Capacity() int { return r.capacity }

// Cards returns a copy of the pool in display order.
func (r *Reconciler) Cards() []card.Card {
	out := make([]card.Card, len(r.cards))
	copy(out, r.cards)
	return out
}

// Len returns the number of cards in the pool.
func (r *Reconciler) Len() int { return len(r.cards) }

// Deficit is how many cards a fill would request.
func (r *Reconciler) Deficit() int {
	if d := r.capacity - len(r.cards); d > 0 {
		return d
	}
	return 0
}

func (r *Reconciler) State() State { return r.state }

// Loading reports whether the latest request is still in flight.
func (r *Reconciler) Loading() bool { return r.state == Loading }

// Gen returns the last issued generation.
func (r *Reconciler) Gen() uint64 { return r.gen }

// Total returns the match count reported by the last applied result.
func (r *Reconciler) Total() int { return r.total }

// Highlight returns the highlighted card id, or "" for none.
func (r *Reconciler) Highlight() string { return r.highlight }

// Replace clears the pool and highlight and issues a request for a full
// pool from s.
func (r *Reconciler) Replace(s strategy.Strategy, p Params) Request {
	r.cards = nil
	r.highlight = ""
	return r.issue(ModeReplace, s, r.capacity, p)
}

// Fill issues a request for exactly the current deficit, using the
// router's fill decision. It returns false when the pool is already full.
func (r *Reconciler) Fill(p Params) (Request, bool) {
	n := r.Deficit()
	if n == 0 {
		return Request{}, false
	}
	return r.issue(ModeFill, strategy.Fill(p.Signals), n, p), true
}

func (r *Reconciler) issue(m Mode, s strategy.Strategy, n int, p Params) Request {
	r.gen++
	r.mode = m
	r.state = Loading

	var seeds []string
	if s == strategy.DeckSimilarity && len(p.Seeds) > 0 {
		seeds = append([]string(nil), p.Seeds...)
	}
	var exclude []string
	if m == ModeFill && len(r.cards) > 0 {
		exclude = card.IDs(r.cards)
	}
	return Request{
		Gen:              r.gen,
		Mode:             m,
		Strategy:         s,
		UserID:           r.userID,
		Count:            n,
		Seeds:            seeds,
		Exclude:          exclude,
		Filter:           p.Signals.Filter,
		DeckSize:         p.Signals.DeckSize,
		InteractionCount: p.Signals.InteractionCount,
	}
}

// Apply merges res into the pool if it answers the latest request and
// reports whether it did. Results from superseded requests are dropped
// without touching the loading state.
func (r *Reconciler) Apply(res Result) bool {
	if res.Gen != r.gen || r.state != Loading {
		return false
	}
	r.state = Ready
	if res.Err != nil {
		// Replace already emptied the pool; a failed fill leaves it as is.
		return true
	}
	r.total = res.Total
	if r.mode == ModeReplace {
		r.cards = merge(nil, res.Cards, r.capacity)
	} else {
		r.cards = merge(r.cards, res.Cards, r.capacity)
	}
	return true
}

// Keep removes the card from the pool and clears the highlight.
func (r *Reconciler) Keep(id string) (card.Card, bool) {
	c, ok := r.remove(id)
	if ok {
		r.highlight = ""
	}
	return c, ok
}

// Discard removes the card from the pool. The highlight is cleared only
// when it pointed at the discarded card.
func (r *Reconciler) Discard(id string) (card.Card, bool) {
	c, ok := r.remove(id)
	if ok && r.highlight == id {
		r.highlight = ""
	}
	return c, ok
}

// Toggle highlights id, or clears the highlight when id is already
// highlighted. Ids not in the pool are ignored.
func (r *Reconciler) Toggle(id string) {
	if r.highlight == id {
		r.highlight = ""
		return
	}
	if r.index(id) >= 0 {
		r.highlight = id
	}
}

func (r *Reconciler) index(id string) int {
	for i, c := range r.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *Reconciler) remove(id string) (card.Card, bool) {
	i := r.index(id)
	if i < 0 {
		return card.Card{}, false
	}
	c := r.cards[i]
	r.cards = append(r.cards[:i:i], r.cards[i+1:]...)
	return c, true
}
