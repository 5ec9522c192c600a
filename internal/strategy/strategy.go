// Package strategy decides which recommendation query feeds the pool.
//
// Everything here is a pure function of the caller's signals: deck size,
// interaction count and the active filter. There is no hidden state, so
// the same inputs always produce the same Strategy.
package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abelbrown/cardpool/internal/card"
)

// ErrDisabled is returned by Replace when the requested button is not
// available for the current signals.
var ErrDisabled = errors.New("strategy disabled")

// Strategy is one of the four remote selection algorithms.
type Strategy int

const (
	Random Strategy = iota
	DeckSimilarity
	UserHistory
	TextSearch
)

// Eligibility thresholds. Passive fills switch to user history once the
// count exceeds FillHistoryThreshold; the explicit button unlocks earlier,
// above ButtonHistoryThreshold. Counts 6..10 therefore enable the button
// while fills still use the deck or random.
const (
	FillHistoryThreshold   = 10
	ButtonHistoryThreshold = 5
)

var names = [...]string{
	Random:         "random",
	DeckSimilarity: "deck",
	UserHistory:    "history",
	TextSearch:     "search",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(names) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return names[s]
}

// Label is the human-facing button text.
func (s Strategy) Label() string {
	switch s {
	case Random:
		return "Random"
	case DeckSimilarity:
		return "Deck"
	case UserHistory:
		return "History"
	case TextSearch:
		return "Search"
	}
	return s.String()
}

// Buttons lists the strategies a user can pick directly, in display order.
var Buttons = []Strategy{Random, DeckSimilarity, UserHistory}

// Filter is the active selection filter. The zero value means no query and
// no mana restriction.
type Filter struct {
	Query string
	Mana  card.ColorSet
}

// HasQuery reports whether a non-blank search query is active.
func (f Filter) HasQuery() bool {
	return strings.TrimSpace(f.Query) != ""
}

// Signals is everything the router looks at.
type Signals struct {
	DeckSize         int // sum of quantities
	InteractionCount int
	Filter           Filter
}

// Fill picks the strategy for a replenishment request. First match wins:
// a query always searches, then rich interaction history, then deck
// content, then random sampling.
func Fill(sig Signals) Strategy {
	switch {
	case sig.Filter.HasQuery():
		return TextSearch
	case sig.InteractionCount > FillHistoryThreshold:
		return UserHistory
	case sig.DeckSize > 0:
		return DeckSimilarity
	default:
		return Random
	}
}

// Replace picks the strategy for a full replace triggered by a button.
// An active query still wins; otherwise the button decides, provided it is
// enabled.
func Replace(button Strategy, sig Signals) (Strategy, error) {
	if sig.Filter.HasQuery() {
		return TextSearch, nil
	}
	if !Enabled(button, sig) {
		return button, fmt.Errorf("%w: %s", ErrDisabled, button)
	}
	return button, nil
}

// Enabled reports whether a button may be used with the given signals.
func Enabled(button Strategy, sig Signals) bool {
	switch button {
	case Random:
		return true
	case DeckSimilarity:
		return sig.DeckSize > 0
	case UserHistory:
		return sig.InteractionCount > ButtonHistoryThreshold
	case TextSearch:
		return sig.Filter.HasQuery()
	}
	return false
}
