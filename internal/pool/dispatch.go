package pool

import (
	"context"
	"fmt"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/strategy"
)

// Source is the recommendation service as the pool sees it.
type Source interface {
	Random(ctx context.Context, userID string, n int, mana card.ColorSet) ([]card.Card, int, error)
	DeckSimilarity(ctx context.Context, userID string, n int, seeds []string, mana card.ColorSet) ([]card.Card, int, error)
	UserHistory(ctx context.Context, userID string, n int, mana card.ColorSet) ([]card.Card, int, error)
	Search(ctx context.Context, userID, query string, n, interactions, deckSize int, mana card.ColorSet) ([]card.Card, int, error)
}

// Dispatch runs req against src and packages the outcome as a Result.
// The service only excludes seeds, so a fill asks for Count plus the number
// of cards already on screen and drops those it gets back.
func Dispatch(ctx context.Context, src Source, req Request) Result {
	var (
		cards []card.Card
		total int
		err   error
	)
	mana := req.Filter.Mana
	n := req.Count + len(req.Exclude)
	switch req.Strategy {
	case strategy.Random:
		cards, total, err = src.Random(ctx, req.UserID, n, mana)
	case strategy.DeckSimilarity:
		cards, total, err = src.DeckSimilarity(ctx, req.UserID, n, req.Seeds, mana)
	case strategy.UserHistory:
		cards, total, err = src.UserHistory(ctx, req.UserID, n, mana)
	case strategy.TextSearch:
		cards, total, err = src.Search(ctx, req.UserID, req.Filter.Query, n, req.InteractionCount, req.DeckSize, mana)
	default:
		err = fmt.Errorf("unknown strategy %s", req.Strategy)
	}
	if err != nil {
		err = fmt.Errorf("%s %s: %w", req.Mode, req.Strategy, err)
		return Result{Gen: req.Gen, Strategy: req.Strategy, Err: err}
	}
	return Result{Gen: req.Gen, Strategy: req.Strategy, Cards: without(cards, req.Exclude, req.Count), Total: total}
}

// without drops cards whose id is in exclude and keeps at most n.
func without(cards []card.Card, exclude []string, n int) []card.Card {
	if len(exclude) == 0 && len(cards) <= n {
		return cards
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := make([]card.Card, 0, n)
	for _, c := range cards {
		if len(out) == n {
			break
		}
		if _, ok := skip[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
