package pool

import (
	"context"
	"errors"
	"testing"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/strategy"
	"github.com/google/go-cmp/cmp"
)

type call struct {
	op       string
	userID   string
	n        int
	seeds    []string
	query    string
	inter    int
	deckSize int
	mana     string
}

type fakeSource struct {
	calls []call
	err   error
}

func (f *fakeSource) reply() ([]card.Card, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return cards("r1"), 42, nil
}

func (f *fakeSource) Random(_ context.Context, userID string, n int, mana card.ColorSet) ([]card.Card, int, error) {
	f.calls = append(f.calls, call{op: "random", userID: userID, n: n, mana: mana.String()})
	return f.reply()
}

func (f *fakeSource) DeckSimilarity(_ context.Context, userID string, n int, seeds []string, mana card.ColorSet) ([]card.Card, int, error) {
	f.calls = append(f.calls, call{op: "deck", userID: userID, n: n, seeds: seeds, mana: mana.String()})
	return f.reply()
}

func (f *fakeSource) UserHistory(_ context.Context, userID string, n int, mana card.ColorSet) ([]card.Card, int, error) {
	f.calls = append(f.calls, call{op: "history", userID: userID, n: n, mana: mana.String()})
	return f.reply()
}

func (f *fakeSource) Search(_ context.Context, userID, query string, n, interactions, deckSize int, mana card.ColorSet) ([]card.Card, int, error) {
	f.calls = append(f.calls, call{op: "search", userID: userID, n: n, query: query, inter: interactions, deckSize: deckSize, mana: mana.String()})
	return f.reply()
}

func TestDispatchRoutesEachStrategy(t *testing.T) {
	mana := card.NewColorSet(card.Blue, card.Green)
	tests := []struct {
		req  Request
		want call
	}{
		{
			Request{Gen: 1, Strategy: strategy.Random, UserID: "u", Count: 6, Filter: strategy.Filter{Mana: mana}},
			call{op: "random", userID: "u", n: 6, mana: "UG"},
		},
		{
			Request{Gen: 2, Strategy: strategy.DeckSimilarity, UserID: "u", Count: 2, Seeds: []string{"a", "b"}},
			call{op: "deck", userID: "u", n: 2, seeds: []string{"a", "b"}},
		},
		{
			Request{Gen: 3, Strategy: strategy.UserHistory, UserID: "u", Count: 1},
			call{op: "history", userID: "u", n: 1},
		},
		{
			Request{Gen: 4, Strategy: strategy.TextSearch, UserID: "u", Count: 6, DeckSize: 5, InteractionCount: 20, Filter: strategy.Filter{Query: "goblin", Mana: mana}},
			call{op: "search", userID: "u", n: 6, query: "goblin", inter: 20, deckSize: 5, mana: "UG"},
		},
	}
	for _, tt := range tests {
		src := &fakeSource{}
		res := Dispatch(context.Background(), src, tt.req)
		if res.Err != nil {
			t.Fatalf("%s: unexpected error %v", tt.req.Strategy, res.Err)
		}
		if res.Gen != tt.req.Gen || res.Total != 42 || res.Strategy != tt.req.Strategy {
			t.Errorf("%s: result %+v does not echo the request", tt.req.Strategy, res)
		}
		if len(src.calls) != 1 {
			t.Fatalf("%s: expected exactly one call, got %d", tt.req.Strategy, len(src.calls))
		}
		if diff := cmp.Diff(tt.want, src.calls[0], cmp.AllowUnexported(call{})); diff != "" {
			t.Errorf("%s: call mismatch (-want +got):\n%s", tt.req.Strategy, diff)
		}
	}
}

func TestDispatchWrapsErrors(t *testing.T) {
	sentinel := errors.New("connection refused")
	res := Dispatch(context.Background(), &fakeSource{err: sentinel}, Request{Gen: 7, Mode: ModeFill, Strategy: strategy.Random})
	if !errors.Is(res.Err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", res.Err)
	}
	if res.Gen != 7 {
		t.Errorf("Gen = %d, want 7", res.Gen)
	}
}

func TestDispatchUnknownStrategy(t *testing.T) {
	src := &fakeSource{}
	res := Dispatch(context.Background(), src, Request{Strategy: strategy.Strategy(99)})
	if res.Err == nil {
		t.Error("unknown strategy should fail")
	}
	if len(src.calls) != 0 {
		t.Error("no source call expected")
	}
}

// rankedSource always answers from the same ranking, skipping seeds, like a
// deterministic similarity service.
type rankedSource struct {
	fakeSource
	ranking []card.Card
	asked   []int
}

func (r *rankedSource) DeckSimilarity(_ context.Context, _ string, n int, seeds []string, _ card.ColorSet) ([]card.Card, int, error) {
	r.asked = append(r.asked, n)
	skip := map[string]bool{}
	for _, id := range seeds {
		skip[id] = true
	}
	var out []card.Card
	for _, c := range r.ranking {
		if len(out) == n {
			break
		}
		if !skip[c.ID] {
			out = append(out, c)
		}
	}
	return out, len(r.ranking), nil
}

func TestFillSkipsCardsAlreadyOnScreen(t *testing.T) {
	src := &rankedSource{ranking: numbered("c", 12)}
	r := New(6, "u")
	ctx := context.Background()
	p := Params{Signals: strategy.Signals{DeckSize: 1}, Seeds: []string{"seed"}}

	r.Apply(Dispatch(ctx, src, r.Replace(strategy.DeckSimilarity, p)))
	if r.Len() != 6 {
		t.Fatalf("Len() after replace = %d, want 6", r.Len())
	}

	for round := 0; round < 3; round++ {
		kept := r.Cards()[0]
		r.Keep(kept.ID)
		p.Seeds = append(p.Seeds, kept.ID)
		p.Signals.DeckSize++

		req, ok := r.Fill(p)
		if !ok {
			t.Fatal("Fill reported a full pool")
		}
		if req.Count != 1 {
			t.Errorf("fill Count = %d, want 1", req.Count)
		}
		res := Dispatch(ctx, src, req)
		if len(res.Cards) != 1 {
			t.Fatalf("round %d: fill returned %d new cards, want 1", round, len(res.Cards))
		}
		r.Apply(res)
		if r.Len() != 6 {
			t.Fatalf("round %d: Len() = %d, want 6", round, r.Len())
		}
		assertUnique(t, r.Cards())
	}
	if got := src.asked[len(src.asked)-1]; got != 6 {
		t.Errorf("fill asked the service for %d cards, want deficit plus pool size 6", got)
	}
}

func TestDispatchDropsExcludedAndTrims(t *testing.T) {
	src := &rankedSource{ranking: cards("a", "b", "c", "d")}
	res := Dispatch(context.Background(), src, Request{
		Strategy: strategy.DeckSimilarity,
		Count:    1,
		Exclude:  []string{"a", "b"},
	})
	if diff := cmp.Diff([]string{"c"}, card.IDs(res.Cards)); diff != "" {
		t.Errorf("cards mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, src.asked); diff != "" {
		t.Errorf("requested counts mismatch (-want +got):\n%s", diff)
	}
}

func TestFillRequestCarriesPoolIDs(t *testing.T) {
	r := full(t, 3)
	ids := card.IDs(r.Cards())
	r.Discard(ids[1])

	req, ok := r.Fill(Params{})
	if !ok {
		t.Fatal("Fill reported a full pool")
	}
	if diff := cmp.Diff([]string{ids[0], ids[2]}, req.Exclude); diff != "" {
		t.Errorf("Exclude mismatch (-want +got):\n%s", diff)
	}
	if replace := r.Replace(strategy.Random, Params{}); replace.Exclude != nil {
		t.Errorf("replace request excludes %v, want none", replace.Exclude)
	}
}
