package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/config"
	"github.com/abelbrown/cardpool/internal/ledger"
	"github.com/abelbrown/cardpool/internal/pool"
	"github.com/abelbrown/cardpool/internal/session"
	"github.com/abelbrown/cardpool/internal/strategy"
)

type env struct {
	sess *session.Session
	pool *pool.Reconciler
}

func newEnv(t *testing.T, userID string) *env {
	t.Helper()
	st, err := seedCatalog(":memory:")
	if err != nil {
		t.Fatalf("seedCatalog: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	srv := startService(st)
	t.Cleanup(srv.Close)

	return openEnv(t, srv.URL, userID)
}

func openEnv(t *testing.T, host, userID string) *env {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Service.Hosts = []string{host}
	cfg.Service.RatePerSec = 1000
	cfg.Service.Burst = 100
	cfg.User.ID = userID

	sess, err := session.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(sess.Close)
	return &env{sess: sess, pool: pool.New(cfg.Pool.Capacity, sess.UserID)}
}

func (e *env) params(f strategy.Filter) pool.Params {
	return pool.Params{
		Signals: strategy.Signals{
			DeckSize:         e.sess.Deck.Size(),
			InteractionCount: e.sess.Ledger.Count(),
			Filter:           f,
		},
		Seeds: e.sess.Deck.IDs(),
	}
}

func (e *env) run(t *testing.T, req pool.Request) pool.Result {
	t.Helper()
	res := pool.Dispatch(context.Background(), e.sess.Client, req)
	if !e.pool.Apply(res) {
		t.Fatalf("result for gen %d not applied", req.Gen)
	}
	return res
}

func (e *env) keep(t *testing.T, id string) card.Card {
	t.Helper()
	c, ok := e.pool.Keep(id)
	if !ok {
		t.Fatalf("card %q not in pool", id)
	}
	e.sess.Deck.Add(c)
	it := e.sess.Ledger.Track(c, ledger.Added)
	if err := e.sess.Ledger.Record(context.Background(), it); err != nil {
		t.Fatalf("Record: %v", err)
	}
	return c
}

func assertUnique(t *testing.T, cards []card.Card) {
	t.Helper()
	seen := map[string]bool{}
	for _, c := range cards {
		if seen[c.ID] {
			t.Errorf("duplicate card %q in pool", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestBrowseKeepAndRefill(t *testing.T) {
	e := newEnv(t, "e2e-browse")

	req := e.pool.Replace(strategy.Fill(e.params(strategy.Filter{}).Signals), e.params(strategy.Filter{}))
	if req.Strategy != strategy.Random {
		t.Fatalf("fresh user starts with %s, want random", req.Strategy)
	}
	res := e.run(t, req)
	if res.Err != nil {
		t.Fatalf("replace failed: %v", res.Err)
	}
	if e.pool.Len() != 6 {
		t.Fatalf("pool has %d cards, want 6", e.pool.Len())
	}
	if res.Total != len(fixtureCards) {
		t.Errorf("total = %d, want %d", res.Total, len(fixtureCards))
	}

	kept := e.keep(t, e.pool.Cards()[0].ID)
	if e.pool.Len() != 5 {
		t.Fatalf("pool has %d cards after keep, want 5", e.pool.Len())
	}

	fill, ok := e.pool.Fill(e.params(strategy.Filter{}))
	if !ok {
		t.Fatal("Fill reported a full pool")
	}
	if fill.Strategy != strategy.DeckSimilarity {
		t.Errorf("fill strategy = %s, want deck similarity", fill.Strategy)
	}
	if fill.Count != 1 {
		t.Errorf("fill count = %d, want 1", fill.Count)
	}
	if len(fill.Seeds) != 1 || fill.Seeds[0] != kept.ID {
		t.Errorf("fill seeds = %v, want [%s]", fill.Seeds, kept.ID)
	}
	e.run(t, fill)
	assertUnique(t, e.pool.Cards())
	for _, c := range e.pool.Cards() {
		if c.ID == kept.ID {
			t.Errorf("kept card %q came back into the pool", kept.ID)
		}
	}

	if got := e.sess.Ledger.Count(); got != 1 {
		t.Errorf("ledger count = %d, want 1", got)
	}
}

func TestSearchWithManaFilter(t *testing.T) {
	e := newEnv(t, "e2e-search")

	f := strategy.Filter{Query: "destroy", Mana: card.NewColorSet(card.Black)}
	s, err := strategy.Replace(strategy.Random, e.params(f).Signals)
	if err != nil {
		t.Fatalf("strategy.Replace: %v", err)
	}
	if s != strategy.TextSearch {
		t.Fatalf("query did not override button: got %s", s)
	}
	res := e.run(t, e.pool.Replace(s, e.params(f)))
	if res.Err != nil {
		t.Fatalf("search failed: %v", res.Err)
	}
	if e.pool.Len() != 2 {
		t.Fatalf("pool has %d cards, want 2 black destroy spells", e.pool.Len())
	}
	for _, c := range e.pool.Cards() {
		if !c.Identity().Has(card.Black) {
			t.Errorf("card %q does not match the mana filter", c.Name)
		}
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	e := newEnv(t, "e2e-stale")
	p := e.params(strategy.Filter{})

	first := e.pool.Replace(strategy.Random, p)
	second := e.pool.Replace(strategy.Random, p)

	stale := pool.Dispatch(context.Background(), e.sess.Client, first)
	if e.pool.Apply(stale) {
		t.Fatal("stale result applied")
	}
	if !e.pool.Loading() {
		t.Error("stale result cleared the loading state")
	}
	e.run(t, second)
	if e.pool.Len() != 6 {
		t.Errorf("pool has %d cards, want 6", e.pool.Len())
	}
}

func TestHistoryUnlocksAfterInteractions(t *testing.T) {
	e := newEnv(t, "e2e-history")
	e.run(t, e.pool.Replace(strategy.Random, e.params(strategy.Filter{})))

	if strategy.Enabled(strategy.UserHistory, e.params(strategy.Filter{}).Signals) {
		t.Fatal("history enabled with no interactions")
	}

	ctx := context.Background()
	for _, c := range fixtureCards[:6] {
		it := e.sess.Ledger.Track(c, ledger.Discarded)
		if err := e.sess.Ledger.Record(ctx, it); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	sig := e.params(strategy.Filter{}).Signals
	if !strategy.Enabled(strategy.UserHistory, sig) {
		t.Fatalf("history disabled after %d interactions", sig.InteractionCount)
	}
	if strategy.Fill(sig) == strategy.UserHistory {
		t.Error("fill switched to history below its threshold")
	}

	res := e.run(t, e.pool.Replace(strategy.UserHistory, e.params(strategy.Filter{})))
	if res.Err != nil {
		t.Fatalf("history replace failed: %v", res.Err)
	}
	if e.pool.Len() == 0 {
		t.Error("history replace returned no cards")
	}

	if err := e.sess.Ledger.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := len(e.sess.Ledger.List(ctx)); got != 0 {
		t.Errorf("remote log has %d entries after clear", got)
	}
}

func TestDeckSurvivesReopen(t *testing.T) {
	st, err := seedCatalog(":memory:")
	if err != nil {
		t.Fatalf("seedCatalog: %v", err)
	}
	defer st.Close()
	srv := startService(st)
	defer srv.Close()

	e := openEnv(t, srv.URL, "e2e-reopen")
	e.run(t, e.pool.Replace(strategy.Random, e.params(strategy.Filter{})))
	kept := e.keep(t, e.pool.Cards()[0].ID)
	e.sess.Deck.Increment(kept.ID)
	e.sess.Close()

	deadline := time.Now().Add(2 * time.Second)
	var again *env
	for {
		again = openEnv(t, srv.URL, "e2e-reopen")
		if again.sess.Deck.Quantity(kept.ID) == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if got := again.sess.Deck.Quantity(kept.ID); got != 2 {
		t.Errorf("reopened deck has %d x %s, want 2", got, kept.ID)
	}
	if got := again.sess.Ledger.Count(); got != 1 {
		t.Errorf("reopened ledger has %d interactions, want 1", got)
	}
}
