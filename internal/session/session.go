// Package session wires the per-user state that outlives any single view:
// the user id, the service client, the deck and the interaction ledger.
package session

import (
	"context"
	"fmt"

	"github.com/abelbrown/cardpool/internal/config"
	"github.com/abelbrown/cardpool/internal/deck"
	"github.com/abelbrown/cardpool/internal/identity"
	"github.com/abelbrown/cardpool/internal/ledger"
	"github.com/abelbrown/cardpool/internal/logging"
	"github.com/abelbrown/cardpool/internal/recsvc"
	"golang.org/x/sync/errgroup"
)

// Session is the top-level owner of deck and ledger.
type Session struct {
	UserID string
	Client *recsvc.Client
	Deck   *deck.Deck
	Ledger *ledger.Ledger
}

// Open derives the user id, locates the recommendation service and loads
// the deck and interaction history concurrently. Failing to find the
// service is returned as recsvc.ErrNoHost; load failures only degrade to
// empty state.
func Open(ctx context.Context, cfg *config.Config) (*Session, error) {
	userID, err := identity.Derive(cfg.User.ID)
	if err != nil {
		return nil, err
	}

	client, err := recsvc.New(ctx, recsvc.Options{
		Hosts:      cfg.Service.Hosts,
		Timeout:    cfg.Timeout(),
		RatePerSec: cfg.Service.RatePerSec,
		Burst:      cfg.Service.Burst,
		SearchMode: cfg.Service.SearchMode,
		Logger:     logging.WithPrefix("recsvc"),
	})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	s := &Session{
		UserID: userID,
		Client: client,
		Deck:   deck.New(client, userID, logging.WithPrefix("deck")),
		Ledger: ledger.New(client, userID, logging.WithPrefix("ledger")),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Deck.Load(gctx, client)
		return nil
	})
	g.Go(func() error {
		s.Ledger.Refresh(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Info("session opened", "user", userID, "host", client.Host(),
		"deck", s.Deck.Size(), "interactions", s.Ledger.Count())
	return s, nil
}

// Close waits for pending deck saves.
func (s *Session) Close() {
	s.Deck.Flush()
}
