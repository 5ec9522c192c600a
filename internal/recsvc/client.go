// Package recsvc is the HTTP client for the card recommendation service.
//
// The client never retries. A failed call returns an error and the caller
// decides whether that means "no change" or "surface it".
package recsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// ErrNoHost is returned by New when no candidate host answers its health
// check. It is fatal for the session.
var ErrNoHost = errors.New("recommendation service not reachable")

// DefaultHosts are probed in order when Options.Hosts is empty.
var DefaultHosts = []string{"http://localhost:8000", "http://127.0.0.1:8000"}

// Options configures a Client.
type Options struct {
	Hosts        []string
	Timeout      time.Duration // per request, default 15s
	ProbeTimeout time.Duration // per health probe, default 2s
	RatePerSec   float64       // default 10
	Burst        int           // default 4
	SearchMode   string        // "recommended" (default) or "hybrid"
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// Client talks to one recommendation service host.
type Client struct {
	host       string
	searchMode string
	client     *http.Client
	limiter    *rate.Limiter
	log        *log.Logger
}

// New probes opts.Hosts in order and binds the client to the first one
// whose health endpoint returns 200. No further hosts are tried after a
// failure to find one.
func New(ctx context.Context, opts Options) (*Client, error) {
	hosts := opts.Hosts
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	c := newClient("", opts)

	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}

	var errs []error
	for _, h := range hosts {
		h = strings.TrimRight(h, "/")
		if err := c.probe(ctx, h, probeTimeout); err != nil {
			c.log.Debug("health probe failed", "host", h, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", h, err))
			continue
		}
		c.host = h
		c.log.Info("recommendation service found", "host", h)
		return c, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoHost, errors.Join(errs...))
}

// NewWithHost binds a client to host without probing.
func NewWithHost(host string, opts Options) *Client {
	return newClient(strings.TrimRight(host, "/"), opts)
}

func newClient(host string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := opts.RatePerSec
	if rps <= 0 {
		rps = 10
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 4
	}
	mode := opts.SearchMode
	if mode == "" {
		mode = SearchRecommended
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		host:       host,
		searchMode: mode,
		client:     hc,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		log:        logger,
	}
}

// Host returns the bound base URL.
func (c *Client) Host() string { return c.host }

func (c *Client) probe(ctx context.Context, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+PathHealth, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// Random returns n random cards matching mana.
func (c *Client) Random(ctx context.Context, userID string, n int, mana card.ColorSet) ([]card.Card, int, error) {
	return c.cards(ctx, PathRandom, RandomRequest{
		Page:         rand.IntN(MaxRandomPage) + 1,
		PageSize:     n,
		UserID:       userID,
		SelectedMana: mana.Symbols(),
	})
}

// DeckSimilarity returns n cards similar to the seed cards.
func (c *Client) DeckSimilarity(ctx context.Context, userID string, n int, seeds []string, mana card.ColorSet) ([]card.Card, int, error) {
	if seeds == nil {
		seeds = []string{}
	}
	return c.cards(ctx, PathCardRecommendation, CardRecommendationRequest{
		NumberOfCards: n,
		CardIDs:       seeds,
		UserID:        userID,
		SelectedMana:  mana.Symbols(),
	})
}

// UserHistory returns n cards recommended from the user's interactions.
func (c *Client) UserHistory(ctx context.Context, userID string, n int, mana card.ColorSet) ([]card.Card, int, error) {
	return c.cards(ctx, PathUserRecommendation, UserRecommendationRequest{
		NumberOfCards: n,
		UserID:        userID,
		SelectedMana:  mana.Symbols(),
	})
}

// Search runs a text search. interactions and deckSize let the service
// weigh personalization into the ranking.
func (c *Client) Search(ctx context.Context, userID, query string, n, interactions, deckSize int, mana card.ColorSet) ([]card.Card, int, error) {
	return c.cards(ctx, PathSearch, SearchRequest{
		Query:                query,
		UserID:               userID,
		NumberOfCards:        n,
		NumberOfInteractions: interactions,
		NumberOfDeck:         deckSize,
		SearchType:           c.searchMode,
		SelectedMana:         mana.Symbols(),
	})
}

// AddInteraction appends one interaction to the user's log.
func (c *Client) AddInteraction(ctx context.Context, userID, cardID, action string, weight float64) error {
	return c.post(ctx, PathAddInteraction, AddInteractionRequest{
		CardID:      cardID,
		UserID:      userID,
		Interaction: action,
		Weight:      weight,
	}, nil)
}

// Interactions returns the user's interaction log, oldest first.
func (c *Client) Interactions(ctx context.Context, userID string) ([]Interaction, error) {
	var out []Interaction
	if err := c.post(ctx, PathGetInteractions, UserRequest{UserID: userID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearInteractions deletes the user's interaction log.
func (c *Client) ClearInteractions(ctx context.Context, userID string) error {
	return c.post(ctx, PathClearInteractions, UserRequest{UserID: userID}, nil)
}

// SaveDeck stores the encoded deck for the user.
func (c *Client) SaveDeck(ctx context.Context, userID, deckString string) error {
	return c.post(ctx, PathSaveDeck, SaveDeckRequest{DeckString: deckString, UserID: userID}, nil)
}

// LoadDeck returns the stored encoded deck, or "" when the user has none.
func (c *Client) LoadDeck(ctx context.Context, userID string) (string, error) {
	var s *string
	if err := c.post(ctx, PathGetDeck, UserRequest{UserID: userID}, &s); err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

func (c *Client) cards(ctx context.Context, path string, body any) ([]card.Card, int, error) {
	var resp CardsResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Cards, resp.Total, nil
}

// post sends body as JSON and decodes the response into out when out is
// non-nil. Any non-2xx status is an error.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c.host == "" {
		return ErrNoHost
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", path, err)
	}
	c.log.Debug("request", "path", path, "status", resp.StatusCode, "dur", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: parse response: %w", path, err)
	}
	return nil
}
