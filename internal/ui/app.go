package ui

import (
	"errors"
	"fmt"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/deck"
	"github.com/abelbrown/cardpool/internal/ledger"
	"github.com/abelbrown/cardpool/internal/otel"
	"github.com/abelbrown/cardpool/internal/pool"
	"github.com/abelbrown/cardpool/internal/strategy"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// AppConfig holds everything the App needs from the session.
// The App never talks to the network itself; it asks for commands.
type AppConfig struct {
	// Fetch runs a pool request and returns PoolFetched.
	Fetch func(req pool.Request) tea.Cmd
	// Record sends an interaction and returns InteractionRecorded.
	Record func(it ledger.Interaction) tea.Cmd
	// ClearInteractions clears the remote log and returns InteractionsCleared.
	ClearInteractions func() tea.Cmd

	UserID   string
	Capacity int
	Deck     *deck.Deck
	Ledger   *ledger.Ledger
	Events   *otel.Logger // optional
}

// Sidebar views, cycled with tab.
type sidebarView int

const (
	viewInfo sidebarView = iota
	viewDeck
	viewInteractions
	sidebarViews
)

func (v sidebarView) String() string {
	switch v {
	case viewDeck:
		return "Deck"
	case viewInteractions:
		return "Interactions"
	}
	return "Info"
}

// App is the root Bubble Tea model. Remote work runs in commands supplied
// through AppConfig and comes back as messages.
type App struct {
	cfg  AppConfig
	pool *pool.Reconciler

	filter    strategy.Filter
	search    textinput.Model
	searching bool
	spinner   spinner.Model
	keys      keyMap
	help      help.Model

	cursor     int
	sidebar    sidebarView
	deckCursor int
	active     strategy.Strategy

	status string
	err    error
	width  int
	height int
}

// NewApp creates the App. Deck and Ledger must be non-nil.
func NewApp(cfg AppConfig) App {
	ti := textinput.New()
	ti.Placeholder = "name or rules text"
	ti.Prompt = FilterBarPrompt.Render("/ ")
	ti.CharLimit = 120

	s := spinner.New()
	s.Spinner = spinner.Dot

	app := App{
		cfg:     cfg,
		pool:    pool.New(cfg.Capacity, cfg.UserID),
		search:  ti,
		spinner: s,
		keys:    defaultKeys(),
		help:    help.New(),
	}
	if cfg.Deck.Size() > 0 {
		app.sidebar = viewDeck
	}
	app.active = strategy.Fill(app.signals())
	return app
}

// Init issues the initial full replace using the fill decision.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.replace(a.active))
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.searching {
			return a.handleSearchKey(msg)
		}
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case PoolFetched:
		a.applyResult(msg.Result)
		return a, nil

	case InteractionRecorded:
		ev := otel.Event{Kind: otel.KindLedgerRecord, Comp: "ui", CardID: msg.Interaction.CardID, Msg: string(msg.Interaction.Action)}
		if msg.Err != nil {
			ev.Level = otel.LevelWarn
			ev.Err = msg.Err.Error()
		}
		a.cfg.Events.Emit(ev)
		return a, nil

	case InteractionsCleared:
		if msg.Err != nil {
			a.err = msg.Err
			a.cfg.Events.Error(otel.KindLedgerClear, "ui", msg.Err)
			return a, nil
		}
		a.status = "interactions cleared"
		a.cfg.Events.Info(otel.KindLedgerClear, "ui", "cleared")
		return a, nil
	}

	return a, nil
}

func (a *App) applyResult(res pool.Result) {
	ev := otel.Event{Comp: "pool", Gen: res.Gen, Strategy: res.Strategy.String(), Count: len(res.Cards)}
	if !a.pool.Apply(res) {
		ev.Kind = otel.KindPoolStale
		a.cfg.Events.Emit(ev)
		return
	}
	if res.Err != nil {
		a.err = res.Err
		ev.Kind = otel.KindPoolError
		ev.Level = otel.LevelError
		ev.Err = res.Err.Error()
	} else {
		ev.Kind = otel.KindPoolApplied
	}
	a.cfg.Events.Emit(ev)
	a.clampCursor()
}

// handleSearchKey routes keys while the search box has focus.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.searching = false
		a.search.Blur()
		return a, a.clearSearch()
	case "enter":
		a.searching = false
		a.search.Blur()
		a.filter.Query = a.search.Value()
		return a, a.replace(strategy.Fill(a.signals()))
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

// clearSearch leaves search mode. The pool is refetched only when a query
// was actually in effect.
func (a *App) clearSearch() tea.Cmd {
	hadQuery := a.filter.HasQuery()
	a.search.SetValue("")
	a.filter.Query = ""
	if !hadQuery {
		return nil
	}
	return a.replace(strategy.Fill(a.signals()))
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear any existing error on key press
	a.err = nil
	a.status = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Left):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Right):
		if a.cursor < a.pool.Len()-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.Highlight):
		if c, ok := a.current(); ok {
			a.pool.Toggle(c.ID)
		}
		return a, nil

	case key.Matches(msg, a.keys.Keep):
		return a.keep()

	case key.Matches(msg, a.keys.Discard):
		return a.discard()

	case key.Matches(msg, a.keys.Random):
		return a.button(strategy.Random)

	case key.Matches(msg, a.keys.DeckSim):
		return a.button(strategy.DeckSimilarity)

	case key.Matches(msg, a.keys.History):
		return a.button(strategy.UserHistory)

	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.search.SetValue(a.filter.Query)
		return a, a.search.Focus()

	case key.Matches(msg, a.keys.ClearSearch):
		return a, a.clearSearch()

	case key.Matches(msg, a.keys.Mana):
		col, err := card.ParseColor(msg.String())
		if err != nil {
			return a, nil
		}
		a.filter.Mana = a.filter.Mana.Toggle(col)
		return a, a.replace(strategy.Fill(a.signals()))

	case key.Matches(msg, a.keys.Sidebar):
		a.sidebar = (a.sidebar + 1) % sidebarViews
		return a, nil

	case key.Matches(msg, a.keys.Clear):
		return a.clear()
	}

	if a.sidebar == viewDeck {
		return a.handleDeckKey(msg)
	}
	return a, nil
}

// handleDeckKey handles keys that only apply to the deck view.
func (a App) handleDeckKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := a.cfg.Deck.Entries()
	switch {
	case key.Matches(msg, a.keys.DeckDown):
		if a.deckCursor < len(entries)-1 {
			a.deckCursor++
		}
	case key.Matches(msg, a.keys.DeckUp):
		if a.deckCursor > 0 {
			a.deckCursor--
		}
	case key.Matches(msg, a.keys.Inc):
		if a.deckCursor < len(entries) {
			a.cfg.Deck.Increment(entries[a.deckCursor].Card.ID)
			a.emitDeck("increment", entries[a.deckCursor].Card.ID)
		}
	case key.Matches(msg, a.keys.Dec):
		if a.deckCursor < len(entries) {
			a.cfg.Deck.Decrement(entries[a.deckCursor].Card.ID)
			a.emitDeck("decrement", entries[a.deckCursor].Card.ID)
			if n := a.cfg.Deck.Len(); a.deckCursor >= n && n > 0 {
				a.deckCursor = n - 1
			}
		}
	}
	return a, nil
}

// keep moves the cursor card into the deck and tops the pool up using the
// post-add deck and interaction state.
func (a App) keep() (tea.Model, tea.Cmd) {
	c, ok := a.current()
	if !ok {
		return a, nil
	}
	if _, ok := a.pool.Keep(c.ID); !ok {
		return a, nil
	}
	wasEmpty := a.cfg.Deck.Size() == 0
	a.cfg.Deck.Add(c)
	a.emitDeck("add", c.ID)
	if wasEmpty {
		a.sidebar = viewDeck
	}
	it := a.cfg.Ledger.Track(c, ledger.Added)
	a.clampCursor()
	return a, tea.Batch(a.record(it), a.fill())
}

// discard drops the cursor card and tops the pool up.
func (a App) discard() (tea.Model, tea.Cmd) {
	c, ok := a.current()
	if !ok {
		return a, nil
	}
	if _, ok := a.pool.Discard(c.ID); !ok {
		return a, nil
	}
	it := a.cfg.Ledger.Track(c, ledger.Discarded)
	a.clampCursor()
	return a, tea.Batch(a.record(it), a.fill())
}

// button handles the explicit strategy keys.
func (a App) button(s strategy.Strategy) (tea.Model, tea.Cmd) {
	chosen, err := strategy.Replace(s, a.signals())
	if errors.Is(err, strategy.ErrDisabled) {
		a.status = fmt.Sprintf("%s is not available yet", s.Label())
		return a, nil
	}
	return a, a.replace(chosen)
}

// clear empties the deck or the interaction log depending on the view.
func (a App) clear() (tea.Model, tea.Cmd) {
	switch a.sidebar {
	case viewDeck:
		a.cfg.Deck.Clear()
		a.deckCursor = 0
		a.emitDeck("clear", "")
		a.status = "deck cleared"
	case viewInteractions:
		if a.cfg.Ledger.Count() > 0 && a.cfg.ClearInteractions != nil {
			return a, a.cfg.ClearInteractions()
		}
	}
	return a, nil
}

func (a *App) replace(s strategy.Strategy) tea.Cmd {
	a.active = s
	a.cursor = 0
	return a.fetch(a.pool.Replace(s, a.params()))
}

func (a *App) fill() tea.Cmd {
	req, ok := a.pool.Fill(a.params())
	if !ok {
		return nil
	}
	return a.fetch(req)
}

func (a *App) fetch(req pool.Request) tea.Cmd {
	a.cfg.Events.Emit(otel.Event{
		Kind:     otel.KindPoolRequest,
		Comp:     "pool",
		Gen:      req.Gen,
		Strategy: req.Strategy.String(),
		Mode:     req.Mode.String(),
		Count:    req.Count,
		Query:    req.Filter.Query,
	})
	if a.cfg.Fetch == nil {
		return nil
	}
	return a.cfg.Fetch(req)
}

func (a *App) record(it ledger.Interaction) tea.Cmd {
	if a.cfg.Record == nil {
		return nil
	}
	return a.cfg.Record(it)
}

func (a *App) emitDeck(op, cardID string) {
	a.cfg.Events.Emit(otel.Event{Kind: otel.KindDeckChange, Comp: "ui", Msg: op, CardID: cardID, Count: a.cfg.Deck.Size()})
}

func (a App) signals() strategy.Signals {
	return strategy.Signals{
		DeckSize:         a.cfg.Deck.Size(),
		InteractionCount: a.cfg.Ledger.Count(),
		Filter:           a.filter,
	}
}

func (a App) params() pool.Params {
	return pool.Params{Signals: a.signals(), Seeds: a.cfg.Deck.IDs()}
}

func (a App) current() (card.Card, bool) {
	cards := a.pool.Cards()
	if a.cursor < 0 || a.cursor >= len(cards) {
		return card.Card{}, false
	}
	return cards[a.cursor], true
}

func (a *App) clampCursor() {
	if n := a.pool.Len(); a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Cursor returns the pool cursor position (for testing).
func (a App) Cursor() int { return a.cursor }

// Pool returns the current pool cards.
func (a App) Pool() []card.Card { return a.pool.Cards() }

// Loading reports whether the latest pool request is in flight.
func (a App) Loading() bool { return a.pool.Loading() }

// Highlight returns the highlighted card id.
func (a App) Highlight() string { return a.pool.Highlight() }

// Filter returns the active selection filter.
func (a App) Filter() strategy.Filter { return a.filter }

// DeckTotal is the total card quantity in the deck.
func (a App) DeckTotal() int { return a.cfg.Deck.Size() }

// InteractionCount is the cached interaction count.
func (a App) InteractionCount() int { return a.cfg.Ledger.Count() }

// ButtonEnabled reports whether a strategy button is usable right now.
func (a App) ButtonEnabled(s strategy.Strategy) bool {
	return strategy.Enabled(s, a.signals())
}

// Err returns the last error shown to the user.
func (a App) Err() error { return a.err }
