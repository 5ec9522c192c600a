// Package deck holds the user's deck in memory and persists it in the
// background after every change.
package deck

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/charmbracelet/log"
)

// Entry is a card and how many copies of it the deck holds. Quantity is
// always at least one.
type Entry struct {
	Card     card.Card
	Quantity int
}

// Saver persists an encoded deck.
type Saver interface {
	SaveDeck(ctx context.Context, userID, deckString string) error
}

// Loader fetches an encoded deck. "" means no deck.
type Loader interface {
	LoadDeck(ctx context.Context, userID string) (string, error)
}

// SaveTimeout bounds each background save.
var SaveTimeout = 15 * time.Second

// Deck is safe for concurrent use.
type Deck struct {
	saver  Saver
	userID string
	log    *log.Logger

	mu      sync.RWMutex
	entries []Entry
	version uint64 // bumped on every mutation

	saveMu sync.Mutex
	tried  uint64 // highest version handed to the saver
	wg     sync.WaitGroup

	onSave func(version uint64, err error)
}

// New creates an empty deck that persists through saver. saver may be nil,
// in which case the deck lives in memory only.
func New(saver Saver, userID string, logger *log.Logger) *Deck {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Deck{saver: saver, userID: userID, log: logger}
}

// OnSave registers a hook called after every background save attempt.
// Must be set before the first mutation.
func (d *Deck) OnSave(fn func(version uint64, err error)) {
	d.onSave = fn
}

// Load replaces the contents with the stored deck. A failed or malformed
// load leaves the deck empty; it is not an error for the session.
func (d *Deck) Load(ctx context.Context, loader Loader) {
	var entries []Entry
	raw, err := loader.LoadDeck(ctx, d.userID)
	if err != nil {
		d.log.Warn("load deck failed, starting empty", "err", err)
	} else if entries, err = Decode(raw); err != nil {
		d.log.Warn("stored deck unreadable, starting empty", "err", err)
		entries = nil
	}

	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()
	d.log.Debug("deck loaded", "entries", len(entries))
}

// Add puts one copy of c in the deck.
func (d *Deck) Add(c card.Card) {
	d.mutate(func() bool {
		if i := d.index(c.ID); i >= 0 {
			d.entries[i].Quantity++
			return true
		}
		d.entries = append(d.entries, Entry{Card: c, Quantity: 1})
		return true
	})
}

// Increment adds a copy of a card already in the deck.
func (d *Deck) Increment(id string) bool {
	return d.mutate(func() bool {
		i := d.index(id)
		if i < 0 {
			return false
		}
		d.entries[i].Quantity++
		return true
	})
}

// Decrement removes a copy, dropping the entry when none remain.
func (d *Deck) Decrement(id string) bool {
	return d.mutate(func() bool {
		i := d.index(id)
		if i < 0 {
			return false
		}
		if d.entries[i].Quantity > 1 {
			d.entries[i].Quantity--
			return true
		}
		d.entries = append(d.entries[:i:i], d.entries[i+1:]...)
		return true
	})
}

// Clear empties the deck and persists the empty state.
func (d *Deck) Clear() {
	d.mutate(func() bool {
		d.entries = nil
		return true
	})
}

// mutate applies fn under the lock and, when it changed something,
// schedules a save of the resulting snapshot.
func (d *Deck) mutate(fn func() bool) bool {
	d.mu.Lock()
	if !fn() {
		d.mu.Unlock()
		return false
	}
	d.version++
	version := d.version
	snapshot := make([]Entry, len(d.entries))
	copy(snapshot, d.entries)
	d.mu.Unlock()

	if d.saver != nil {
		d.wg.Add(1)
		go d.save(version, snapshot)
	}
	return true
}

// save writes snapshot unless a newer version has already been handed to
// the saver, whether or not that write succeeded. saveMu serializes writes
// so versions reach the store in order.
func (d *Deck) save(version uint64, snapshot []Entry) {
	defer d.wg.Done()

	d.saveMu.Lock()
	defer d.saveMu.Unlock()
	if version <= d.tried {
		return
	}
	d.tried = version

	s, err := Encode(snapshot)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), SaveTimeout)
		err = d.saver.SaveDeck(ctx, d.userID, s)
		cancel()
	}
	if err != nil {
		d.log.Warn("save deck failed", "version", version, "err", err)
	}
	if d.onSave != nil {
		d.onSave(version, err)
	}
}

// Flush waits for scheduled saves to finish.
func (d *Deck) Flush() {
	d.wg.Wait()
}

func (d *Deck) index(id string) int {
	for i, e := range d.entries {
		if e.Card.ID == id {
			return i
		}
	}
	return -1
}

// Size is the total number of copies.
func (d *Deck) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, e := range d.entries {
		n += e.Quantity
	}
	return n
}

// Len is the number of distinct cards.
func (d *Deck) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// IDs returns the distinct card ids in insertion order.
func (d *Deck) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, len(d.entries))
	for i, e := range d.entries {
		ids[i] = e.Card.ID
	}
	return ids
}

// Entries returns a copy of the deck in insertion order.
func (d *Deck) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Quantity returns how many copies of id the deck holds.
func (d *Deck) Quantity(id string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.index(id); i >= 0 {
		return d.entries[i].Quantity
	}
	return 0
}
