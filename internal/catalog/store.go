// Package catalog provides SQLite persistence for the development
// recommendation service: cards, users, decks and interactions.
package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abelbrown/cardpool/internal/card"
	_ "modernc.org/sqlite"
)

// ErrNoSignal is returned by recommendation queries that have nothing to
// work from (no seeds, no positive interactions).
var ErrNoSignal = errors.New("not enough signal to recommend")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		// Each connection to :memory: is its own database, so keep exactly one.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		oracle_text TEXT NOT NULL DEFAULT '',
		type_line TEXT NOT NULL DEFAULT '',
		identity INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cards_identity ON cards(identity);
	CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		deck TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		action TEXT NOT NULL,
		weight REAL NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id, seq);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveCards upserts cards, returning how many rows were written.
// Thread-safe: acquires write lock.
func (s *Store) SaveCards(cards []card.Card) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(cards) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cards (id, name, oracle_text, type_line, identity, data)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			oracle_text = excluded.oracle_text,
			type_line = excluded.type_line,
			identity = excluded.identity,
			data = excluded.data
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, c := range cards {
		data, err := json.Marshal(c)
		if err != nil {
			return n, fmt.Errorf("marshal card %s: %w", c.ID, err)
		}
		if _, err := stmt.Exec(c.ID, c.Name, c.OracleText, c.TypeLine, int(c.Identity()), string(data)); err != nil {
			return n, fmt.Errorf("save card %s: %w", c.ID, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// CardCount returns how many cards satisfy the mana filter.
// Thread-safe: acquires read lock.
func (s *Store) CardCount(mana card.ColorSet) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM cards WHERE identity & ? = ?", int(mana), int(mana)).Scan(&n)
	return n, err
}

// RandomCards returns up to n random cards whose color identity contains
// every color in mana, and the number of cards that matched the filter.
// Thread-safe: acquires read lock.
func (s *Store) RandomCards(n int, mana card.ColorSet, exclude []string) ([]card.Card, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := manaClause(mana)
	where, args = excludeClause(where, args, exclude)

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM cards"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	cards, err := s.queryCards("SELECT data FROM cards"+where+" ORDER BY RANDOM() LIMIT ?", append(args, n)...)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// CardsByID returns the cards with the given ids, in the order given.
// Unknown ids are skipped.
// Thread-safe: acquires read lock.
func (s *Store) CardsByID(ids []string) ([]card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cardsByID(ids)
}

// cardsByID is the lock-free body of CardsByID.
// Caller must hold s.mu.
func (s *Store) cardsByID(ids []string) ([]card.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cards, err := s.queryCards(
		"SELECT data FROM cards WHERE id IN ("+placeholders(len(ids))+")",
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]card.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	out := make([]card.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// queryCards executes a query selecting the data column and decodes it.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryCards(query string, args ...any) ([]card.Card, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []card.Card
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var c card.Card
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, fmt.Errorf("decode card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// manaClause restricts to cards whose identity contains all of mana.
func manaClause(mana card.ColorSet) (string, []any) {
	if mana.Empty() {
		return "", nil
	}
	return " WHERE identity & ? = ?", []any{int(mana), int(mana)}
}

func excludeClause(where string, args []any, exclude []string) (string, []any) {
	if len(exclude) == 0 {
		return where, args
	}
	kw := " WHERE "
	if where != "" {
		kw = " AND "
	}
	return where + kw + "id NOT IN (" + placeholders(len(exclude)) + ")", append(args, stringArgs(exclude)...)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func now() time.Time { return time.Now().UTC() }
