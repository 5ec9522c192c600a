package catalog

import (
	"database/sql"
	"errors"
)

// Interaction is a stored interaction joined with its card's display
// fields.
type Interaction struct {
	CardID   string
	Name     string
	ImageURI string
	Action   string
	Weight   float64
}

// EnsureUser creates the user row on first touch.
// Thread-safe: acquires write lock.
func (s *Store) EnsureUser(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureUser(userID)
}

// ensureUser is the lock-free body of EnsureUser.
// Caller must hold s.mu for writing.
func (s *Store) ensureUser(userID string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)", userID, now())
	return err
}

// SaveDeck stores the encoded deck for the user.
// Thread-safe: acquires write lock.
func (s *Store) SaveDeck(userID, deck string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUser(userID); err != nil {
		return err
	}
	_, err := s.db.Exec("UPDATE users SET deck = ? WHERE id = ?", deck, userID)
	return err
}

// Deck returns the stored deck. ok is false when the user has none.
// Thread-safe: acquires read lock.
func (s *Store) Deck(userID string) (deck string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d sql.NullString
	err = s.db.QueryRow("SELECT deck FROM users WHERE id = ?", userID).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d.String, d.Valid, nil
}

// AddInteraction appends to the user's interaction log.
// Thread-safe: acquires write lock.
func (s *Store) AddInteraction(userID, cardID, action string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUser(userID); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"INSERT INTO interactions (user_id, card_id, action, weight, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, cardID, action, weight, now(),
	)
	return err
}

// Interactions returns the user's log, oldest first, with card names and
// images filled in where the card is known.
// Thread-safe: acquires read lock.
func (s *Store) Interactions(userID string) ([]Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT i.card_id, COALESCE(c.name, ''), COALESCE(json_extract(c.data, '$.image_uri'), ''),
			i.action, i.weight
		FROM interactions i
		LEFT JOIN cards c ON c.id = i.card_id
		WHERE i.user_id = ?
		ORDER BY i.seq
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Interaction{}
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.CardID, &it.Name, &it.ImageURI, &it.Action, &it.Weight); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// InteractionCount returns the length of the user's log.
// Thread-safe: acquires read lock.
func (s *Store) InteractionCount(userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM interactions WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// ClearInteractions deletes the user's log.
// Thread-safe: acquires write lock.
func (s *Store) ClearInteractions(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM interactions WHERE user_id = ?", userID)
	return err
}

// weightsByCard sums interaction weights per card for a user.
// Caller must hold s.mu.
func (s *Store) weightsByCard(userID string) (map[string]float64, error) {
	rows, err := s.db.Query("SELECT card_id, SUM(weight) FROM interactions WHERE user_id = ? GROUP BY card_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var id string
		var w float64
		if err := rows.Scan(&id, &w); err != nil {
			return nil, err
		}
		out[id] = w
	}
	return out, rows.Err()
}
