package deck

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abelbrown/cardpool/internal/card"
)

// wireEntry is one element of the stored deck string.
type wireEntry struct {
	Card     card.Card `json:"card_type"`
	Quantity int       `json:"quantity"`
}

// Encode renders entries in the stored deck format: a JSON array of
// {"card_type": Card, "quantity": n}.
func Encode(entries []Entry) (string, error) {
	wire := make([]wireEntry, len(entries))
	for i, e := range entries {
		wire[i] = wireEntry{Card: e.Card, Quantity: e.Quantity}
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode deck: %w", err)
	}
	return string(b), nil
}

// Decode parses a stored deck. Entries without an id or with a
// non-positive quantity are dropped and repeated ids are merged. An empty
// string decodes to an empty deck.
func Decode(s string) ([]Entry, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}
	var wire []wireEntry
	if err := json.Unmarshal([]byte(s), &wire); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}

	var out []Entry
	index := make(map[string]int, len(wire))
	for _, w := range wire {
		if w.Card.ID == "" || w.Quantity <= 0 {
			continue
		}
		if i, ok := index[w.Card.ID]; ok {
			out[i].Quantity += w.Quantity
			continue
		}
		index[w.Card.ID] = len(out)
		out = append(out, Entry{Card: w.Card, Quantity: w.Quantity})
	}
	return out, nil
}
