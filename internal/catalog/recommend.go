package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/abelbrown/cardpool/internal/card"
)

// Search types.
const (
	SearchRecommended = "recommended"
	SearchHybrid      = "hybrid"
)

// InfluenceFactor is how much personalization weighs into search ranking:
// (interactions/2 + deck)/100 clamped to [0, 0.8], and zero until the
// user has at least five interactions.
func InfluenceFactor(interactions, deckSize int) float64 {
	if interactions < 5 {
		return 0
	}
	f := (float64(interactions)/2 + float64(deckSize)) / 100
	return min(max(f, 0), 0.8)
}

// SimilarCards returns up to n cards most similar to the seed cards,
// never including a seed. Returns ErrNoSignal when no seed is known.
// Thread-safe: acquires read lock.
func (s *Store) SimilarCards(seeds []string, n int, mana card.ColorSet) ([]card.Card, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seedCards, err := s.cardsByID(seeds)
	if err != nil {
		return nil, 0, err
	}
	if len(seedCards) == 0 {
		return nil, 0, ErrNoSignal
	}

	candidates, err := s.candidates(mana, seeds, "", false)
	if err != nil {
		return nil, 0, err
	}
	pos := tokenSets(seedCards)
	ranked := rank(candidates, func(c card.Card, t tokenSet) float64 {
		return meanSimilarity(t, pos)
	})
	return top(ranked, n), len(candidates), nil
}

// UserCards recommends from the user's interactions: close to what was
// kept, away from what was discarded, excluding anything already seen.
// Returns ErrNoSignal when the user has no positive interactions.
// Thread-safe: acquires read lock.
func (s *Store) UserCards(userID string, n int, mana card.ColorSet) ([]card.Card, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weights, err := s.weightsByCard(userID)
	if err != nil {
		return nil, 0, err
	}
	var liked, disliked, seen []string
	for id, w := range weights {
		seen = append(seen, id)
		switch {
		case w > 0:
			liked = append(liked, id)
		case w < 0:
			disliked = append(disliked, id)
		}
	}
	sort.Strings(liked)
	sort.Strings(disliked)
	sort.Strings(seen)

	likedCards, err := s.cardsByID(liked)
	if err != nil {
		return nil, 0, err
	}
	if len(likedCards) == 0 {
		return nil, 0, ErrNoSignal
	}
	dislikedCards, err := s.cardsByID(disliked)
	if err != nil {
		return nil, 0, err
	}

	candidates, err := s.candidates(mana, seen, "", false)
	if err != nil {
		return nil, 0, err
	}
	pos, neg := tokenSets(likedCards), tokenSets(dislikedCards)
	ranked := rank(candidates, func(c card.Card, t tokenSet) float64 {
		return meanSimilarity(t, pos) - 0.5*meanSimilarity(t, neg)
	})
	return top(ranked, n), len(candidates), nil
}

// SearchCards matches query against card names and rules text (and type
// lines in hybrid mode), blending in similarity to the user's kept cards
// by influence.
// Thread-safe: acquires read lock.
func (s *Store) SearchCards(userID, query string, n int, mana card.ColorSet, mode string, influence float64) ([]card.Card, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, nil
	}
	candidates, err := s.candidates(mana, nil, query, mode == SearchHybrid)
	if err != nil {
		return nil, 0, err
	}

	var pos []tokenSet
	if influence > 0 {
		weights, err := s.weightsByCard(userID)
		if err != nil {
			return nil, 0, err
		}
		var liked []string
		for id, w := range weights {
			if w > 0 {
				liked = append(liked, id)
			}
		}
		sort.Strings(liked)
		likedCards, err := s.cardsByID(liked)
		if err != nil {
			return nil, 0, err
		}
		pos = tokenSets(likedCards)
	}

	q := strings.ToLower(query)
	qTokens := tokenize(query)
	ranked := rank(candidates, func(c card.Card, t tokenSet) float64 {
		text := textScore(c, q, qTokens)
		if len(pos) == 0 {
			return text
		}
		return (1-influence)*text + influence*meanSimilarity(t, pos)
	})
	return top(ranked, n), len(candidates), nil
}

// candidates loads cards matching mana, minus exclude, optionally
// restricted to a LIKE match on query. withType extends the match to type
// lines.
// Caller must hold s.mu.
func (s *Store) candidates(mana card.ColorSet, exclude []string, query string, withType bool) ([]card.Card, error) {
	where, args := manaClause(mana)
	where, args = excludeClause(where, args, exclude)
	if query != "" {
		kw := " WHERE "
		if where != "" {
			kw = " AND "
		}
		like := "%" + strings.ToLower(query) + "%"
		cond := "(LOWER(name) LIKE ? OR LOWER(oracle_text) LIKE ?"
		args = append(args, like, like)
		if withType {
			cond += " OR LOWER(type_line) LIKE ?"
			args = append(args, like)
		}
		where += kw + cond + ")"
	}
	return s.queryCards("SELECT data FROM cards"+where, args...)
}

type scored struct {
	card  card.Card
	score float64
}

func rank(cards []card.Card, score func(card.Card, tokenSet) float64) []scored {
	out := make([]scored, len(cards))
	for i, c := range cards {
		out[i] = scored{card: c, score: score(c, cardTokens(c))}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].card.ID < out[j].card.ID
	})
	return out
}

func top(ranked []scored, n int) []card.Card {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]card.Card, n)
	for i := range out {
		out[i] = ranked[i].card
	}
	return out
}

func textScore(c card.Card, q string, qTokens tokenSet) float64 {
	score := 0.0
	switch {
	case strings.EqualFold(c.Name, q):
		score = 1
	case strings.Contains(strings.ToLower(c.Name), q):
		score = 0.8
	case strings.Contains(strings.ToLower(c.OracleText), q):
		score = 0.5
	default:
		score = 0.3
	}
	if len(qTokens) > 0 {
		score += 0.2 * overlap(qTokens, cardTokens(c))
	}
	return score
}

// tokenSet is a bag of normalized words.
type tokenSet map[string]struct{}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "you": {}, "your": {}, "that": {}, "this": {}, "with": {},
	"for": {}, "from": {}, "into": {}, "its": {}, "each": {}, "any": {}, "may": {},
	"are": {}, "was": {}, "has": {}, "have": {}, "until": {}, "end": {}, "turn": {},
}

func tokenize(s string) tokenSet {
	out := tokenSet{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '/'
	}) {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// cardTokens describes a card for similarity: rules text, type line,
// keywords and color identity.
func cardTokens(c card.Card) tokenSet {
	text := strings.ReplaceAll(c.OracleText, c.Name, "")
	t := tokenize(text + " " + c.TypeLine)
	for _, k := range c.Keywords {
		t["kw:"+strings.ToLower(k)] = struct{}{}
	}
	for _, col := range c.Identity().Colors() {
		t["id:"+string(col)] = struct{}{}
	}
	return t
}

func tokenSets(cards []card.Card) []tokenSet {
	out := make([]tokenSet, len(cards))
	for i, c := range cards {
		out[i] = cardTokens(c)
	}
	return out
}

// jaccard is |a∩b| / |a∪b|.
func jaccard(a, b tokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

// overlap is the fraction of q found in t.
func overlap(q, t tokenSet) float64 {
	if len(q) == 0 {
		return 0
	}
	hit := 0
	for w := range q {
		if _, ok := t[w]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(q))
}

func meanSimilarity(t tokenSet, others []tokenSet) float64 {
	if len(others) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range others {
		sum += jaccard(t, o)
	}
	return sum / float64(len(others))
}
