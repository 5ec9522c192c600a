package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/abelbrown/cardpool/internal/card"
	"golang.org/x/sync/errgroup"
)

// scryfallCard is the subset of a Scryfall bulk-data card object we keep.
type scryfallCard struct {
	ID          string `json:"id"`
	OracleID    string `json:"oracle_id"`
	Name        string `json:"name"`
	Lang        string `json:"lang"`
	ReleasedAt  string `json:"released_at"`
	URI         string `json:"uri"`
	ScryfallURI string `json:"scryfall_uri"`
	ImageURIs   struct {
		Normal string `json:"normal"`
	} `json:"image_uris"`
	TypeLine      string   `json:"type_line"`
	OracleText    string   `json:"oracle_text"`
	Colors        []string `json:"colors"`
	ColorIdentity []string `json:"color_identity"`
	Keywords      []string `json:"keywords"`
	ProducedMana  []string `json:"produced_mana"`
	SetName       string   `json:"set_name"`
	Rarity        string   `json:"rarity"`
	Power         string   `json:"power"`
	Toughness     string   `json:"toughness"`
	ManaCost      string   `json:"mana_cost"`
	Loyalty       string   `json:"loyalty"`
	Defense       string   `json:"defense"`
	LifeModifier  string   `json:"life_modifier"`
	HandModifier  string   `json:"hand_modifier"`
	EDHRecRank    float64  `json:"edhrec_rank"`
	CMC           float64  `json:"cmc"`
}

func (s scryfallCard) card() card.Card {
	return card.Card{
		ID:            s.ID,
		OracleID:      s.OracleID,
		Name:          s.Name,
		ReleasedAt:    s.ReleasedAt,
		URI:           s.URI,
		ScryfallURI:   s.ScryfallURI,
		ImageURI:      s.ImageURIs.Normal,
		TypeLine:      s.TypeLine,
		OracleText:    s.OracleText,
		Colors:        s.Colors,
		ColorIdentity: s.ColorIdentity,
		Keywords:      s.Keywords,
		ProducedMana:  s.ProducedMana,
		SetName:       s.SetName,
		Rarity:        s.Rarity,
		Power:         s.Power,
		Toughness:     s.Toughness,
		ManaCost:      s.ManaCost,
		Loyalty:       s.Loyalty,
		Defense:       s.Defense,
		LifeModifier:  s.LifeModifier,
		HandModifier:  s.HandModifier,
		EDHRecRank:    s.EDHRecRank,
		CMC:           s.CMC,
	}
}

// ImportStats summarizes an import run.
type ImportStats struct {
	Read     int // card objects decoded
	Skipped  int // filtered out or duplicate
	Imported int // rows written
}

// importBatchSize is how many cards are written per transaction.
const importBatchSize = 500

// Import loads a Scryfall bulk dump, either JSON Lines or a single JSON
// array. Only English cards with a name and rules text are kept, one per
// distinct (name, rules text) pair. Decoding and writing run
// concurrently.
func (s *Store) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	batches := make(chan []card.Card, 2)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(batches)
		seen := map[string]struct{}{}
		batch := make([]card.Card, 0, importBatchSize)
		emit := func(sc scryfallCard) error {
			stats.Read++
			if sc.Lang != "" && sc.Lang != "en" || sc.ID == "" || sc.Name == "" || sc.OracleText == "" {
				stats.Skipped++
				return nil
			}
			key := sc.Name + "\x00" + sc.OracleText
			if _, dup := seen[key]; dup {
				stats.Skipped++
				return nil
			}
			seen[key] = struct{}{}
			batch = append(batch, sc.card())
			if len(batch) < importBatchSize {
				return nil
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			batch = make([]card.Card, 0, importBatchSize)
			return nil
		}
		if err := decodeDump(r, emit); err != nil {
			return err
		}
		if len(batch) > 0 {
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		for b := range batches {
			n, err := s.SaveCards(b)
			stats.Imported += n
			if err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	return stats, err
}

// decodeDump calls fn for every card object in r.
func decodeDump(r io.Reader, fn func(scryfallCard) error) error {
	br := bufio.NewReaderSize(r, 1<<20)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}

	if first == '[' {
		dec := json.NewDecoder(br)
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("read array start: %w", err)
		}
		for i := 0; dec.More(); i++ {
			var sc scryfallCard
			if err := dec.Decode(&sc); err != nil {
				return fmt.Errorf("decode element %d: %w", i, err)
			}
			if err := fn(sc); err != nil {
				return err
			}
		}
		return nil
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var c scryfallCard
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return fmt.Errorf("decode line %d: %w", line, err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return sc.Err()
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			br.ReadByte()
		default:
			return b[0], nil
		}
	}
}
