// Package card defines the card record shared by the pool, the deck and the
// recommendation service wire format.
package card

// Card is an immutable card record. Identity is by ID only; every other
// field is display metadata and plays no part in selection logic.
type Card struct {
	ID            string   `json:"card_id"`
	OracleID      string   `json:"oracle_id"`
	Name          string   `json:"name"`
	ReleasedAt    string   `json:"released_at"`
	URI           string   `json:"uri"`
	ScryfallURI   string   `json:"scryfall_uri"`
	ImageURI      string   `json:"image_uri"`
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

// Identity returns the card's color identity as a set. Symbols outside
// WUBRG (colorless "C" from some dumps, for instance) are ignored.
func (c Card) Identity() ColorSet {
	var s ColorSet
	for _, sym := range c.ColorIdentity {
		if col, err := ParseColor(sym); err == nil {
			s |= NewColorSet(col)
		}
	}
	return s
}

// IDs returns the ids of cards in order.
func IDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
