package recsvc

import "github.com/abelbrown/cardpool/internal/card"

// Endpoint paths. Everything except Health is a JSON POST.
const (
	PathHealth             = "/health"
	PathRandom             = "/cards"
	PathCardRecommendation = "/card_recommendation"
	PathUserRecommendation = "/user_recommendation"
	PathSearch             = "/card_search"
	PathAddInteraction     = "/add_interaction"
	PathGetInteractions    = "/get_interactions"
	PathClearInteractions  = "/delete_all_interactions"
	PathSaveDeck           = "/save_deck"
	PathGetDeck            = "/get_deck"
)

// Search types accepted by /card_search.
const (
	SearchRecommended = "recommended"
	SearchHybrid      = "hybrid"
)

// MaxRandomPage bounds the page number sent with random requests.
const MaxRandomPage = 1000

// RandomRequest is the body of /cards.
type RandomRequest struct {
	Page         int      `json:"page"`
	PageSize     int      `json:"pageSize"`
	UserID       string   `json:"userId"`
	SelectedMana []string `json:"selectedMana"`
}

// CardRecommendationRequest is the body of /card_recommendation.
type CardRecommendationRequest struct {
	NumberOfCards int      `json:"numberOfCards"`
	CardIDs       []string `json:"cardIds"`
	UserID        string   `json:"userId"`
	SelectedMana  []string `json:"selectedMana"`
}

// UserRecommendationRequest is the body of /user_recommendation.
type UserRecommendationRequest struct {
	NumberOfCards int      `json:"numberOfCards"`
	UserID        string   `json:"userId"`
	SelectedMana  []string `json:"selectedMana"`
}

// SearchRequest is the body of /card_search.
type SearchRequest struct {
	Query                string   `json:"query"`
	UserID               string   `json:"userId"`
	NumberOfCards        int      `json:"numberOfCards"`
	NumberOfInteractions int      `json:"numberOfInteractions"`
	NumberOfDeck         int      `json:"numberOfDeck"`
	SearchType           string   `json:"searchType"`
	SelectedMana         []string `json:"selectedMana"`
}

// CardsResponse is returned by the four query endpoints.
type CardsResponse struct {
	Cards []card.Card `json:"cards"`
	Total int         `json:"total"`
}

// AddInteractionRequest is the body of /add_interaction.
type AddInteractionRequest struct {
	CardID      string  `json:"cardId"`
	UserID      string  `json:"userId"`
	Interaction string  `json:"interaction"`
	Weight      float64 `json:"weight"`
}

// UserRequest is the body of the endpoints keyed only by user.
type UserRequest struct {
	UserID string `json:"userId"`
}

// Interaction is one entry of /get_interactions.
type Interaction struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	ImageURI string  `json:"image_uri"`
	Action   string  `json:"interaction_property_name"`
	Weight   float64 `json:"weight"`
}

// SaveDeckRequest is the body of /save_deck.
type SaveDeckRequest struct {
	DeckString string `json:"deck_string"`
	UserID     string `json:"userId"`
}
