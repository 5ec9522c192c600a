package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/catalog"
	"github.com/abelbrown/cardpool/internal/recsvc"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get(recsvc.PathHealth, s.health)

	s.router.Post(recsvc.PathRandom, s.random)
	s.router.Post(recsvc.PathCardRecommendation, s.cardRecommendation)
	s.router.Post(recsvc.PathUserRecommendation, s.userRecommendation)
	s.router.Post(recsvc.PathSearch, s.search)

	s.router.Post(recsvc.PathAddInteraction, s.addInteraction)
	s.router.Post(recsvc.PathGetInteractions, s.getInteractions)
	s.router.Post(recsvc.PathClearInteractions, s.clearInteractions)

	s.router.Post(recsvc.PathSaveDeck, s.saveDeck)
	s.router.Post(recsvc.PathGetDeck, s.getDeck)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) random(w http.ResponseWriter, r *http.Request) {
	var req recsvc.RandomRequest
	mana, ok := s.decode(w, r, &req, &req.UserID, &req.SelectedMana)
	if !ok {
		return
	}
	s.respondCards(w, func() ([]card.Card, int, error) {
		return s.store.RandomCards(req.PageSize, mana, nil)
	})
}

func (s *Server) cardRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recsvc.CardRecommendationRequest
	mana, ok := s.decode(w, r, &req, &req.UserID, &req.SelectedMana)
	if !ok {
		return
	}
	s.respondCards(w, func() ([]card.Card, int, error) {
		cards, total, err := s.store.SimilarCards(req.CardIDs, req.NumberOfCards, mana)
		if errors.Is(err, catalog.ErrNoSignal) || (err == nil && len(cards) == 0) {
			s.log.Debug("no similar cards, falling back to random", "seeds", len(req.CardIDs))
			return s.store.RandomCards(req.NumberOfCards, mana, req.CardIDs)
		}
		return cards, total, err
	})
}

func (s *Server) userRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recsvc.UserRecommendationRequest
	mana, ok := s.decode(w, r, &req, &req.UserID, &req.SelectedMana)
	if !ok {
		return
	}
	s.respondCards(w, func() ([]card.Card, int, error) {
		cards, total, err := s.store.UserCards(req.UserID, req.NumberOfCards, mana)
		if errors.Is(err, catalog.ErrNoSignal) || (err == nil && len(cards) == 0) {
			s.log.Debug("no user signal, falling back to random", "user", req.UserID)
			return s.store.RandomCards(req.NumberOfCards, mana, nil)
		}
		return cards, total, err
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req recsvc.SearchRequest
	mana, ok := s.decode(w, r, &req, &req.UserID, &req.SelectedMana)
	if !ok {
		return
	}
	mode := req.SearchType
	if mode == "" {
		mode = catalog.SearchRecommended
	}
	if mode != catalog.SearchRecommended && mode != catalog.SearchHybrid {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown searchType %q", req.SearchType))
		return
	}
	influence := catalog.InfluenceFactor(req.NumberOfInteractions, req.NumberOfDeck)
	s.respondCards(w, func() ([]card.Card, int, error) {
		return s.store.SearchCards(req.UserID, req.Query, req.NumberOfCards, mana, mode, influence)
	})
}

func (s *Server) addInteraction(w http.ResponseWriter, r *http.Request) {
	var req recsvc.AddInteractionRequest
	if _, ok := s.decode(w, r, &req, &req.UserID, nil); !ok {
		return
	}
	if req.CardID == "" {
		writeError(w, http.StatusBadRequest, errors.New("cardId is required"))
		return
	}
	if err := s.store.AddInteraction(req.UserID, req.CardID, req.Interaction, req.Weight); err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInteractions(w http.ResponseWriter, r *http.Request) {
	var req recsvc.UserRequest
	if _, ok := s.decode(w, r, &req, &req.UserID, nil); !ok {
		return
	}
	list, err := s.store.Interactions(req.UserID)
	if err != nil {
		s.internal(w, err)
		return
	}
	out := make([]recsvc.Interaction, len(list))
	for i, it := range list {
		out[i] = recsvc.Interaction{
			ItemID:   it.CardID,
			Name:     it.Name,
			ImageURI: it.ImageURI,
			Action:   it.Action,
			Weight:   it.Weight,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) clearInteractions(w http.ResponseWriter, r *http.Request) {
	var req recsvc.UserRequest
	if _, ok := s.decode(w, r, &req, &req.UserID, nil); !ok {
		return
	}
	if err := s.store.ClearInteractions(req.UserID); err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) saveDeck(w http.ResponseWriter, r *http.Request) {
	var req recsvc.SaveDeckRequest
	if _, ok := s.decode(w, r, &req, &req.UserID, nil); !ok {
		return
	}
	if !json.Valid([]byte(req.DeckString)) {
		writeError(w, http.StatusBadRequest, errors.New("deck_string is not valid JSON"))
		return
	}
	if err := s.store.SaveDeck(req.UserID, req.DeckString); err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getDeck(w http.ResponseWriter, r *http.Request) {
	var req recsvc.UserRequest
	if _, ok := s.decode(w, r, &req, &req.UserID, nil); !ok {
		return
	}
	deck, ok, err := s.store.Deck(req.UserID)
	if err != nil {
		s.internal(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// decode parses the JSON body into v, checks the user id, creates the user
// row on first touch and parses the mana filter when one is given. It writes the error response itself and
// reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, userID *string, mana *[]string) (card.ColorSet, bool) {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return 0, false
	}
	if *userID == "" {
		writeError(w, http.StatusBadRequest, errors.New("userId is required"))
		return 0, false
	}
	if err := s.store.EnsureUser(*userID); err != nil {
		s.internal(w, err)
		return 0, false
	}
	if mana == nil {
		return 0, true
	}
	set, err := card.ParseColorSet(*mana)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return set, true
}

func (s *Server) respondCards(w http.ResponseWriter, query func() ([]card.Card, int, error)) {
	cards, total, err := query()
	if err != nil {
		s.internal(w, err)
		return
	}
	if cards == nil {
		cards = []card.Card{}
	}
	writeJSON(w, http.StatusOK, recsvc.CardsResponse{Cards: cards, Total: total})
}

func (s *Server) internal(w http.ResponseWriter, err error) {
	s.log.Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
