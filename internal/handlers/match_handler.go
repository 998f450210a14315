package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusfound/backend/internal/matching"
	"github.com/campusfound/backend/internal/models"
	"github.com/campusfound/backend/internal/services"
)

// matchCandidateLimit caps how many opposite-type items a single match
// request scans. The scorer is linear per candidate, so this bounds the
// request cost on large campuses.
const matchCandidateLimit = 500

type MatchHandler struct {
	items services.ItemService
}

func NewMatchHandler(items services.ItemService) *MatchHandler {
	return &MatchHandler{items: items}
}

type matchResult struct {
	Item       models.Item     `json:"item"`
	Score      float64         `json:"score"`
	Matches    int             `json:"matches"`
	Type       models.ItemType `json:"type"`
	StatusText string          `json:"status_text"`
}

// FindMatches scores the target report against the opposite category and
// returns the candidates worth showing, best first.
func (h *MatchHandler) FindMatches(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item type must be lost or found"))
		return
	}
	itemID := chi.URLParam(r, "itemId")

	target, err := h.items.GetByID(itemType, itemID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
			return
		}
		log.Printf("[FindMatches] item=%s error=%v", itemID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to find matches"))
		return
	}

	page, err := h.items.List(itemType.Opposite(), &models.ListItemsQuery{Limit: matchCandidateLimit})
	if err != nil {
		log.Printf("[FindMatches] item=%s list error=%v", itemID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to find matches"))
		return
	}

	matches := matching.FindPotentialMatches(*target, page.Items, itemType)

	results := make([]matchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, matchResult{
			Item:       m.Item,
			Score:      m.Score,
			Matches:    m.Matches,
			Type:       m.Type,
			StatusText: matching.MatchStatusText(m.Score),
		})
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(results))
}
