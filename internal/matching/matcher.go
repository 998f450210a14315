package matching

import (
	"sort"

	"github.com/campusfound/backend/internal/models"
)

// Weights for the composite match score. Title similarity dominates; the
// remaining signals are flat bonuses that also bump the raw match counter.
const (
	titleWeight       = 0.40
	categoryBonus     = 0.20
	descriptionWeight = 0.20
	locationBonus     = 0.10
	dateBonus         = 0.10

	matchDateRangeDays = 7

	// A candidate needs either a score above this floor or at least two
	// exact signals; a single weak signal never surfaces.
	scoreFloor    = 0.25
	minRawMatches = 2
)

// Match is one scored candidate from the opposite report category.
type Match struct {
	Item    models.Item     `json:"item"`
	Score   float64         `json:"score"`
	Matches int             `json:"matches"`
	Type    models.ItemType `json:"type"`
}

// FindPotentialMatches scores every candidate against the target and returns
// the candidates worth surfacing, best first. Ties keep input order.
func FindPotentialMatches(target models.Item, candidates []models.Item, targetType models.ItemType) []Match {
	if len(candidates) == 0 {
		return []Match{}
	}

	compareType := targetType.Opposite()
	results := make([]Match, 0, len(candidates))

	for _, item := range candidates {
		score := 0.0
		matches := 0

		score += StringSimilarity(target.Title, item.Title) * titleWeight

		if target.Category == item.Category {
			score += categoryBonus
			matches++
		}

		score += StringSimilarity(target.Description, item.Description) * descriptionWeight

		if target.Location == item.Location {
			score += locationBonus
			matches++
		}

		if DatesInRange(target.Date, item.Date, matchDateRangeDays) {
			score += dateBonus
			matches++
		}

		if score > scoreFloor || matches >= minRawMatches {
			results = append(results, Match{
				Item:    item,
				Score:   score,
				Matches: matches,
				Type:    compareType,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// MatchStatusText maps a score to the label shown next to a candidate.
func MatchStatusText(score float64) string {
	switch {
	case score >= 0.8:
		return "Very High Match"
	case score >= 0.6:
		return "High Match"
	case score >= 0.4:
		return "Moderate Match"
	default:
		return "Possible Match"
	}
}
