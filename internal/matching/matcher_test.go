package matching

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusfound/backend/internal/models"
)

func matchTarget() models.Item {
	return models.Item{
		ID:          "lost-1",
		Type:        models.TypeLost,
		Title:       "Blue Hydro Flask",
		Description: "Navy blue water bottle with stickers",
		Category:    "Other",
		Location:    "Library",
		Date:        "2024-03-10",
	}
}

func TestFindPotentialMatches(t *testing.T) {
	target := matchTarget()

	t.Run("no candidates yields empty slice", func(t *testing.T) {
		matches := FindPotentialMatches(target, []models.Item{}, models.TypeLost)
		require.NotNil(t, matches)
		require.Empty(t, matches)
	})

	t.Run("identical report scores full marks", func(t *testing.T) {
		twin := target
		twin.ID = "found-1"
		twin.Type = models.TypeFound

		matches := FindPotentialMatches(target, []models.Item{twin}, models.TypeLost)
		require.Len(t, matches, 1)
		require.InDelta(t, 1.0, matches[0].Score, 1e-9)
		require.Equal(t, 3, matches[0].Matches)
		require.Equal(t, models.TypeFound, matches[0].Type)
	})

	t.Run("two exact signals include despite a low score", func(t *testing.T) {
		// Title and description share no characters with the target, so the
		// similarity terms contribute nothing; location and date land exactly
		// two raw matches at a score below the floor.
		candidate := models.Item{
			ID:          "found-2",
			Type:        models.TypeFound,
			Title:       "zzz",
			Description: "qqq",
			Category:    "Keys",
			Location:    "Library",
			Date:        "2024-03-12",
		}
		matches := FindPotentialMatches(target, []models.Item{candidate}, models.TypeLost)
		require.Len(t, matches, 1)
		require.InDelta(t, 0.2, matches[0].Score, 1e-9)
		require.Equal(t, 2, matches[0].Matches)
	})

	t.Run("near-identical report with a different color", func(t *testing.T) {
		lost := models.Item{
			ID:          "lost-2",
			Type:        models.TypeLost,
			Title:       "Blue Backpack",
			Description: "navy blue backpack",
			Category:    "Bags/Backpacks",
			Location:    "Library",
			Date:        "2024-03-01",
		}
		found := models.Item{
			ID:          "found-4",
			Type:        models.TypeFound,
			Title:       "Black Backpack",
			Description: "backpack left by the stairs",
			Category:    "Bags/Backpacks",
			Location:    "Library",
			Date:        "2024-03-04",
		}

		matches := FindPotentialMatches(lost, []models.Item{found}, models.TypeLost)
		require.Len(t, matches, 1)
		require.GreaterOrEqual(t, matches[0].Matches, 2)
	})

	t.Run("single weak signal is excluded", func(t *testing.T) {
		candidate := models.Item{
			ID:          "found-3",
			Type:        models.TypeFound,
			Title:       "zzz",
			Description: "qqq",
			Category:    "Keys",
			Location:    "Library",
			Date:        "2024-06-01",
		}
		matches := FindPotentialMatches(target, []models.Item{candidate}, models.TypeLost)
		require.Empty(t, matches)
	})

	t.Run("results sorted best first", func(t *testing.T) {
		strong := target
		strong.ID = "found-strong"
		strong.Type = models.TypeFound

		weak := models.Item{
			ID:       "found-weak",
			Type:     models.TypeFound,
			Title:    "xyz",
			Category: "Other",
			Location: "Library",
			Date:     "2024-03-12",
		}

		matches := FindPotentialMatches(target, []models.Item{weak, strong}, models.TypeLost)
		require.Len(t, matches, 2)
		require.Equal(t, "found-strong", matches[0].Item.ID)
		require.Equal(t, "found-weak", matches[1].Item.ID)
		require.Greater(t, matches[0].Score, matches[1].Score)
	})
}

func TestMatchStatusText(t *testing.T) {
	require.Equal(t, "Very High Match", MatchStatusText(0.92))
	require.Equal(t, "Very High Match", MatchStatusText(0.8))
	require.Equal(t, "High Match", MatchStatusText(0.65))
	require.Equal(t, "Moderate Match", MatchStatusText(0.45))
	require.Equal(t, "Possible Match", MatchStatusText(0.3))
}
