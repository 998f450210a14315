package matching

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringSimilarity(t *testing.T) {
	t.Run("identical strings score 1", func(t *testing.T) {
		require.Equal(t, 1.0, StringSimilarity("blue backpack", "blue backpack"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		require.Equal(t, 1.0, StringSimilarity("Blue Backpack", "blue backpack"))
	})

	t.Run("classic edit distance", func(t *testing.T) {
		// kitten -> sitting is 3 edits over a max length of 7
		require.InDelta(t, 1.0-3.0/7.0, StringSimilarity("kitten", "sitting"), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		require.Equal(t, StringSimilarity("wallet", "walet"), StringSimilarity("walet", "wallet"))
	})

	t.Run("both empty score 1", func(t *testing.T) {
		require.Equal(t, 1.0, StringSimilarity("", ""))
	})

	t.Run("one empty scores 0", func(t *testing.T) {
		require.Equal(t, 0.0, StringSimilarity("keys", ""))
		require.Equal(t, 0.0, StringSimilarity("", "keys"))
	})

	t.Run("completely different strings score near zero", func(t *testing.T) {
		require.Less(t, StringSimilarity("abc", "xyz"), 0.01)
	})
}

func TestDatesInRange(t *testing.T) {
	t.Run("same day", func(t *testing.T) {
		require.True(t, DatesInRange("2024-01-01", "2024-01-01", 0))
	})

	t.Run("within range", func(t *testing.T) {
		require.True(t, DatesInRange("2024-01-01", "2024-01-06", 5))
	})

	t.Run("just outside range", func(t *testing.T) {
		require.False(t, DatesInRange("2024-01-01", "2024-01-07", 5))
	})

	t.Run("order does not matter", func(t *testing.T) {
		require.True(t, DatesInRange("2024-01-06", "2024-01-01", 5))
	})

	t.Run("missing dates never match", func(t *testing.T) {
		require.False(t, DatesInRange("", "2024-01-01", 7))
		require.False(t, DatesInRange("2024-01-01", "", 7))
		require.False(t, DatesInRange("", "", 7))
	})

	t.Run("unparseable dates never match", func(t *testing.T) {
		require.False(t, DatesInRange("01/02/2024", "2024-01-01", 7))
	})
}
