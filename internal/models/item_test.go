package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validCreateRequest() CreateItemRequest {
	return CreateItemRequest{
		Title:       "Blue Backpack",
		Description: "Navy backpack with laptop sleeve",
		Category:    "Bags/Backpacks",
		Location:    "Library",
		Date:        "2024-03-09",
	}
}

func TestCreateItemRequestValidate(t *testing.T) {
	t.Run("valid request passes", func(t *testing.T) {
		req := validCreateRequest()
		require.Empty(t, req.Validate(TypeLost))
	})

	t.Run("required fields", func(t *testing.T) {
		req := CreateItemRequest{}
		errs := req.Validate(TypeLost)
		require.Contains(t, errs, "title")
		require.Contains(t, errs, "description")
		require.Contains(t, errs, "category")
		require.Contains(t, errs, "location")
	})

	t.Run("unknown category and location", func(t *testing.T) {
		req := validCreateRequest()
		req.Category = "Spaceships"
		req.Location = "The Moon"
		errs := req.Validate(TypeLost)
		require.Contains(t, errs, "category")
		require.Contains(t, errs, "location")
	})

	t.Run("date format", func(t *testing.T) {
		req := validCreateRequest()
		req.Date = "03/09/2024"
		require.Contains(t, req.Validate(TypeLost), "date")

		req.Date = ""
		require.Empty(t, req.Validate(TypeLost))
	})

	t.Run("reward rules", func(t *testing.T) {
		req := validCreateRequest()
		req.Reward = -5
		require.Contains(t, req.Validate(TypeLost), "reward")

		req.Reward = 20
		require.Empty(t, req.Validate(TypeLost))
		require.Contains(t, req.Validate(TypeFound), "reward")
	})
}

func TestItemTypeOpposite(t *testing.T) {
	require.Equal(t, TypeFound, TypeLost.Opposite())
	require.Equal(t, TypeLost, TypeFound.Opposite())
	require.True(t, TypeLost.Valid())
	require.False(t, ItemType("stolen").Valid())
}
