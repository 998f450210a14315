package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusfound/backend/internal/models"
)

var (
	finder  = models.UserRef{UID: "finder-1", Name: "Finn", Email: "finn@campus.edu"}
	claimer = models.UserRef{UID: "claimer-1", Name: "Cleo", Email: "cleo@campus.edu"}
	owner   = models.UserRef{UID: "owner-1", Name: "Omar", Email: "omar@campus.edu"}
	someone = models.UserRef{UID: "random-1", Name: "Rae", Email: "rae@campus.edu"}
)

func foundItem(status models.ItemStatus) models.Item {
	item := models.Item{
		ID:         "item-1",
		Type:       models.TypeFound,
		Status:     status,
		ReportedBy: finder,
	}
	if status == models.StatusClaimed || status == models.StatusDelivered || status == models.StatusReceived {
		cb := claimer
		item.ClaimedBy = &cb
	}
	return item
}

func lostItem(status models.ItemStatus) models.Item {
	return models.Item{
		ID:         "item-2",
		Type:       models.TypeLost,
		Status:     status,
		ReportedBy: owner,
	}
}

func TestRoles(t *testing.T) {
	item := foundItem(models.StatusClaimed)

	require.True(t, IsOwner(item, finder))
	require.True(t, IsFinder(item, finder))
	require.False(t, IsFinder(item, claimer))
	require.True(t, IsClaimer(item, claimer))
	require.False(t, IsClaimer(item, finder))

	// Empty identity never holds a role
	require.False(t, IsOwner(item, models.UserRef{}))
	require.False(t, IsClaimer(foundItem(models.StatusFound), models.UserRef{}))

	lost := lostItem(models.StatusSearching)
	require.True(t, IsOwner(lost, owner))
	require.False(t, IsFinder(lost, owner))
}

func TestDefaultStatus(t *testing.T) {
	require.Equal(t, models.StatusSearching, DefaultStatus(models.TypeLost))
	require.Equal(t, models.StatusProcessing, DefaultStatus(models.TypeFound))
}

func TestSweepDue(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("stale processing item is due", func(t *testing.T) {
		item := foundItem(models.StatusProcessing)
		item.CreatedAt = now.AddDate(0, 0, -3)
		require.True(t, SweepDue(item, now))
	})

	t.Run("empty status counts as processing", func(t *testing.T) {
		item := foundItem("")
		item.CreatedAt = now.AddDate(0, 0, -2)
		require.True(t, SweepDue(item, now))
	})

	t.Run("fresh item is not due", func(t *testing.T) {
		item := foundItem(models.StatusProcessing)
		item.CreatedAt = now.AddDate(0, 0, -1)
		require.False(t, SweepDue(item, now))
	})

	t.Run("already advanced item is never re-swept", func(t *testing.T) {
		item := foundItem(models.StatusFound)
		item.CreatedAt = now.AddDate(0, 0, -30)
		require.False(t, SweepDue(item, now))
	})

	t.Run("lost items are never swept", func(t *testing.T) {
		item := lostItem(models.StatusSearching)
		item.CreatedAt = now.AddDate(0, 0, -30)
		require.False(t, SweepDue(item, now))
	})
}

func TestNextOnDoneLost(t *testing.T) {
	now := time.Now()

	t.Run("owner advances searching to found", func(t *testing.T) {
		tr, err := NextOnDone(lostItem(models.StatusSearching), owner, now)
		require.NoError(t, err)
		require.Equal(t, models.StatusFound, tr.Status)
	})

	t.Run("owner advances found to returned", func(t *testing.T) {
		tr, err := NextOnDone(lostItem(models.StatusFound), owner, now)
		require.NoError(t, err)
		require.Equal(t, models.StatusReturned, tr.Status)
	})

	t.Run("returned is terminal", func(t *testing.T) {
		_, err := NextOnDone(lostItem(models.StatusReturned), owner, now)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		_, err := NextOnDone(lostItem(models.StatusSearching), someone, now)
		require.ErrorIs(t, err, ErrNotAllowed)
	})
}

func TestNextOnDoneFound(t *testing.T) {
	now := time.Now()

	t.Run("finder delivers a claimed item", func(t *testing.T) {
		tr, err := NextOnDone(foundItem(models.StatusClaimed), finder, now)
		require.NoError(t, err)
		require.Equal(t, models.StatusDelivered, tr.Status)
		require.NotNil(t, tr.DeliveredBy)
		require.Equal(t, finder.UID, tr.DeliveredBy.UID)
	})

	t.Run("claimer cannot deliver", func(t *testing.T) {
		_, err := NextOnDone(foundItem(models.StatusClaimed), claimer, now)
		require.ErrorIs(t, err, ErrNotAllowed)
	})

	t.Run("claimer confirms receipt", func(t *testing.T) {
		tr, err := NextOnDone(foundItem(models.StatusDelivered), claimer, now)
		require.NoError(t, err)
		require.Equal(t, models.StatusReceived, tr.Status)
		require.NotNil(t, tr.ReceivedBy)
		require.Equal(t, claimer.UID, tr.ReceivedBy.UID)
	})

	t.Run("finder closes out an unconfirmed delivery", func(t *testing.T) {
		item := foundItem(models.StatusDelivered)
		item.DeliveredBy = &models.ActionStamp{UID: finder.UID, Timestamp: now}

		tr, err := NextOnDone(item, finder, now)
		require.NoError(t, err)
		require.Equal(t, models.StatusReturned, tr.Status)
	})

	t.Run("finder cannot close a delivery they never stamped", func(t *testing.T) {
		_, err := NextOnDone(foundItem(models.StatusDelivered), finder, now)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("finder closes a received item", func(t *testing.T) {
		tr, err := NextOnDone(foundItem(models.StatusReceived), finder, now)
		require.NoError(t, err)
		require.Equal(t, models.StatusReturned, tr.Status)
	})

	t.Run("claimer cannot close a received item", func(t *testing.T) {
		_, err := NextOnDone(foundItem(models.StatusReceived), claimer, now)
		require.ErrorIs(t, err, ErrNotAllowed)
	})

	t.Run("no done action from processing or found", func(t *testing.T) {
		_, err := NextOnDone(foundItem(models.StatusProcessing), finder, now)
		require.ErrorIs(t, err, ErrInvalidTransition)

		_, err = NextOnDone(foundItem(models.StatusFound), finder, now)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("outsiders are rejected before state is considered", func(t *testing.T) {
		_, err := NextOnDone(foundItem(models.StatusProcessing), someone, now)
		require.ErrorIs(t, err, ErrNotAllowed)
	})
}

func TestCanClaim(t *testing.T) {
	t.Run("open found item", func(t *testing.T) {
		require.NoError(t, CanClaim(foundItem(models.StatusFound), claimer))
	})

	t.Run("finder cannot claim their own report", func(t *testing.T) {
		require.ErrorIs(t, CanClaim(foundItem(models.StatusFound), finder), ErrNotAllowed)
	})

	t.Run("not yet visible", func(t *testing.T) {
		require.ErrorIs(t, CanClaim(foundItem(models.StatusProcessing), claimer), ErrInvalidTransition)
	})

	t.Run("already claimed", func(t *testing.T) {
		require.ErrorIs(t, CanClaim(foundItem(models.StatusClaimed), claimer), ErrInvalidTransition)
	})

	t.Run("lost items take contact requests, not claims", func(t *testing.T) {
		require.ErrorIs(t, CanClaim(lostItem(models.StatusSearching), claimer), ErrInvalidTransition)
	})
}

func TestCanEnterClaimed(t *testing.T) {
	require.NoError(t, CanEnterClaimed(foundItem(models.StatusFound), finder))
	require.ErrorIs(t, CanEnterClaimed(foundItem(models.StatusFound), claimer), ErrNotAllowed)
	require.ErrorIs(t, CanEnterClaimed(foundItem(models.StatusClaimed), finder), ErrInvalidTransition)
}

func TestApply(t *testing.T) {
	now := time.Now()
	item := foundItem(models.StatusClaimed)

	tr, err := NextOnDone(item, finder, now)
	require.NoError(t, err)

	next := Apply(item, tr, now)
	require.Equal(t, models.StatusDelivered, next.Status)
	require.NotNil(t, next.DeliveredBy)
	require.Equal(t, now, next.UpdatedAt)

	// Input is untouched
	require.Equal(t, models.StatusClaimed, item.Status)
	require.Nil(t, item.DeliveredBy)
}
