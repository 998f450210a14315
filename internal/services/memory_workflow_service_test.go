package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusfound/backend/internal/lifecycle"
	"github.com/campusfound/backend/internal/models"
)

type recordingNotifier struct {
	notified []models.ContactRequest
}

func (n *recordingNotifier) NotifyContactApproved(_ context.Context, request models.ContactRequest) error {
	n.notified = append(n.notified, request)
	return nil
}

func newTestWorkflow(t *testing.T) (*MemoryWorkflowService, *MemoryItemService, *recordingNotifier, *time.Time) {
	t.Helper()
	items, current := newTestItemService(t)
	notifier := &recordingNotifier{}
	svc := NewMemoryWorkflowService(items, notifier)
	svc.now = func() time.Time { return *current }
	return svc, items, notifier, current
}

// openFoundItem reports a found item and advances it past the sweep so it
// is open for claims.
func openFoundItem(t *testing.T, items *MemoryItemService, current *time.Time, title string) *models.Item {
	t.Helper()
	item, err := items.Create(testFinder, models.TypeFound, reportRequest(title))
	require.NoError(t, err)

	*current = current.AddDate(0, 0, 3)
	_, err = items.List(models.TypeFound, &models.ListItemsQuery{})
	require.NoError(t, err)

	got, err := items.GetByID(models.TypeFound, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFound, got.Status)
	return got
}

func TestFileClaim(t *testing.T) {
	svc, items, _, current := newTestWorkflow(t)
	item := openFoundItem(t, items, current, "Silver Watch")

	t.Run("filing leaves item status untouched", func(t *testing.T) {
		claim, err := svc.FileClaim(testClaimer, item.ID, &models.FileClaimRequest{Message: "That's mine, engraved initials"})
		require.NoError(t, err)
		require.Equal(t, models.ClaimPending, claim.Status)
		require.Equal(t, item.ID, claim.ItemID)
		require.Equal(t, testFinder.UID, claim.FoundByUID)

		got, err := items.GetByID(models.TypeFound, item.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusFound, got.Status)
	})

	t.Run("finder cannot claim own report", func(t *testing.T) {
		_, err := svc.FileClaim(testFinder, item.ID, &models.FileClaimRequest{Message: "mine"})
		require.ErrorIs(t, err, lifecycle.ErrNotAllowed)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.FileClaim(testClaimer, "missing", &models.FileClaimRequest{Message: "mine"})
		require.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestApproveClaim(t *testing.T) {
	svc, items, _, current := newTestWorkflow(t)
	item := openFoundItem(t, items, current, "Laptop Charger")

	claim, err := svc.FileClaim(testClaimer, item.ID, &models.FileClaimRequest{Message: "lost it yesterday"})
	require.NoError(t, err)

	t.Run("only the finder approves", func(t *testing.T) {
		_, err := svc.ApproveClaim(testClaimer, claim.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("approval moves the item to claimed", func(t *testing.T) {
		approved, err := svc.ApproveClaim(testFinder, claim.ID)
		require.NoError(t, err)
		require.Equal(t, models.ClaimApproved, approved.Status)

		got, err := items.GetByID(models.TypeFound, item.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusClaimed, got.Status)
		require.Equal(t, claim.ID, got.ClaimID)
		require.Equal(t, testClaimer.UID, got.ClaimedBy.UID)
	})

	t.Run("resolved claims stay resolved", func(t *testing.T) {
		_, err := svc.ApproveClaim(testFinder, claim.ID)
		require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	})

	t.Run("competing claim fails at the item, not the claim", func(t *testing.T) {
		rival := models.UserRef{UID: "rival-1", Name: "Riva", Email: "riva@campus.edu"}
		second, err := svc.FileClaim(rival, item.ID, &models.FileClaimRequest{Message: "actually mine"})
		require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
		require.Nil(t, second)
	})
}

func TestRejectClaim(t *testing.T) {
	svc, items, _, current := newTestWorkflow(t)
	item := openFoundItem(t, items, current, "Calculator")

	claim, err := svc.FileClaim(testClaimer, item.ID, &models.FileClaimRequest{Message: "mine"})
	require.NoError(t, err)

	rejected, err := svc.RejectClaim(testFinder, claim.ID)
	require.NoError(t, err)
	require.Equal(t, models.ClaimRejected, rejected.Status)

	// Rejection leaves the item open for others
	got, err := items.GetByID(models.TypeFound, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFound, got.Status)

	_, err = svc.RejectClaim(testFinder, claim.ID)
	require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestListClaims(t *testing.T) {
	svc, items, _, current := newTestWorkflow(t)
	item := openFoundItem(t, items, current, "Textbook")

	_, err := svc.FileClaim(testClaimer, item.ID, &models.FileClaimRequest{Message: "mine"})
	require.NoError(t, err)

	for _, uid := range []string{testClaimer.UID, testFinder.UID} {
		claims, err := svc.ListClaims(uid)
		require.NoError(t, err)
		require.Len(t, claims, 1)
	}

	claims, err := svc.ListClaims("stranger")
	require.NoError(t, err)
	require.Empty(t, claims)
}

func TestContactRequestFlow(t *testing.T) {
	svc, items, notifier, _ := newTestWorkflow(t)

	item, err := items.Create(testOwner, models.TypeLost, reportRequest("Wallet"))
	require.NoError(t, err)

	t.Run("owner cannot contact themselves", func(t *testing.T) {
		_, err := svc.FileContactRequest(testOwner, models.TypeLost, item.ID, &models.FileContactRequest{Message: "hi"})
		require.ErrorIs(t, err, lifecycle.ErrNotAllowed)
	})

	requester := testClaimer
	request, err := svc.FileContactRequest(requester, models.TypeLost, item.ID, &models.FileContactRequest{Message: "I think I found your wallet"})
	require.NoError(t, err)
	require.Equal(t, models.RequestPending, request.Status)

	t.Run("pending request hides the counterpart", func(t *testing.T) {
		require.Empty(t, request.RecipientName)
		require.Empty(t, request.RecipientEmail)
		require.Equal(t, requester.Name, request.RequesterName)
	})

	t.Run("counter incremented on the item", func(t *testing.T) {
		got, err := items.GetByID(models.TypeLost, item.ID)
		require.NoError(t, err)
		require.Equal(t, 1, got.ContactRequestsCount)
	})

	t.Run("has contacted", func(t *testing.T) {
		contacted, err := svc.HasContacted(requester.UID, models.TypeLost, item.ID)
		require.NoError(t, err)
		require.True(t, contacted)

		contacted, err = svc.HasContacted("stranger", models.TypeLost, item.ID)
		require.NoError(t, err)
		require.False(t, contacted)
	})

	t.Run("only the recipient resolves", func(t *testing.T) {
		_, err := svc.ApproveContactRequest(requester, request.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("approval reveals both parties and notifies", func(t *testing.T) {
		approved, err := svc.ApproveContactRequest(testOwner, request.ID)
		require.NoError(t, err)
		require.Equal(t, models.RequestApproved, approved.Status)
		require.Equal(t, testOwner.Email, approved.RecipientEmail)
		require.Equal(t, requester.Email, approved.RequesterEmail)

		require.Len(t, notifier.notified, 1)
		require.Equal(t, request.ID, notifier.notified[0].ID)

		// Requester-side view is fully revealed too
		list, err := svc.ListContactRequests(requester.UID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, testOwner.Email, list[0].RecipientEmail)
	})

	t.Run("resolved requests stay resolved", func(t *testing.T) {
		_, err := svc.RejectContactRequest(testOwner, request.ID)
		require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	})
}

func TestRejectContactRequestNeverReveals(t *testing.T) {
	svc, items, notifier, _ := newTestWorkflow(t)

	item, err := items.Create(testOwner, models.TypeLost, reportRequest("Scarf"))
	require.NoError(t, err)

	request, err := svc.FileContactRequest(testClaimer, models.TypeLost, item.ID, &models.FileContactRequest{Message: "seen it"})
	require.NoError(t, err)

	rejected, err := svc.RejectContactRequest(testOwner, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestRejected, rejected.Status)
	require.Empty(t, notifier.notified)

	list, err := svc.ListContactRequests(testClaimer.UID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Empty(t, list[0].RecipientName)
	require.Empty(t, list[0].RecipientEmail)
}

func TestDeleteContactRequest(t *testing.T) {
	svc, items, _, _ := newTestWorkflow(t)

	item, err := items.Create(testOwner, models.TypeLost, reportRequest("Glasses"))
	require.NoError(t, err)

	t.Run("requester may withdraw while pending", func(t *testing.T) {
		request, err := svc.FileContactRequest(testClaimer, models.TypeLost, item.ID, &models.FileContactRequest{Message: "hello"})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteContactRequest(testClaimer, request.ID))
		require.ErrorIs(t, svc.DeleteContactRequest(testClaimer, request.ID), ErrRequestNotFound)
	})

	t.Run("recipient may clean up only resolved requests", func(t *testing.T) {
		request, err := svc.FileContactRequest(testClaimer, models.TypeLost, item.ID, &models.FileContactRequest{Message: "hello again"})
		require.NoError(t, err)

		require.ErrorIs(t, svc.DeleteContactRequest(testOwner, request.ID), ErrUnauthorized)

		_, err = svc.RejectContactRequest(testOwner, request.ID)
		require.NoError(t, err)
		require.NoError(t, svc.DeleteContactRequest(testOwner, request.ID))
	})

	t.Run("third parties never delete", func(t *testing.T) {
		request, err := svc.FileContactRequest(testClaimer, models.TypeLost, item.ID, &models.FileContactRequest{Message: "third"})
		require.NoError(t, err)

		stranger := models.UserRef{UID: "stranger-1"}
		require.ErrorIs(t, svc.DeleteContactRequest(stranger, request.ID), ErrUnauthorized)
	})
}
