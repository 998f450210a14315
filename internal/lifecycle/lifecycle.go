// Package lifecycle owns the item status state machine. Found items run
// processing -> found -> claimed -> delivered -> received -> returned as the
// finder and claimer alternate confirmations; lost items run the reduced
// searching -> found -> returned machine driven by the owner alone.
//
// Every decision takes the acting identity as an explicit argument and is
// re-evaluated per call. Nothing here mutates its inputs; Apply returns a
// fresh snapshot for the caller to persist.
package lifecycle

import (
	"errors"
	"time"

	"github.com/campusfound/backend/internal/models"
)

var (
	// ErrNotAllowed: the actor holds no role permitting this transition.
	ErrNotAllowed = errors.New("actor not allowed to perform this transition")
	// ErrInvalidTransition: the item is not in a state this action can leave.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Found items still in processing auto-advance to found once this old.
const sweepAgeDays = 2

// IsOwner reports whether the actor reported the item.
func IsOwner(item models.Item, actor models.UserRef) bool {
	return actor.UID != "" && item.ReportedBy.UID == actor.UID
}

// IsFinder reports whether the actor reported a found item. For found items
// the reporter and the finder are the same identity.
func IsFinder(item models.Item, actor models.UserRef) bool {
	return item.Type == models.TypeFound && IsOwner(item, actor)
}

// IsClaimer reports whether the actor is the approved claimer of a found item.
func IsClaimer(item models.Item, actor models.UserRef) bool {
	return item.Type == models.TypeFound &&
		item.ClaimedBy != nil &&
		actor.UID != "" &&
		item.ClaimedBy.UID == actor.UID
}

// DefaultStatus is the state an item enters on creation when none is given.
func DefaultStatus(t models.ItemType) models.ItemStatus {
	if t == models.TypeLost {
		return models.StatusSearching
	}
	return models.StatusProcessing
}

// SweepDue reports whether a listing fetch should advance this found item
// from processing to found. Re-sweeping an advanced item is a no-op.
func SweepDue(item models.Item, now time.Time) bool {
	if item.Type != models.TypeFound {
		return false
	}
	if item.Status != "" && item.Status != models.StatusProcessing {
		return false
	}
	days := int(now.Sub(item.CreatedAt).Hours() / 24)
	return days >= sweepAgeDays
}

// Transition is a computed status change ready to be persisted.
type Transition struct {
	Status      models.ItemStatus
	DeliveredBy *models.ActionStamp
	ReceivedBy  *models.ActionStamp
}

// NextOnDone resolves the "mark done" action for the given actor against the
// item's current state. Unauthorized actors get ErrNotAllowed; an action
// from the wrong state gets ErrInvalidTransition. Neither changes anything.
func NextOnDone(item models.Item, actor models.UserRef, now time.Time) (Transition, error) {
	if item.Type == models.TypeLost {
		return nextOnDoneLost(item, actor)
	}
	return nextOnDoneFound(item, actor, now)
}

func nextOnDoneLost(item models.Item, actor models.UserRef) (Transition, error) {
	if !IsOwner(item, actor) {
		return Transition{}, ErrNotAllowed
	}
	switch item.Status {
	case models.StatusSearching:
		return Transition{Status: models.StatusFound}, nil
	case models.StatusFound:
		return Transition{Status: models.StatusReturned}, nil
	default:
		return Transition{}, ErrInvalidTransition
	}
}

func nextOnDoneFound(item models.Item, actor models.UserRef, now time.Time) (Transition, error) {
	switch item.Status {
	case models.StatusClaimed:
		if !IsFinder(item, actor) {
			return Transition{}, ErrNotAllowed
		}
		return Transition{
			Status:      models.StatusDelivered,
			DeliveredBy: stamp(actor, now),
		}, nil

	case models.StatusDelivered:
		if IsClaimer(item, actor) {
			return Transition{
				Status:     models.StatusReceived,
				ReceivedBy: stamp(actor, now),
			}, nil
		}
		// Finder may close out a delivery the claimer never confirmed.
		if IsFinder(item, actor) && item.DeliveredBy != nil {
			return Transition{Status: models.StatusReturned}, nil
		}
		if IsFinder(item, actor) {
			return Transition{}, ErrInvalidTransition
		}
		return Transition{}, ErrNotAllowed

	case models.StatusReceived:
		if !IsFinder(item, actor) {
			return Transition{}, ErrNotAllowed
		}
		return Transition{Status: models.StatusReturned}, nil

	default:
		if !IsFinder(item, actor) && !IsClaimer(item, actor) {
			return Transition{}, ErrNotAllowed
		}
		return Transition{}, ErrInvalidTransition
	}
}

// CanClaim gates claim filing: found items only, in the found state, and
// never by the finder themselves.
func CanClaim(item models.Item, claimant models.UserRef) error {
	if item.Type != models.TypeFound || item.Status != models.StatusFound {
		return ErrInvalidTransition
	}
	if claimant.UID == "" || IsFinder(item, claimant) {
		return ErrNotAllowed
	}
	return nil
}

// CanEnterClaimed gates the finder-side claim approval that moves a found
// item into the claimed state.
func CanEnterClaimed(item models.Item, actor models.UserRef) error {
	if !IsFinder(item, actor) {
		return ErrNotAllowed
	}
	if item.Status != models.StatusFound {
		return ErrInvalidTransition
	}
	return nil
}

// Apply returns a copy of the item with the transition and updatedAt set.
func Apply(item models.Item, tr Transition, now time.Time) models.Item {
	out := item
	out.Status = tr.Status
	if tr.DeliveredBy != nil {
		out.DeliveredBy = tr.DeliveredBy
	}
	if tr.ReceivedBy != nil {
		out.ReceivedBy = tr.ReceivedBy
	}
	out.UpdatedAt = now
	return out
}

func stamp(actor models.UserRef, now time.Time) *models.ActionStamp {
	return &models.ActionStamp{
		UID:       actor.UID,
		Name:      actor.Name,
		Email:     actor.Email,
		Timestamp: now,
	}
}
