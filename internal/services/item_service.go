package services

import (
	"errors"

	"github.com/campusfound/backend/internal/models"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrClaimNotFound   = errors.New("claim not found")
	ErrRequestNotFound = errors.New("contact request not found")
	ErrUnauthorized    = errors.New("unauthorized to modify this record")
	ErrBadInput        = errors.New("missing or invalid input")
)

// ItemService owns lost/found item records and their lifecycle writes.
// Listing found items runs the read-triggered sweep that promotes stale
// processing items to found. Status transitions return fresh snapshots of
// the stored record; callers must not mutate items they already hold.
type ItemService interface {
	Create(actor models.UserRef, itemType models.ItemType, req *models.CreateItemRequest) (*models.Item, error)
	GetByID(itemType models.ItemType, itemID string) (*models.Item, error)
	List(itemType models.ItemType, query *models.ListItemsQuery) (*models.ItemPage, error)
	ListByReporter(itemType models.ItemType, uid string) ([]models.Item, error)
	Delete(actor models.UserRef, itemType models.ItemType, itemID string) error

	// MarkDone advances the item one lifecycle step for the acting user.
	// lifecycle.ErrNotAllowed / lifecycle.ErrInvalidTransition pass through
	// unchanged with no write performed.
	MarkDone(actor models.UserRef, itemType models.ItemType, itemID string) (*models.Item, error)

	// MarkClaimed is the finder-side approval side effect: found -> claimed,
	// recording the winning claim and claimer.
	MarkClaimed(actor models.UserRef, itemID string, claimID string, claimedBy models.UserRef) (*models.Item, error)

	// IncrementContactCount bumps the item's contact request counter.
	IncrementContactCount(itemType models.ItemType, itemID string) error
}
