package services

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusfound/backend/internal/lifecycle"
	"github.com/campusfound/backend/internal/models"
)

// MemoryItemService keeps item records in process memory. Used when no
// MONGO_URI is configured and by the tests.
type MemoryItemService struct {
	mu    sync.RWMutex
	items map[models.ItemType]map[string]*models.Item

	now func() time.Time
}

func NewMemoryItemService() *MemoryItemService {
	return &MemoryItemService{
		items: map[models.ItemType]map[string]*models.Item{
			models.TypeLost:  make(map[string]*models.Item),
			models.TypeFound: make(map[string]*models.Item),
		},
		now: time.Now,
	}
}

func (s *MemoryItemService) Create(actor models.UserRef, itemType models.ItemType, req *models.CreateItemRequest) (*models.Item, error) {
	if actor.UID == "" || !itemType.Valid() {
		return nil, ErrBadInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	date := req.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	item := &models.Item{
		ID:          uuid.New().String(),
		Type:        itemType,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Date:        date,
		ImageURL:    req.ImageURL,
		Status:      lifecycle.DefaultStatus(itemType),
		ReportedBy:  actor,
		Reward:      req.Reward,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.items[itemType][item.ID] = item

	snapshot := *item
	return &snapshot, nil
}

func (s *MemoryItemService) GetByID(itemType models.ItemType, itemID string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[itemType][itemID]
	if !exists {
		return nil, ErrItemNotFound
	}

	snapshot := *item
	return &snapshot, nil
}

func (s *MemoryItemService) List(itemType models.ItemType, query *models.ListItemsQuery) (*models.ItemPage, error) {
	if !itemType.Valid() {
		return nil, ErrBadInput
	}
	if itemType == models.TypeFound {
		s.sweep()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Item, 0, len(s.items[itemType]))
	for _, item := range s.items[itemType] {
		if query.Category != "" && item.Category != query.Category {
			continue
		}
		if query.Location != "" && item.Location != query.Location {
			continue
		}
		all = append(all, *item)
	}

	// Newest first, matching the remote store's created_at index order.
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := 0
	if query.Cursor != "" {
		cursorTime, err := time.Parse(time.RFC3339Nano, query.Cursor)
		if err != nil {
			return nil, ErrBadInput
		}
		for start < len(all) && !all[start].CreatedAt.Before(cursorTime) {
			start++
		}
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 12
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]

	out := &models.ItemPage{Items: page, HasMore: end < len(all)}
	if out.HasMore && len(page) > 0 {
		out.NextCursor = page[len(page)-1].CreatedAt.Format(time.RFC3339Nano)
	}
	return out, nil
}

// sweep advances stale processing items to found as a listing side effect.
func (s *MemoryItemService) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, item := range s.items[models.TypeFound] {
		if lifecycle.SweepDue(*item, now) {
			item.Status = models.StatusFound
			item.UpdatedAt = now
		}
	}
}

func (s *MemoryItemService) ListByReporter(itemType models.ItemType, uid string) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0)
	for _, item := range s.items[itemType] {
		if item.ReportedBy.UID == uid {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryItemService) Delete(actor models.UserRef, itemType models.ItemType, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[itemType][itemID]
	if !exists {
		return ErrItemNotFound
	}
	if !lifecycle.IsOwner(*item, actor) {
		return ErrUnauthorized
	}

	delete(s.items[itemType], itemID)
	return nil
}

func (s *MemoryItemService) MarkDone(actor models.UserRef, itemType models.ItemType, itemID string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[itemType][itemID]
	if !exists {
		return nil, ErrItemNotFound
	}

	now := s.now()
	tr, err := lifecycle.NextOnDone(*item, actor, now)
	if err != nil {
		return nil, err
	}

	updated := lifecycle.Apply(*item, tr, now)
	s.items[itemType][itemID] = &updated

	snapshot := updated
	return &snapshot, nil
}

func (s *MemoryItemService) MarkClaimed(actor models.UserRef, itemID string, claimID string, claimedBy models.UserRef) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[models.TypeFound][itemID]
	if !exists {
		return nil, ErrItemNotFound
	}
	if err := lifecycle.CanEnterClaimed(*item, actor); err != nil {
		return nil, err
	}

	updated := *item
	updated.Status = models.StatusClaimed
	updated.ClaimID = claimID
	claimer := claimedBy
	updated.ClaimedBy = &claimer
	updated.UpdatedAt = s.now()
	s.items[models.TypeFound][itemID] = &updated

	snapshot := updated
	return &snapshot, nil
}

func (s *MemoryItemService) IncrementContactCount(itemType models.ItemType, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[itemType][itemID]
	if !exists {
		return ErrItemNotFound
	}
	item.ContactRequestsCount++
	return nil
}
