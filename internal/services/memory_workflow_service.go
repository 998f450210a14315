package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusfound/backend/internal/lifecycle"
	"github.com/campusfound/backend/internal/models"
)

// MemoryWorkflowService keeps claim and contact-request records in process
// memory. Used when no MONGO_URI is configured and by the tests.
type MemoryWorkflowService struct {
	mu       sync.RWMutex
	claims   map[string]*models.Claim
	requests map[string]*models.ContactRequest

	items    ItemService
	notifier ApprovalNotifier

	now func() time.Time
}

func NewMemoryWorkflowService(items ItemService, notifier ApprovalNotifier) *MemoryWorkflowService {
	return &MemoryWorkflowService{
		claims:   make(map[string]*models.Claim),
		requests: make(map[string]*models.ContactRequest),
		items:    items,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *MemoryWorkflowService) FileClaim(claimant models.UserRef, itemID string, req *models.FileClaimRequest) (*models.Claim, error) {
	item, err := s.items.GetByID(models.TypeFound, itemID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanClaim(*item, claimant); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	claim := &models.Claim{
		ID:            uuid.New().String(),
		ItemID:        item.ID,
		ItemType:      models.TypeFound,
		ItemTitle:     item.Title,
		ClaimantID:    claimant.UID,
		ClaimantName:  claimant.Name,
		ClaimantEmail: claimant.Email,
		FoundByUID:    item.ReportedBy.UID,
		FoundByEmail:  item.ReportedBy.Email,
		Status:        models.ClaimPending,
		Message:       req.Message,
		CreatedAt:     s.now(),
	}
	s.claims[claim.ID] = claim

	snapshot := *claim
	return &snapshot, nil
}

func (s *MemoryWorkflowService) ApproveClaim(actor models.UserRef, claimID string) (*models.Claim, error) {
	s.mu.Lock()
	claim, exists := s.claims[claimID]
	if !exists {
		s.mu.Unlock()
		return nil, ErrClaimNotFound
	}
	if claim.FoundByUID != actor.UID {
		s.mu.Unlock()
		return nil, ErrUnauthorized
	}
	if claim.Status != models.ClaimPending {
		s.mu.Unlock()
		return nil, lifecycle.ErrInvalidTransition
	}
	snapshot := *claim
	s.mu.Unlock()

	// Move the item to claimed first; the claim flips only after the item
	// write succeeds, so a failure leaves both records untouched.
	claimedBy := models.UserRef{UID: snapshot.ClaimantID, Name: snapshot.ClaimantName, Email: snapshot.ClaimantEmail}
	if _, err := s.items.MarkClaimed(actor, snapshot.ItemID, snapshot.ID, claimedBy); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	claim.Status = models.ClaimApproved
	out := *claim
	return &out, nil
}

func (s *MemoryWorkflowService) RejectClaim(actor models.UserRef, claimID string) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim, exists := s.claims[claimID]
	if !exists {
		return nil, ErrClaimNotFound
	}
	if claim.FoundByUID != actor.UID {
		return nil, ErrUnauthorized
	}
	if claim.Status != models.ClaimPending {
		return nil, lifecycle.ErrInvalidTransition
	}

	claim.Status = models.ClaimRejected
	out := *claim
	return &out, nil
}

func (s *MemoryWorkflowService) ListClaims(uid string) ([]models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Claim, 0)
	for _, c := range s.claims {
		if c.ClaimantID == uid || c.FoundByUID == uid {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryWorkflowService) FileContactRequest(requester models.UserRef, itemType models.ItemType, itemID string, req *models.FileContactRequest) (*models.ContactRequest, error) {
	item, err := s.items.GetByID(itemType, itemID)
	if err != nil {
		return nil, err
	}
	if requester.UID == "" || lifecycle.IsOwner(*item, requester) {
		return nil, lifecycle.ErrNotAllowed
	}

	s.mu.Lock()
	request := &models.ContactRequest{
		ID:             uuid.New().String(),
		ItemID:         item.ID,
		ItemType:       itemType,
		ItemTitle:      item.Title,
		RequesterID:    requester.UID,
		RequesterName:  requester.Name,
		RequesterEmail: requester.Email,
		RecipientID:    item.ReportedBy.UID,
		RecipientName:  item.ReportedBy.Name,
		RecipientEmail: item.ReportedBy.Email,
		Message:        req.Message,
		Status:         models.RequestPending,
		CreatedAt:      s.now(),
	}
	s.requests[request.ID] = request
	snapshot := *request
	s.mu.Unlock()

	if err := s.items.IncrementContactCount(itemType, itemID); err != nil {
		log.Printf("[FileContactRequest] counter update failed item=%s: %v", itemID, err)
	}

	redacted := snapshot.RedactedFor(requester.UID)
	return &redacted, nil
}

func (s *MemoryWorkflowService) HasContacted(uid string, itemType models.ItemType, itemID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.requests {
		if r.RequesterID == uid && r.ItemType == itemType && r.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryWorkflowService) ApproveContactRequest(actor models.UserRef, requestID string) (*models.ContactRequest, error) {
	s.mu.Lock()
	request, exists := s.requests[requestID]
	if !exists {
		s.mu.Unlock()
		return nil, ErrRequestNotFound
	}
	if request.RecipientID != actor.UID {
		s.mu.Unlock()
		return nil, ErrUnauthorized
	}
	if request.Status != models.RequestPending {
		s.mu.Unlock()
		return nil, lifecycle.ErrInvalidTransition
	}

	request.Status = models.RequestApproved
	snapshot := *request
	s.mu.Unlock()

	s.notifyApproved(snapshot)

	out := snapshot.RedactedFor(actor.UID)
	return &out, nil
}

func (s *MemoryWorkflowService) RejectContactRequest(actor models.UserRef, requestID string) (*models.ContactRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, exists := s.requests[requestID]
	if !exists {
		return nil, ErrRequestNotFound
	}
	if request.RecipientID != actor.UID {
		return nil, ErrUnauthorized
	}
	if request.Status != models.RequestPending {
		return nil, lifecycle.ErrInvalidTransition
	}

	request.Status = models.RequestRejected
	out := request.RedactedFor(actor.UID)
	return &out, nil
}

func (s *MemoryWorkflowService) DeleteContactRequest(actor models.UserRef, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, exists := s.requests[requestID]
	if !exists {
		return ErrRequestNotFound
	}

	// The requester may withdraw at any time; the recipient may clean up
	// only once the request has been resolved.
	allowed := request.RequesterID == actor.UID ||
		(request.RecipientID == actor.UID && request.Status != models.RequestPending)
	if !allowed {
		return ErrUnauthorized
	}

	delete(s.requests, requestID)
	return nil
}

func (s *MemoryWorkflowService) ListContactRequests(uid string) ([]models.ContactRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ContactRequest, 0)
	for _, r := range s.requests {
		if r.RequesterID == uid || r.RecipientID == uid {
			out = append(out, r.RedactedFor(uid))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryWorkflowService) notifyApproved(request models.ContactRequest) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.notifier.NotifyContactApproved(ctx, request); err != nil {
		log.Printf("[ApproveContactRequest] notification failed request=%s: %v", request.ID, err)
	}
}
