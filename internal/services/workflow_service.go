package services

import (
	"context"

	"github.com/campusfound/backend/internal/models"
)

// WorkflowService manages claims on found items and contact requests on
// either report type. Status side effects on items are delegated to the
// ItemService; filing a claim never touches item status, only finder-side
// approval does. Duplicate claims or requests per (item, actor) are not
// rejected here — an accepted gap, the UI suppresses the affordance.
type WorkflowService interface {
	FileClaim(claimant models.UserRef, itemID string, req *models.FileClaimRequest) (*models.Claim, error)
	ApproveClaim(actor models.UserRef, claimID string) (*models.Claim, error)
	RejectClaim(actor models.UserRef, claimID string) (*models.Claim, error)
	ListClaims(uid string) ([]models.Claim, error)

	FileContactRequest(requester models.UserRef, itemType models.ItemType, itemID string, req *models.FileContactRequest) (*models.ContactRequest, error)
	HasContacted(uid string, itemType models.ItemType, itemID string) (bool, error)
	ApproveContactRequest(actor models.UserRef, requestID string) (*models.ContactRequest, error)
	RejectContactRequest(actor models.UserRef, requestID string) (*models.ContactRequest, error)
	DeleteContactRequest(actor models.UserRef, requestID string) error
	ListContactRequests(uid string) ([]models.ContactRequest, error)
}

// ApprovalNotifier delivers best-effort notifications when a contact request
// is approved. Failures are logged, never surfaced to the approving user.
type ApprovalNotifier interface {
	NotifyContactApproved(ctx context.Context, request models.ContactRequest) error
}
