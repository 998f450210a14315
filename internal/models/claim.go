package models

import (
	"time"
)

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// Claim asserts ownership of a found item. Duplicate claims for the same
// (item, claimant) pair are not rejected server-side; the listing UI is
// expected to suppress the affordance.
type Claim struct {
	ID            string      `json:"id"`
	ItemID        string      `json:"item_id"`
	ItemType      ItemType    `json:"item_type"`
	ItemTitle     string      `json:"item_title"`
	ClaimantID    string      `json:"claimant_id"`
	ClaimantName  string      `json:"claimant_name"`
	ClaimantEmail string      `json:"claimant_email"`
	FoundByUID    string      `json:"found_by_uid"`
	FoundByEmail  string      `json:"found_by_email"`
	Status        ClaimStatus `json:"status"`
	Message       string      `json:"message"`
	CreatedAt     time.Time   `json:"created_at"`
}

type FileClaimRequest struct {
	Message string `json:"message"`
}

func (r *FileClaimRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Message == "" {
		errors["message"] = "Message is required"
	}

	return errors
}
