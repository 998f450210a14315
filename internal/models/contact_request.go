package models

import (
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ContactRequest connects a user with the reporter of a lost or found item.
// Lifecycle: pending -> approved | rejected, or deleted.
type ContactRequest struct {
	ID             string        `json:"id"`
	ItemID         string        `json:"item_id"`
	ItemType       ItemType      `json:"item_type"`
	ItemTitle      string        `json:"item_title"`
	RequesterID    string        `json:"requester_id"`
	RequesterName  string        `json:"requester_name"`
	RequesterEmail string        `json:"requester_email"`
	RecipientID    string        `json:"recipient_id"`
	RecipientName  string        `json:"recipient_name"`
	RecipientEmail string        `json:"recipient_email"`
	Message        string        `json:"message"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// RedactedFor returns the view of the request the given user may see.
// Until the recipient approves, neither party is shown the counterpart's
// name or email; approval reveals both directions. Reject never reveals.
func (c ContactRequest) RedactedFor(viewerUID string) ContactRequest {
	if c.Status == RequestApproved {
		return c
	}

	out := c
	if viewerUID != c.RecipientID {
		out.RecipientName = ""
		out.RecipientEmail = ""
	}
	if viewerUID != c.RequesterID {
		out.RequesterName = ""
		out.RequesterEmail = ""
	}
	return out
}

type FileContactRequest struct {
	Message string `json:"message"`
}

func (r *FileContactRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Message == "" {
		errors["message"] = "Message is required"
	}

	return errors
}
