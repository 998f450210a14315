package models

import (
	"time"
)

// ItemType distinguishes the two report collections.
type ItemType string

const (
	TypeLost  ItemType = "lost"
	TypeFound ItemType = "found"
)

func (t ItemType) Valid() bool {
	return t == TypeLost || t == TypeFound
}

// Opposite returns the counterpart type for match scoring.
func (t ItemType) Opposite() ItemType {
	if t == TypeLost {
		return TypeFound
	}
	return TypeLost
}

// ItemStatus values for found items run
// processing -> found -> claimed -> delivered -> received -> returned.
// Lost items use the reduced machine searching -> found -> returned.
type ItemStatus string

const (
	StatusProcessing ItemStatus = "processing"
	StatusSearching  ItemStatus = "searching"
	StatusFound      ItemStatus = "found"
	StatusClaimed    ItemStatus = "claimed"
	StatusDelivered  ItemStatus = "delivered"
	StatusReceived   ItemStatus = "received"
	StatusReturned   ItemStatus = "returned"
)

// UserRef identifies a participant on an item record. The reporting
// reference never changes after creation.
type UserRef struct {
	UID   string `json:"uid" bson:"uid"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// ActionStamp records who confirmed a delivery or receipt and when.
type ActionStamp struct {
	UID       string    `json:"uid" bson:"uid"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type Item struct {
	ID          string     `json:"id"`
	Type        ItemType   `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Date        string     `json:"date"` // calendar date lost/found, YYYY-MM-DD
	ImageURL    string     `json:"image_url,omitempty"`
	Status      ItemStatus `json:"status"`
	ReportedBy  UserRef    `json:"reported_by"`

	// Lost items only.
	Reward float64 `json:"reward,omitempty"`

	// Found items only, populated by the claim workflow.
	ClaimID     string       `json:"claim_id,omitempty"`
	ClaimedBy   *UserRef     `json:"claimed_by,omitempty"`
	DeliveredBy *ActionStamp `json:"delivered_by,omitempty"`
	ReceivedBy  *ActionStamp `json:"received_by,omitempty"`

	ContactRequestsCount int       `json:"contact_requests_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type CreateItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	ImageURL    string  `json:"image_url"`
	Reward      float64 `json:"reward"`
}

type ListItemsQuery struct {
	Category string `json:"category"`
	Location string `json:"location"`
	Cursor   string `json:"cursor"`
	Limit    int    `json:"limit"`
}

// ItemPage is one page of a listing plus the cursor for the next fetch.
type ItemPage struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

var ItemCategories = []string{
	"Electronics",
	"Books",
	"Clothing",
	"Accessories",
	"ID/Cards",
	"Keys",
	"Bags/Backpacks",
	"Other",
}

var CampusLocations = []string{
	"Library",
	"Student Center",
	"Cafeteria",
	"Gym",
	"Science Building",
	"Arts Building",
	"Dormitories",
	"Parking Lot",
	"Other",
}

func ValidCategory(c string) bool {
	for _, v := range ItemCategories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidLocation(l string) bool {
	for _, v := range CampusLocations {
		if v == l {
			return true
		}
	}
	return false
}

func (r *CreateItemRequest) Validate(itemType ItemType) map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.Description == "" {
		errors["description"] = "Description is required"
	}
	if r.Category == "" {
		errors["category"] = "Category is required"
	} else if !ValidCategory(r.Category) {
		errors["category"] = "Unknown category"
	}
	if r.Location == "" {
		errors["location"] = "Location is required"
	} else if !ValidLocation(r.Location) {
		errors["location"] = "Unknown location"
	}
	if r.Date != "" {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			errors["date"] = "Date must be YYYY-MM-DD"
		}
	}
	if r.Reward < 0 {
		errors["reward"] = "Reward cannot be negative"
	}
	if itemType == TypeFound && r.Reward != 0 {
		errors["reward"] = "Found items cannot carry a reward"
	}

	return errors
}
