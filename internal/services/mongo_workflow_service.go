package services

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusfound/backend/internal/lifecycle"
	"github.com/campusfound/backend/internal/models"
)

type MongoWorkflowService struct {
	client       *mongo.Client
	db           *mongo.Database
	claimsColl   *mongo.Collection
	requestsColl *mongo.Collection

	items    ItemService
	notifier ApprovalNotifier
}

type mongoClaimDoc struct {
	ID            string             `bson:"_id"`
	ItemID        string             `bson:"item_id"`
	ItemType      models.ItemType    `bson:"item_type"`
	ItemTitle     string             `bson:"item_title"`
	ClaimantID    string             `bson:"claimant_id"`
	ClaimantName  string             `bson:"claimant_name"`
	ClaimantEmail string             `bson:"claimant_email"`
	FoundByUID    string             `bson:"found_by_uid"`
	FoundByEmail  string             `bson:"found_by_email"`
	Status        models.ClaimStatus `bson:"status"`
	Message       string             `bson:"message"`
	CreatedAt     time.Time          `bson:"created_at"`
}

type mongoRequestDoc struct {
	ID             string               `bson:"_id"`
	ItemID         string               `bson:"item_id"`
	ItemType       models.ItemType      `bson:"item_type"`
	ItemTitle      string               `bson:"item_title"`
	RequesterID    string               `bson:"requester_id"`
	RequesterName  string               `bson:"requester_name"`
	RequesterEmail string               `bson:"requester_email"`
	RecipientID    string               `bson:"recipient_id"`
	RecipientName  string               `bson:"recipient_name"`
	RecipientEmail string               `bson:"recipient_email"`
	Message        string               `bson:"message"`
	Status         models.RequestStatus `bson:"status"`
	CreatedAt      time.Time            `bson:"created_at"`
}

func NewMongoWorkflowService(ctx context.Context, mongoURI, dbName string, items ItemService, notifier ApprovalNotifier) (*MongoWorkflowService, error) {
	if mongoURI == "" || dbName == "" {
		return nil, ErrBadInput
	}

	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	claims := db.Collection("claims")
	requests := db.Collection("contact_requests")

	svc := &MongoWorkflowService{
		client:       client,
		db:           db,
		claimsColl:   claims,
		requestsColl: requests,
		items:        items,
		notifier:     notifier,
	}

	// Best-effort indexes. No unique (item, actor) index: duplicate claims
	// and requests are an accepted gap, not enforced server-side.
	_, _ = claims.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "claimant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "found_by_uid", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "item_id", Value: 1}}},
	})
	_, _ = requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "item_type", Value: 1}, {Key: "requester_id", Value: 1}}},
	})

	log.Printf("MongoDB connected (workflow): db=%s", dbName)
	return svc, nil
}

func (s *MongoWorkflowService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func claimDocToModel(d mongoClaimDoc) *models.Claim {
	return &models.Claim{
		ID:            d.ID,
		ItemID:        d.ItemID,
		ItemType:      d.ItemType,
		ItemTitle:     d.ItemTitle,
		ClaimantID:    d.ClaimantID,
		ClaimantName:  d.ClaimantName,
		ClaimantEmail: d.ClaimantEmail,
		FoundByUID:    d.FoundByUID,
		FoundByEmail:  d.FoundByEmail,
		Status:        d.Status,
		Message:       d.Message,
		CreatedAt:     d.CreatedAt,
	}
}

func requestDocToModel(d mongoRequestDoc) models.ContactRequest {
	return models.ContactRequest{
		ID:             d.ID,
		ItemID:         d.ItemID,
		ItemType:       d.ItemType,
		ItemTitle:      d.ItemTitle,
		RequesterID:    d.RequesterID,
		RequesterName:  d.RequesterName,
		RequesterEmail: d.RequesterEmail,
		RecipientID:    d.RecipientID,
		RecipientName:  d.RecipientName,
		RecipientEmail: d.RecipientEmail,
		Message:        d.Message,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
	}
}

func (s *MongoWorkflowService) FileClaim(claimant models.UserRef, itemID string, req *models.FileClaimRequest) (*models.Claim, error) {
	item, err := s.items.GetByID(models.TypeFound, itemID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanClaim(*item, claimant); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc := mongoClaimDoc{
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
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := s.claimsColl.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return claimDocToModel(doc), nil
}

func (s *MongoWorkflowService) ApproveClaim(actor models.UserRef, claimID string) (*models.Claim, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoClaimDoc
	if err := s.claimsColl.FindOne(ctx, bson.M{"_id": claimID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	if doc.FoundByUID != actor.UID {
		return nil, ErrUnauthorized
	}
	if doc.Status != models.ClaimPending {
		return nil, lifecycle.ErrInvalidTransition
	}

	// Item first; the claim flips only after the item write succeeds.
	claimedBy := models.UserRef{UID: doc.ClaimantID, Name: doc.ClaimantName, Email: doc.ClaimantEmail}
	if _, err := s.items.MarkClaimed(actor, doc.ItemID, doc.ID, claimedBy); err != nil {
		return nil, err
	}

	res := s.claimsColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": claimID},
		bson.M{"$set": bson.M{"status": models.ClaimApproved}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated mongoClaimDoc
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return claimDocToModel(updated), nil
}

func (s *MongoWorkflowService) RejectClaim(actor models.UserRef, claimID string) (*models.Claim, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := s.claimsColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": claimID, "found_by_uid": actor.UID, "status": models.ClaimPending},
		bson.M{"$set": bson.M{"status": models.ClaimRejected}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated mongoClaimDoc
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish not found vs unauthorized vs already-resolved.
			var exists mongoClaimDoc
			if err2 := s.claimsColl.FindOne(ctx, bson.M{"_id": claimID}).Decode(&exists); err2 == mongo.ErrNoDocuments {
				return nil, ErrClaimNotFound
			} else if err2 != nil {
				return nil, err2
			} else if exists.FoundByUID != actor.UID {
				return nil, ErrUnauthorized
			}
			return nil, lifecycle.ErrInvalidTransition
		}
		return nil, err
	}
	return claimDocToModel(updated), nil
}

func (s *MongoWorkflowService) ListClaims(uid string) ([]models.Claim, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cur, err := s.claimsColl.Find(
		ctx,
		bson.M{"$or": bson.A{
			bson.M{"claimant_id": uid},
			bson.M{"found_by_uid": uid},
		}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Claim, 0)
	for cur.Next(ctx) {
		var d mongoClaimDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, *claimDocToModel(d))
	}
	return out, cur.Err()
}

func (s *MongoWorkflowService) FileContactRequest(requester models.UserRef, itemType models.ItemType, itemID string, req *models.FileContactRequest) (*models.ContactRequest, error) {
	item, err := s.items.GetByID(itemType, itemID)
	if err != nil {
		return nil, err
	}
	if requester.UID == "" || lifecycle.IsOwner(*item, requester) {
		return nil, lifecycle.ErrNotAllowed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc := mongoRequestDoc{
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
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := s.requestsColl.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.items.IncrementContactCount(itemType, itemID); err != nil {
		log.Printf("[FileContactRequest] counter update failed item=%s: %v", itemID, err)
	}

	redacted := requestDocToModel(doc).RedactedFor(requester.UID)
	return &redacted, nil
}

func (s *MongoWorkflowService) HasContacted(uid string, itemType models.ItemType, itemID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := s.requestsColl.CountDocuments(ctx, bson.M{
		"requester_id": uid,
		"item_type":    itemType,
		"item_id":      itemID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoWorkflowService) ApproveContactRequest(actor models.UserRef, requestID string) (*models.ContactRequest, error) {
	updated, err := s.resolveRequest(actor, requestID, models.RequestApproved)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.NotifyContactApproved(ctx, *updated); err != nil {
			log.Printf("[ApproveContactRequest] notification failed request=%s: %v", requestID, err)
		}
	}

	redacted := updated.RedactedFor(actor.UID)
	return &redacted, nil
}

func (s *MongoWorkflowService) RejectContactRequest(actor models.UserRef, requestID string) (*models.ContactRequest, error) {
	updated, err := s.resolveRequest(actor, requestID, models.RequestRejected)
	if err != nil {
		return nil, err
	}
	redacted := updated.RedactedFor(actor.UID)
	return &redacted, nil
}

func (s *MongoWorkflowService) resolveRequest(actor models.UserRef, requestID string, status models.RequestStatus) (*models.ContactRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := s.requestsColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": requestID, "recipient_id": actor.UID, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated mongoRequestDoc
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			var exists mongoRequestDoc
			if err2 := s.requestsColl.FindOne(ctx, bson.M{"_id": requestID}).Decode(&exists); err2 == mongo.ErrNoDocuments {
				return nil, ErrRequestNotFound
			} else if err2 != nil {
				return nil, err2
			} else if exists.RecipientID != actor.UID {
				return nil, ErrUnauthorized
			}
			return nil, lifecycle.ErrInvalidTransition
		}
		return nil, err
	}

	m := requestDocToModel(updated)
	return &m, nil
}

func (s *MongoWorkflowService) DeleteContactRequest(actor models.UserRef, requestID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoRequestDoc
	if err := s.requestsColl.FindOne(ctx, bson.M{"_id": requestID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrRequestNotFound
		}
		return err
	}

	allowed := doc.RequesterID == actor.UID ||
		(doc.RecipientID == actor.UID && doc.Status != models.RequestPending)
	if !allowed {
		return ErrUnauthorized
	}

	if _, err := s.requestsColl.DeleteOne(ctx, bson.M{"_id": requestID}); err != nil {
		return err
	}
	return nil
}

func (s *MongoWorkflowService) ListContactRequests(uid string) ([]models.ContactRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cur, err := s.requestsColl.Find(
		ctx,
		bson.M{"$or": bson.A{
			bson.M{"requester_id": uid},
			bson.M{"recipient_id": uid},
		}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.ContactRequest, 0)
	for cur.Next(ctx) {
		var d mongoRequestDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, requestDocToModel(d).RedactedFor(uid))
	}
	return out, cur.Err()
}
