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

type MongoItemService struct {
	client    *mongo.Client
	db        *mongo.Database
	lostColl  *mongo.Collection
	foundColl *mongo.Collection
}

type mongoItemDoc struct {
	ID                   string              `bson:"_id"`
	Title                string              `bson:"title"`
	Description          string              `bson:"description"`
	Category             string              `bson:"category"`
	Location             string              `bson:"location"`
	Date                 string              `bson:"date"`
	ImageURL             string              `bson:"image_url,omitempty"`
	Status               models.ItemStatus   `bson:"status"`
	ReportedBy           models.UserRef      `bson:"reported_by"`
	Reward               float64             `bson:"reward,omitempty"`
	ClaimID              string              `bson:"claim_id,omitempty"`
	ClaimedBy            *models.UserRef     `bson:"claimed_by,omitempty"`
	DeliveredBy          *models.ActionStamp `bson:"delivered_by,omitempty"`
	ReceivedBy           *models.ActionStamp `bson:"received_by,omitempty"`
	ContactRequestsCount int                 `bson:"contact_requests_count"`
	CreatedAt            time.Time           `bson:"created_at"`
	UpdatedAt            time.Time           `bson:"updated_at"`
}

func NewMongoItemService(ctx context.Context, mongoURI, dbName string) (*MongoItemService, error) {
	// Atlas occasionally fails TLS negotiation in some environments unless we force TLS 1.2.
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
	lost := db.Collection("lost_items")
	found := db.Collection("found_items")

	svc := &MongoItemService{
		client:    client,
		db:        db,
		lostColl:  lost,
		foundColl: found,
	}

	// Best-effort indexes.
	for _, coll := range []*mongo.Collection{lost, found} {
		_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "reported_by.uid", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "location", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		})
	}

	log.Printf("MongoDB connected (items): db=%s", dbName)
	return svc, nil
}

func (s *MongoItemService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoItemService) coll(itemType models.ItemType) *mongo.Collection {
	if itemType == models.TypeLost {
		return s.lostColl
	}
	return s.foundColl
}

func itemDocToModel(d mongoItemDoc, itemType models.ItemType) *models.Item {
	return &models.Item{
		ID:                   d.ID,
		Type:                 itemType,
		Title:                d.Title,
		Description:          d.Description,
		Category:             d.Category,
		Location:             d.Location,
		Date:                 d.Date,
		ImageURL:             d.ImageURL,
		Status:               d.Status,
		ReportedBy:           d.ReportedBy,
		Reward:               d.Reward,
		ClaimID:              d.ClaimID,
		ClaimedBy:            d.ClaimedBy,
		DeliveredBy:          d.DeliveredBy,
		ReceivedBy:           d.ReceivedBy,
		ContactRequestsCount: d.ContactRequestsCount,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func (s *MongoItemService) Create(actor models.UserRef, itemType models.ItemType, req *models.CreateItemRequest) (*models.Item, error) {
	if actor.UID == "" || !itemType.Valid() {
		return nil, ErrBadInput
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	date := req.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	doc := mongoItemDoc{
		ID:          uuid.New().String(),
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

	if _, err := s.coll(itemType).InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	return itemDocToModel(doc, itemType), nil
}

func (s *MongoItemService) GetByID(itemType models.ItemType, itemID string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoItemDoc
	if err := s.coll(itemType).FindOne(ctx, bson.M{"_id": itemID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return itemDocToModel(doc, itemType), nil
}

func (s *MongoItemService) List(itemType models.ItemType, query *models.ListItemsQuery) (*models.ItemPage, error) {
	if !itemType.Valid() {
		return nil, ErrBadInput
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 12
	}

	filter := bson.M{}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	if query.Location != "" {
		filter["location"] = query.Location
	}
	if query.Cursor != "" {
		cursorTime, err := time.Parse(time.RFC3339Nano, query.Cursor)
		if err != nil {
			return nil, ErrBadInput
		}
		filter["created_at"] = bson.M{"$lt": cursorTime}
	}

	cur, err := s.coll(itemType).Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)+1),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := make([]mongoItemDoc, 0, limit)
	for cur.Next(ctx) {
		var d mongoItemDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	hasMore := len(docs) > limit
	if hasMore {
		docs = docs[:limit]
	}

	items := make([]models.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, *itemDocToModel(d, itemType))
	}

	// Fetch-time sweep: promote stale processing items before returning the
	// page. Runs only on found listings and is idempotent across fetches.
	if itemType == models.TypeFound {
		items = s.sweep(ctx, items)
	}

	page := &models.ItemPage{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		page.NextCursor = items[len(items)-1].CreatedAt.Format(time.RFC3339Nano)
	}
	return page, nil
}

func (s *MongoItemService) sweep(ctx context.Context, items []models.Item) []models.Item {
	now := time.Now().UTC()
	advanced := 0
	for i, item := range items {
		if !lifecycle.SweepDue(item, now) {
			continue
		}
		_, err := s.foundColl.UpdateOne(ctx, bson.M{"_id": item.ID}, bson.M{
			"$set": bson.M{"status": models.StatusFound, "updated_at": now},
		})
		if err != nil {
			// The item stays processing in this page; the next fetch retries.
			log.Printf("[sweep] item=%s error=%v", item.ID, err)
			continue
		}
		items[i].Status = models.StatusFound
		items[i].UpdatedAt = now
		advanced++
	}
	if advanced > 0 {
		log.Printf("[sweep] advanced %d items from processing to found", advanced)
	}
	return items
}

func (s *MongoItemService) ListByReporter(itemType models.ItemType, uid string) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cur, err := s.coll(itemType).Find(
		ctx,
		bson.M{"reported_by.uid": uid},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Item, 0)
	for cur.Next(ctx) {
		var d mongoItemDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, *itemDocToModel(d, itemType))
	}
	return out, cur.Err()
}

func (s *MongoItemService) Delete(actor models.UserRef, itemType models.ItemType, itemID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure ownership.
	var doc mongoItemDoc
	if err := s.coll(itemType).FindOne(ctx, bson.M{"_id": itemID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrItemNotFound
		}
		return err
	}
	if !lifecycle.IsOwner(*itemDocToModel(doc, itemType), actor) {
		return ErrUnauthorized
	}

	if _, err := s.coll(itemType).DeleteOne(ctx, bson.M{"_id": itemID}); err != nil {
		return err
	}
	return nil
}

func (s *MongoItemService) MarkDone(actor models.UserRef, itemType models.ItemType, itemID string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoItemDoc
	if err := s.coll(itemType).FindOne(ctx, bson.M{"_id": itemID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	tr, err := lifecycle.NextOnDone(*itemDocToModel(doc, itemType), actor, now)
	if err != nil {
		return nil, err
	}

	set := bson.M{"status": tr.Status, "updated_at": now}
	if tr.DeliveredBy != nil {
		set["delivered_by"] = tr.DeliveredBy
	}
	if tr.ReceivedBy != nil {
		set["received_by"] = tr.ReceivedBy
	}

	// Partial-field update: a concurrent writer keeps whatever else it set.
	res := s.coll(itemType).FindOneAndUpdate(
		ctx,
		bson.M{"_id": itemID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated mongoItemDoc
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return itemDocToModel(updated, itemType), nil
}

func (s *MongoItemService) MarkClaimed(actor models.UserRef, itemID string, claimID string, claimedBy models.UserRef) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var doc mongoItemDoc
	if err := s.foundColl.FindOne(ctx, bson.M{"_id": itemID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if err := lifecycle.CanEnterClaimed(*itemDocToModel(doc, models.TypeFound), actor); err != nil {
		return nil, err
	}

	res := s.foundColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": itemID},
		bson.M{"$set": bson.M{
			"status":     models.StatusClaimed,
			"claim_id":   claimID,
			"claimed_by": claimedBy,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated mongoItemDoc
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return itemDocToModel(updated, models.TypeFound), nil
}

func (s *MongoItemService) IncrementContactCount(itemType models.ItemType, itemID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := s.coll(itemType).UpdateOne(ctx, bson.M{"_id": itemID}, bson.M{
		"$inc": bson.M{"contact_requests_count": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}
