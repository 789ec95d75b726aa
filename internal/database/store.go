package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"lab-inventory-api-server/internal/inventory"
	"lab-inventory-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	componentCollection   = "components"
	recordCollection      = "borrowing_records"
	procurementCollection = "procurement_requests"
)

// Store implements inventory.Store on MongoDB collections. Quantity
// adjustments and record status transitions are single conditional updates,
// so the check-then-mutate races of concurrent approvals, rejects and
// returns are resolved inside the database.
type Store struct {
	DB *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{DB: db}
}

var _ inventory.Store = (*Store)(nil)

// --- Catalog ---

func (s *Store) InsertComponent(ctx context.Context, c *models.Component) error {
	result, err := s.DB.Collection(componentCollection).InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to insert component: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (s *Store) GetComponent(ctx context.Context, componentID string) (*models.Component, error) {
	var comp models.Component
	err := s.DB.Collection(componentCollection).
		FindOne(ctx, bson.M{"componentId": componentID}).Decode(&comp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: component %s", inventory.ErrNotFound, componentID)
		}
		return nil, fmt.Errorf("failed to retrieve component: %w", err)
	}
	return &comp, nil
}

func (s *Store) ListComponents(ctx context.Context, f inventory.ComponentFilter) ([]models.Component, error) {
	filter := bson.M{}
	if f.NameQuery != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.NameQuery), Options: "i"}
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.LowStock {
		filter["$expr"] = bson.M{"$lte": bson.A{"$availableQuantity", "$threshold"}}
	}

	cursor, err := s.DB.Collection(componentCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer cursor.Close(ctx)

	var comps []models.Component
	if err := cursor.All(ctx, &comps); err != nil {
		return nil, fmt.Errorf("failed to decode components: %w", err)
	}
	if comps == nil {
		comps = []models.Component{}
	}
	return comps, nil
}

func (s *Store) SaveComponent(ctx context.Context, c *models.Component) error {
	result, err := s.DB.Collection(componentCollection).
		ReplaceOne(ctx, bson.M{"componentId": c.ComponentID}, c)
	if err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: component %s", inventory.ErrNotFound, c.ComponentID)
	}
	return nil
}

func (s *Store) DeleteComponent(ctx context.Context, componentID string) error {
	result, err := s.DB.Collection(componentCollection).
		DeleteOne(ctx, bson.M{"componentId": componentID})
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: component %s", inventory.ErrNotFound, componentID)
	}
	return nil
}

// AdjustAvailable changes availableQuantity by delta in one conditional
// update. Decrements match only documents with enough stock; increments are
// clamped at totalQuantity by a pipeline update. Either way no interleaving
// of concurrent adjustments can leave the invariant violated.
func (s *Store) AdjustAvailable(ctx context.Context, componentID string, delta int) (*models.Component, error) {
	coll := s.DB.Collection(componentCollection)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comp models.Component
	var err error
	if delta < 0 {
		filter := bson.M{
			"componentId":       componentID,
			"availableQuantity": bson.M{"$gte": -delta},
		}
		update := bson.M{
			"$inc":         bson.M{"availableQuantity": delta},
			"$currentDate": bson.M{"updatedAt": true},
		}
		err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&comp)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the component is gone or the stock check failed.
			if _, gerr := s.GetComponent(ctx, componentID); gerr != nil {
				return nil, gerr
			}
			return nil, fmt.Errorf("%w: component %s", inventory.ErrInsufficientStock, componentID)
		}
	} else {
		update := mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"availableQuantity": bson.M{"$min": bson.A{
					bson.M{"$add": bson.A{"$availableQuantity", delta}},
					"$totalQuantity",
				}},
				"updatedAt": "$$NOW",
			}}},
		}
		err = coll.FindOneAndUpdate(ctx, bson.M{"componentId": componentID}, update, opts).Decode(&comp)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: component %s", inventory.ErrNotFound, componentID)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust available quantity: %w", err)
	}
	return &comp, nil
}

// --- Ledger ---

func (s *Store) InsertRecord(ctx context.Context, r *models.BorrowingRecord) error {
	result, err := s.DB.Collection(recordCollection).InsertOne(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to insert borrowing record: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, recordID string) (*models.BorrowingRecord, error) {
	var rec models.BorrowingRecord
	err := s.DB.Collection(recordCollection).
		FindOne(ctx, bson.M{"recordId": recordID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: record %s", inventory.ErrNotFound, recordID)
		}
		return nil, fmt.Errorf("failed to retrieve borrowing record: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListRecords(ctx context.Context, f inventory.RecordFilter) ([]models.BorrowingRecord, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.ComponentID != "" {
		filter["componentId"] = f.ComponentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.DB.Collection(recordCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query borrowing records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.BorrowingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode borrowing records: %w", err)
	}
	if records == nil {
		records = []models.BorrowingRecord{}
	}
	return records, nil
}

// TransitionRecord flips a record's status in one conditional update. The
// filter matches only while the record still holds fromStatus, so of several
// concurrent transitions exactly one writes; the rest see no match and fail.
func (s *Store) TransitionRecord(ctx context.Context, recordID, fromStatus string, set inventory.RecordUpdate) (*models.BorrowingRecord, error) {
	fields := bson.M{"status": set.Status}
	if set.BorrowDate != nil {
		fields["borrowDate"] = set.BorrowDate
	}
	if set.ActualReturnDate != nil {
		fields["actualReturnDate"] = set.ActualReturnDate
	}
	if set.Remarks != nil {
		fields["remarks"] = *set.Remarks
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec models.BorrowingRecord
	err := s.DB.Collection(recordCollection).FindOneAndUpdate(ctx,
		bson.M{"recordId": recordID, "status": fromStatus},
		bson.M{"$set": fields}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the record is gone or it already left fromStatus.
		current, gerr := s.GetRecord(ctx, recordID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("%w: record %s is %s", inventory.ErrInvalidTransition, recordID, current.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition borrowing record: %w", err)
	}
	return &rec, nil
}

// --- Procurement ---

func (s *Store) InsertProcurementRequest(ctx context.Context, p *models.ProcurementRequest) error {
	result, err := s.DB.Collection(procurementCollection).InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to insert procurement request: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (s *Store) ListProcurementRequests(ctx context.Context, status string) ([]models.ProcurementRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.DB.Collection(procurementCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query procurement requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.ProcurementRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode procurement requests: %w", err)
	}
	if requests == nil {
		requests = []models.ProcurementRequest{}
	}
	return requests, nil
}
