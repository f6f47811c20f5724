// Package mongodb provides document-store persistence for activities and
// accounts.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"example.com/agenda/internal/domain"
)

const activitiesCollection = "activities"

// ActivityRepository stores activity documents. Every query folds the
// owner id into the filter, so cross-owner reads are impossible at this
// layer rather than a handler concern.
type ActivityRepository struct {
	col *mongo.Collection
}

// NewActivityRepository constructs an ActivityRepository on the given
// database.
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(activitiesCollection)}
}

type activityDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	Priority    *int               `bson:"priority,omitempty"`
	DueAt       any                `bson:"due_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	Status      string             `bson:"status"`
	Contacts    any                `bson:"contacts,omitempty"`
}

func (d activityDoc) toRecord() domain.Record {
	return domain.Record{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Priority:    d.Priority,
		DueAt:       sanitize(d.DueAt),
		CreatedAt:   d.CreatedAt,
		Status:      d.Status,
		Contacts:    sanitize(d.Contacts),
	}
}

func docFromRecord(rec domain.Record) activityDoc {
	return activityDoc{
		OwnerID:     rec.OwnerID,
		Name:        rec.Name,
		Category:    rec.Category,
		Description: rec.Description,
		Priority:    rec.Priority,
		DueAt:       rec.DueAt,
		CreatedAt:   rec.CreatedAt,
		Status:      rec.Status,
		Contacts:    rec.Contacts,
	}
}

// ownedFilter builds the id+owner filter. A malformed id cannot match any
// document, so it maps straight to not-found.
func ownedFilter(ownerID, activityID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(activityID)
	if err != nil {
		return nil, domain.ErrActivityNotFound
	}
	return bson.M{"_id": oid, "owner_id": ownerID}, nil
}

// ListByOwner returns every activity owned by the caller, oldest first.
func (r *ActivityRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Record, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID})
}

// ListActive returns owned activities whose status is not in the excluded
// set.
func (r *ActivityRepository) ListActive(ctx context.Context, ownerID string, excludedStatuses []string) ([]domain.Record, error) {
	filter := bson.M{"owner_id": ownerID}
	if len(excludedStatuses) > 0 {
		filter["status"] = bson.M{"$nin": excludedStatuses}
	}
	return r.list(ctx, filter)
}

func (r *ActivityRepository) list(ctx context.Context, filter bson.M) ([]domain.Record, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find activities: %w", err)
	}
	defer cursor.Close(ctx)

	records := []domain.Record{}
	for cursor.Next(ctx) {
		var doc activityDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		records = append(records, doc.toRecord())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return records, nil
}

// Get returns one owned activity.
func (r *ActivityRepository) Get(ctx context.Context, ownerID, activityID string) (*domain.Record, error) {
	filter, err := ownedFilter(ownerID, activityID)
	if err != nil {
		return nil, err
	}

	var doc activityDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, fmt.Errorf("find activity: %w", err)
	}
	rec := doc.toRecord()
	return &rec, nil
}

// Create inserts a new document and returns its generated id.
func (r *ActivityRepository) Create(ctx context.Context, rec domain.Record) (string, error) {
	result, err := r.col.InsertOne(ctx, docFromRecord(rec))
	if err != nil {
		return "", fmt.Errorf("insert activity: %w", err)
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// Replace overwrites an owned document in full, keeping its id.
func (r *ActivityRepository) Replace(ctx context.Context, ownerID, activityID string, rec domain.Record) error {
	filter, err := ownedFilter(ownerID, activityID)
	if err != nil {
		return err
	}

	doc := docFromRecord(rec)
	doc.ID = filter["_id"].(primitive.ObjectID)
	result, err := r.col.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("replace activity: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// SetFields applies a partial update to an owned document.
func (r *ActivityRepository) SetFields(ctx context.Context, ownerID, activityID string, fields map[string]any) error {
	filter, err := ownedFilter(ownerID, activityID)
	if err != nil {
		return err
	}

	result, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// Delete removes an owned document.
func (r *ActivityRepository) Delete(ctx context.Context, ownerID, activityID string) error {
	filter, err := ownedFilter(ownerID, activityID)
	if err != nil {
		return err
	}

	result, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// Ping verifies the backing database answers.
func (r *ActivityRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}
