package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"apprehension-service/internal/db"
	"apprehension-service/internal/model"
	"apprehension-service/internal/query"
)

type ApprehensionRepository struct {
	coll *mongo.Collection
}

func NewApprehensionRepository(database *mongo.Database) *ApprehensionRepository {
	return &ApprehensionRepository{coll: database.Collection(db.CollectionApprehensions)}
}

// Find returns one page of records, newest dateOfApprehension first.
func (r *ApprehensionRepository) Find(ctx context.Context, match query.Match, skip, limit int64) ([]model.Apprehension, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: query.FieldDateOfApprehension, Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, compileMatch(match), opts)
	if err != nil {
		return nil, fmt.Errorf("apprehension find: %w", err)
	}

	records := make([]model.Apprehension, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("apprehension decode: %w", err)
	}
	return records, nil
}

func (r *ApprehensionRepository) Count(ctx context.Context, match query.Match) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, compileMatch(match))
	if err != nil {
		return 0, fmt.Errorf("apprehension count: %w", err)
	}
	return total, nil
}

func (r *ApprehensionRepository) GetByID(ctx context.Context, id bson.ObjectID) (*model.Apprehension, error) {
	var record model.Apprehension
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ApprehensionRepository) Insert(ctx context.Context, record *model.Apprehension) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("apprehension insert: %w", err)
	}
	if id, ok := result.InsertedID.(bson.ObjectID); ok {
		record.ID = id
	}
	return nil
}

// InsertMany writes records unordered so one bad row does not abort the
// batch; the inserted count may be lower than the input.
func (r *ApprehensionRepository) InsertMany(ctx context.Context, records []model.Apprehension) (int, error) {
	now := time.Now().UTC()
	docs := make([]any, 0, len(records))
	for i := range records {
		records[i].CreatedAt = now
		records[i].UpdatedAt = now
		docs = append(docs, records[i])
	}

	result, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if result != nil && len(result.InsertedIDs) > 0 {
		return len(result.InsertedIDs), nil
	}
	if err != nil {
		return 0, fmt.Errorf("apprehension insert many: %w", err)
	}
	return 0, nil
}

func (r *ApprehensionRepository) Update(ctx context.Context, id bson.ObjectID, update model.ApprehensionUpdate) (*model.Apprehension, error) {
	set := updateFields(update)
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var record model.Apprehension
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ApprehensionRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("apprehension delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func updateFields(u model.ApprehensionUpdate) bson.M {
	set := bson.M{}
	if u.DateOfSubmission != nil {
		set["dateOfSubmission"] = *u.DateOfSubmission
	}
	if u.DaysInterval != nil {
		set["daysInterval"] = *u.DaysInterval
	}
	if u.DateOfApprehension != nil {
		set["dateOfApprehension"] = *u.DateOfApprehension
	}
	if u.TimeOfApprehension != nil {
		set["timeOfApprehension"] = *u.TimeOfApprehension
	}
	if u.Agency != nil {
		set["agency"] = *u.Agency
	}
	if u.ApprehendingOfficer != nil {
		set["apprehendingOfficer"] = *u.ApprehendingOfficer
	}
	if u.CaseNumber != nil {
		set["caseNumber"] = *u.CaseNumber
	}
	if u.Driver != nil {
		set["driver"] = *u.Driver
	}
	if u.Violation != nil {
		set["violation"] = *u.Violation
	}
	if u.ConfiscatedItem != nil {
		set["confiscatedItem"] = *u.ConfiscatedItem
	}
	if u.RestrictionCode != nil {
		set["restrictionCode"] = *u.RestrictionCode
	}
	if u.Conditions != nil {
		set["conditions"] = *u.Conditions
	}
	if u.Nationality != nil {
		set["nationality"] = *u.Nationality
	}
	if u.Gender != nil {
		set["gender"] = *u.Gender
	}
	if u.MvType != nil {
		set["mvType"] = *u.MvType
	}
	if u.PlateNumber != nil {
		set["plateNumber"] = *u.PlateNumber
	}
	if u.PlaceOfApprehension != nil {
		set["placeOfApprehension"] = *u.PlaceOfApprehension
	}
	if u.Remarks != nil {
		set["remarks"] = *u.Remarks
	}
	return set
}
