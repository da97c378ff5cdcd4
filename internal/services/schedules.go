package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

var ErrScheduleNotFound = errors.New("Schedule not found")

// ScheduleStore persists scheduled calls.
type ScheduleStore interface {
	Create(ctx context.Context, call *models.ScheduledCall) error
	Get(ctx context.Context, id string) (*models.ScheduledCall, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.ScheduledCall, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ScheduleFilter) ([]models.ScheduledCall, error)
}

// ScheduleFilter narrows a listing. Empty fields are ignored.
type ScheduleFilter struct {
	OrganizationID string
	AgentID        string
	Status         string
	Limit          int64
	Offset         int64
}

type MongoScheduleStore struct {
	coll *mongo.Collection
}

func NewMongoScheduleStore(db *mongo.Database) *MongoScheduleStore {
	return &MongoScheduleStore{coll: db.Collection("scheduled_calls")}
}

func (s *MongoScheduleStore) Create(ctx context.Context, call *models.ScheduledCall) error {
	_, err := s.coll.InsertOne(ctx, call)
	return err
}

func (s *MongoScheduleStore) Get(ctx context.Context, id string) (*models.ScheduledCall, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrScheduleNotFound
	}
	var call models.ScheduledCall
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (s *MongoScheduleStore) Update(ctx context.Context, id string, fields map[string]any) (*models.ScheduledCall, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrScheduleNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var call models.ScheduledCall
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (s *MongoScheduleStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrScheduleNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (s *MongoScheduleStore) List(ctx context.Context, f ScheduleFilter) ([]models.ScheduledCall, error) {
	filter := bson.M{}
	if f.OrganizationID != "" {
		filter["organizationId"] = f.OrganizationID
	}
	if f.AgentID != "" {
		filter["agentId"] = f.AgentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledTime", Value: 1}})
	if f.Limit > 0 {
		findOptions.SetLimit(f.Limit)
	}
	if f.Offset > 0 {
		findOptions.SetSkip(f.Offset)
	}
	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var calls []models.ScheduledCall
	if err := cursor.All(ctx, &calls); err != nil {
		return nil, err
	}
	if calls == nil {
		calls = make([]models.ScheduledCall, 0)
	}
	return calls, nil
}
