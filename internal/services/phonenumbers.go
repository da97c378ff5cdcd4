package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

// PhoneNumberExistsError is returned when an organization imports a number twice.
type PhoneNumberExistsError struct {
	PhoneNumber string
}

func (e *PhoneNumberExistsError) Error() string {
	return fmt.Sprintf("Phone number %s already exists for this organization.", e.PhoneNumber)
}

// PhoneNumberStore keeps the numbers imported into each organization.
type PhoneNumberStore interface {
	Import(ctx context.Context, n *models.ImportedPhoneNumber) error
	ByOrganization(ctx context.Context, orgID string) ([]models.ImportedPhoneNumber, error)
	Assign(ctx context.Context, phoneNumber, agentID string) error
	Unassign(ctx context.Context, phoneNumber string) error
}

type MongoPhoneNumberStore struct {
	coll *mongo.Collection
}

func NewMongoPhoneNumberStore(db *mongo.Database) *MongoPhoneNumberStore {
	return &MongoPhoneNumberStore{coll: db.Collection("phone_numbers")}
}

// EnsureIndexes makes (organizationId, phoneNumber) unique.
func (s *MongoPhoneNumberStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "organizationId", Value: 1}, {Key: "phoneNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoPhoneNumberStore) Import(ctx context.Context, n *models.ImportedPhoneNumber) error {
	count, err := s.coll.CountDocuments(ctx, bson.M{"organizationId": n.OrganizationID, "phoneNumber": n.PhoneNumber})
	if err != nil {
		return err
	}
	if count > 0 {
		return &PhoneNumberExistsError{PhoneNumber: n.PhoneNumber}
	}
	_, err = s.coll.InsertOne(ctx, n)
	if mongo.IsDuplicateKeyError(err) {
		return &PhoneNumberExistsError{PhoneNumber: n.PhoneNumber}
	}
	return err
}

func (s *MongoPhoneNumberStore) ByOrganization(ctx context.Context, orgID string) ([]models.ImportedPhoneNumber, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "importTimestamp", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"organizationId": orgID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var numbers []models.ImportedPhoneNumber
	if err := cursor.All(ctx, &numbers); err != nil {
		return nil, err
	}
	if numbers == nil {
		numbers = make([]models.ImportedPhoneNumber, 0)
	}
	return numbers, nil
}

// Assign marks a number as used by agentID. Numbers that were never imported are left alone.
func (s *MongoPhoneNumberStore) Assign(ctx context.Context, phoneNumber, agentID string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"phoneNumber": phoneNumber},
		bson.M{"$set": bson.M{"agentId": agentID, "status": "assigned"}})
	return err
}

func (s *MongoPhoneNumberStore) Unassign(ctx context.Context, phoneNumber string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"phoneNumber": phoneNumber},
		bson.M{"$set": bson.M{"status": "available"}, "$unset": bson.M{"agentId": ""}})
	return err
}
