package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// ConversationLogStore archives Dify conversations.
type ConversationLogStore interface {
	Upsert(ctx context.Context, entry *models.ConversationLog) error
	Summary(ctx context.Context, orgID string) (*models.LogsSummary, error)
	Export(ctx context.Context, start, end time.Time) ([]models.ConversationLog, error)
	Clean(ctx context.Context, before time.Time, orgID string) (int64, error)
}

type MongoConversationLogStore struct {
	coll *mongo.Collection
}

func NewMongoConversationLogStore(db *mongo.Database) *MongoConversationLogStore {
	return &MongoConversationLogStore{coll: db.Collection("conversation_logs")}
}

func (s *MongoConversationLogStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "conversationAt", Value: 1}}},
	})
	return err
}

func (s *MongoConversationLogStore) Upsert(ctx context.Context, entry *models.ConversationLog) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"conversationId": entry.ConversationID},
		bson.M{"$set": entry},
		options.Update().SetUpsert(true))
	return err
}

func (s *MongoConversationLogStore) Summary(ctx context.Context, orgID string) (*models.LogsSummary, error) {
	filter := bson.M{}
	if orgID != "" {
		filter["organizationId"] = orgID
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "messages", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$conversation.messages", bson.A{}}},
			}}}}}},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Messages int64 `bson:"messages"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	orgs, err := s.coll.Distinct(ctx, "organizationId", filter)
	if err != nil {
		return nil, err
	}

	summary := &models.LogsSummary{TotalLogs: total, Organizations: []string{}}
	if len(groups) > 0 {
		summary.TotalMessages = groups[0].Messages
	}
	for _, o := range orgs {
		if name, ok := o.(string); ok && name != "" {
			summary.Organizations = append(summary.Organizations, name)
		}
	}
	return summary, nil
}

func (s *MongoConversationLogStore) Export(ctx context.Context, start, end time.Time) ([]models.ConversationLog, error) {
	filter := bson.M{"conversationAt": bson.M{"$gte": start, "$lte": end}}
	findOptions := options.Find().SetSort(bson.D{{Key: "conversationAt", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []models.ConversationLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = make([]models.ConversationLog, 0)
	}
	return logs, nil
}

// Clean removes conversations that happened before the cutoff.
func (s *MongoConversationLogStore) Clean(ctx context.Context, before time.Time, orgID string) (int64, error) {
	filter := bson.M{"conversationAt": bson.M{"$lt": before}}
	if orgID != "" {
		filter["organizationId"] = orgID
	}
	res, err := s.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Archiver copies Dify conversations into a ConversationLogStore.
type Archiver struct {
	Dify  *DifyClient
	Store ConversationLogStore
	now   func() time.Time
}

func NewArchiver(dify *DifyClient, store ConversationLogStore) *Archiver {
	return &Archiver{Dify: dify, Store: store, now: time.Now}
}

const archivePageSize = 100

// SaveLogs archives every conversation of req.AppID in the requested window.
func (a *Archiver) SaveLogs(ctx context.Context, req *models.SaveLogsRequest) (*models.SaveLogsResult, error) {
	if req.AppID == "" {
		return nil, utils.NewValidationError("app_id is required")
	}
	session, err := a.Dify.Login(ctx)
	if err != nil {
		return nil, err
	}

	var convs []models.Conversation
	for page := 1; ; page++ {
		batch, err := session.ChatConversations(ctx, req.AppID, ConversationQuery{
			Page: page, Limit: archivePageSize, Start: req.StartDate, End: req.EndDate,
		})
		if err != nil {
			return nil, err
		}
		convs = append(convs, batch...)
		if len(batch) < archivePageSize {
			break
		}
	}
	log.Printf("Archiving %d conversations for app %s", len(convs), req.AppID)

	result := &models.SaveLogsResult{Success: true, TotalConversations: len(convs)}
	savedAt := a.now().UTC()
	for _, conv := range convs {
		msgs, err := session.ChatMessages(ctx, req.AppID, conv.ID)
		if err != nil {
			log.Printf("Failed to fetch messages for conversation %s: %v", conv.ID, err)
			msgs = []models.ConversationMessage{}
		}
		conv.Messages = msgs

		entry := &models.ConversationLog{
			ConversationID: conv.ID,
			AppID:          req.AppID,
			OrganizationID: req.OrganizationID,
			Conversation:   conv,
			ConversationAt: time.Unix(conv.CreatedAt, 0).UTC(),
			SavedAt:        savedAt,
		}
		if err := a.Store.Upsert(ctx, entry); err != nil {
			log.Printf("Failed to save conversation %s: %v", conv.ID, err)
			result.FailedCount++
			continue
		}
		result.SavedCount++
	}
	return result, nil
}

// Prune drops archived conversations older than days.
func (a *Archiver) Prune(ctx context.Context, days int, orgID string) (int64, error) {
	if days <= 0 {
		return 0, utils.NewValidationError("days must be a positive number")
	}
	cutoff := a.now().AddDate(0, 0, -days)
	return a.Store.Clean(ctx, cutoff, orgID)
}
