package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversationMessage struct {
	ID                      string  `bson:"id" json:"id"`
	ConversationID          string  `bson:"conversationId" json:"conversation_id"`
	Query                   string  `bson:"query" json:"query"`
	Answer                  string  `bson:"answer" json:"answer"`
	CreatedAt               int64   `bson:"createdAt" json:"created_at"`
	MessageTokens           int     `bson:"messageTokens" json:"message_tokens"`
	AnswerTokens            int     `bson:"answerTokens" json:"answer_tokens"`
	ProviderResponseLatency float64 `bson:"providerResponseLatency" json:"provider_response_latency"`
	FromSource              string  `bson:"fromSource" json:"from_source"`
	FromEndUserID           string  `bson:"fromEndUserId,omitempty" json:"from_end_user_id,omitempty"`
	FromAccountID           string  `bson:"fromAccountId,omitempty" json:"from_account_id,omitempty"`
}

// Conversation is a Dify chat conversation as listed by the console API.
type Conversation struct {
	ID            string                `bson:"id" json:"id"`
	Name          string                `bson:"name" json:"name"`
	Status        string                `bson:"status" json:"status"`
	FromSource    string                `bson:"fromSource" json:"from_source"`
	CreatedAt     int64                 `bson:"createdAt" json:"created_at"`
	UpdatedAt     int64                 `bson:"updatedAt" json:"updated_at"`
	DialogueCount int                   `bson:"dialogueCount" json:"dialogue_count"`
	Messages      []ConversationMessage `bson:"messages" json:"messages"`
}

// ConversationLog is an archived conversation, keyed by the Dify conversation id.
type ConversationLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ConversationID string             `bson:"conversationId" json:"conversation_id"`
	AppID          string             `bson:"appId" json:"app_id"`
	OrganizationID string             `bson:"organizationId" json:"organization_id"`
	Conversation   Conversation       `bson:"conversation" json:"conversation"`
	ConversationAt time.Time          `bson:"conversationAt" json:"conversation_at"`
	SavedAt        time.Time          `bson:"savedAt" json:"saved_at"`
}

type SaveLogsRequest struct {
	AppID          string `json:"app_id"`
	OrganizationID string `json:"organization_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

type SaveLogsResult struct {
	Success            bool `json:"success"`
	TotalConversations int  `json:"total_conversations"`
	SavedCount         int  `json:"saved_count"`
	FailedCount        int  `json:"failed_count"`
}

// LogsSummary aggregates the archive per organization.
type LogsSummary struct {
	TotalLogs     int64    `json:"total_logs"`
	TotalMessages int64    `json:"total_messages"`
	Organizations []string `json:"organizations"`
}
