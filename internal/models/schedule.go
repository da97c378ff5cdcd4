package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCancelled = "cancelled"
)

// ScheduledCall is an outbound call an agent should place at a given time.
type ScheduledCall struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"schedule_id"`
	OrganizationID      string             `bson:"organizationId" json:"organization_id"`
	AgentID             string             `bson:"agentId" json:"agent_id"`
	CallType            string             `bson:"callType" json:"call_type"`
	RecipientPhone      string             `bson:"recipientPhone" json:"recipient_phone"`
	ScheduledTime       time.Time          `bson:"scheduledTime" json:"scheduled_time"`
	MessageTemplate     string             `bson:"messageTemplate" json:"message_template"`
	FlexibleTimeMinutes int                `bson:"flexibleTimeMinutes" json:"flexible_time_minutes"`
	MaxRetries          int                `bson:"maxRetries" json:"max_retries"`
	Status              string             `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updated_at"`
}

type ScheduleCreateRequest struct {
	OrganizationID      string `json:"organization_id"`
	AgentID             string `json:"agent_id"`
	CallType            string `json:"call_type"`
	RecipientPhone      string `json:"recipient_phone"`
	ScheduledTime       string `json:"scheduled_time"`
	MessageTemplate     string `json:"message_template"`
	FlexibleTimeMinutes int    `json:"flexible_time_minutes"`
	MaxRetries          int    `json:"max_retries"`
}

type ScheduleUpdateRequest struct {
	CallType            *string `json:"call_type,omitempty"`
	RecipientPhone      *string `json:"recipient_phone,omitempty"`
	ScheduledTime       *string `json:"scheduled_time,omitempty"`
	MessageTemplate     *string `json:"message_template,omitempty"`
	FlexibleTimeMinutes *int    `json:"flexible_time_minutes,omitempty"`
	MaxRetries          *int    `json:"max_retries,omitempty"`
	Status              *string `json:"status,omitempty"`
}

// ToScheduledCall validates the request and builds the record to insert.
func (r *ScheduleCreateRequest) ToScheduledCall(now time.Time) (*ScheduledCall, error) {
	if r.OrganizationID == "" || r.AgentID == "" || r.CallType == "" || r.RecipientPhone == "" || r.ScheduledTime == "" {
		return nil, utils.NewValidationError("Missing required fields: organization_id, agent_id, call_type, recipient_phone, scheduled_time")
	}
	at, err := time.Parse(time.RFC3339, r.ScheduledTime)
	if err != nil {
		return nil, utils.NewValidationError("scheduled_time must be an RFC3339 timestamp")
	}
	if msg := utils.ValidatePhone(r.RecipientPhone); msg != "" {
		return nil, utils.NewValidationError(msg)
	}

	call := &ScheduledCall{
		ID:                  primitive.NewObjectID(),
		OrganizationID:      r.OrganizationID,
		AgentID:             r.AgentID,
		CallType:            r.CallType,
		RecipientPhone:      utils.FormatPhoneNumber(r.RecipientPhone),
		ScheduledTime:       at.UTC(),
		MessageTemplate:     r.MessageTemplate,
		FlexibleTimeMinutes: r.FlexibleTimeMinutes,
		MaxRetries:          r.MaxRetries,
		Status:              ScheduleStatusScheduled,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if call.FlexibleTimeMinutes <= 0 {
		call.FlexibleTimeMinutes = 15
	}
	if call.MaxRetries <= 0 {
		call.MaxRetries = 3
	}
	return call, nil
}

// Fields returns the bson-named fields to $set. An empty map means nothing to update.
func (r *ScheduleUpdateRequest) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if r.CallType != nil {
		fields["callType"] = *r.CallType
	}
	if r.RecipientPhone != nil {
		if msg := utils.ValidatePhone(*r.RecipientPhone); msg != "" {
			return nil, utils.NewValidationError(msg)
		}
		fields["recipientPhone"] = utils.FormatPhoneNumber(*r.RecipientPhone)
	}
	if r.ScheduledTime != nil {
		at, err := time.Parse(time.RFC3339, *r.ScheduledTime)
		if err != nil {
			return nil, utils.NewValidationError("scheduled_time must be an RFC3339 timestamp")
		}
		fields["scheduledTime"] = at.UTC()
	}
	if r.MessageTemplate != nil {
		fields["messageTemplate"] = *r.MessageTemplate
	}
	if r.FlexibleTimeMinutes != nil {
		fields["flexibleTimeMinutes"] = *r.FlexibleTimeMinutes
	}
	if r.MaxRetries != nil {
		fields["maxRetries"] = *r.MaxRetries
	}
	if r.Status != nil {
		fields["status"] = strings.ToLower(*r.Status)
	}
	return fields, nil
}

// ImportedPhoneNumber is a Twilio number brought into an organization.
type ImportedPhoneNumber struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PhoneID         string             `bson:"phoneId" json:"phone_id"`
	PhoneNumber     string             `bson:"phoneNumber" json:"phone_number"`
	OrganizationID  string             `bson:"organizationId" json:"organization_id"`
	AgentID         string             `bson:"agentId,omitempty" json:"agent_id"`
	AccountSID      string             `bson:"accountSid" json:"-"`
	Environment     string             `bson:"environment" json:"environment"`
	Status          string             `bson:"status" json:"status"`
	ImportTimestamp time.Time          `bson:"importTimestamp" json:"import_timestamp"`
}

type ImportTwilioRequest struct {
	PhoneNumber    string `json:"phone_number"`
	AccountSID     string `json:"account_sid"`
	AuthToken      string `json:"auth_token"`
	OrganizationID string `json:"organization_id"`
	AgentID        string `json:"agent_id"`
}

type AssignPhoneRequest struct {
	AgentID        string `json:"agent_id"`
	OrganizationID string `json:"organization_id"`
}
