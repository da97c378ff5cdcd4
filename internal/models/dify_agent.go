package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

const (
	DefaultModelProvider = "langgenius/openai/openai"
	DefaultModelName     = "gpt-4o"
	DefaultAgentType     = "Knowledge Agent (RAG)"
	DefaultPrePrompt     = "You are a helpful assistant."

	// DefaultConversationUser is the user id assumed when Dify does not report one.
	DefaultConversationUser = "preview-user"
)

// ConversationUsers are the end-user ids tried against the app API when the
// console cannot list an app's conversations.
var ConversationUsers = []string{"preview-user", "voice-session-abc123", "admin", "user", "test-user"}

// CreateDifyAgentRequest provisions a chat app in the configured Dify workspace.
type CreateDifyAgentRequest struct {
	AgentName      string `json:"agentName"`
	OrganizationID string `json:"organizationId"`
	ModelProvider  string `json:"modelProvider"`
	ModelName      string `json:"modelName"`
	AgentType      string `json:"agentType"`
}

func (r *CreateDifyAgentRequest) Validate() error {
	if strings.TrimSpace(r.AgentName) == "" || strings.TrimSpace(r.OrganizationID) == "" {
		return utils.NewValidationError("Missing required fields: agentName and organizationId")
	}
	return nil
}

// ApplyDefaults fills the model and agent type when the caller left them out.
func (r *CreateDifyAgentRequest) ApplyDefaults() {
	if r.ModelProvider == "" {
		r.ModelProvider = DefaultModelProvider
	}
	if r.ModelName == "" {
		r.ModelName = DefaultModelName
	}
	if r.AgentType == "" {
		r.AgentType = DefaultAgentType
	}
}

// DifyAgent is a provisioned Dify app together with its service API key.
type DifyAgent struct {
	AppID          string `json:"appId"`
	AppKey         string `json:"appKey"`
	AppName        string `json:"appName"`
	ServiceOrigin  string `json:"serviceOrigin"`
	OrganizationID string `json:"organizationId"`
	ModelProvider  string `json:"modelProvider"`
	ModelName      string `json:"modelName"`
}

// DifyAgentSummary is one app found while walking every workspace.
type DifyAgentSummary struct {
	AppID         string `json:"appId"`
	AppName       string `json:"appName"`
	WorkspaceID   string `json:"workspaceId"`
	WorkspaceName string `json:"workspaceName,omitempty"`
}

type DeleteDifyAgentRequest struct {
	AgentName      string `json:"agentName"`
	OrganizationID string `json:"organizationId"`
	AppID          string `json:"appId"`
}

func (r *DeleteDifyAgentRequest) Validate() error {
	if strings.TrimSpace(r.AgentName) == "" || strings.TrimSpace(r.OrganizationID) == "" {
		return utils.NewValidationError("Missing required fields: agentName and organizationId")
	}
	return nil
}

// AssociateAgentRequest links an existing Dify app to a voice agent.
type AssociateAgentRequest struct {
	AppID          string `json:"appId"`
	AppName        string `json:"appName"`
	WorkspaceID    string `json:"workspaceId"`
	OrganizationID string `json:"organizationId"`
}

func (r *AssociateAgentRequest) Validate() error {
	if r.AppID == "" || r.WorkspaceID == "" || r.OrganizationID == "" {
		return utils.NewValidationError("Missing required fields: appId, workspaceId, and organizationId are required")
	}
	return nil
}

var prefixUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// AgentPrefix turns an app name into the voice agent id: unsafe characters
// become underscores and the result is lower-cased.
func AgentPrefix(name string) string {
	return strings.ToLower(prefixUnsafe.ReplaceAllString(name, "_"))
}

// AgentRegistration is the full voice agent record written when a Dify app is associated.
type AgentRegistration struct {
	AgentPrefix     string         `json:"agent_prefix"`
	OrganizationID  string         `json:"organization_id"`
	ChatbotAPI      string         `json:"chatbot_api"`
	ChatbotKey      string         `json:"chatbot_key"`
	TTSConfig       map[string]any `json:"tts_config"`
	STTConfig       map[string]any `json:"stt_config"`
	InitialMessage  string         `json:"initial_message"`
	NudgeText       string         `json:"nudge_text"`
	NudgeInterval   int            `json:"nudge_interval"`
	MaxNudges       int            `json:"max_nudges"`
	TypingVolume    float64        `json:"typing_volume"`
	MaxCallDuration int            `json:"max_call_duration"`
	SystemPrompt    string         `json:"system_prompt"`
	ModelProvider   string         `json:"model_provider"`
	ModelName       string         `json:"model_name"`
	ModelLiveURL    string         `json:"model_live_url"`
	Config          map[string]any `json:"config"`
	CreatedAt       float64        `json:"created_at"`
	UpdatedAt       float64        `json:"updated_at"`
}

// NewAgentRegistration builds the default OpenAI voice setup for a newly associated app.
func NewAgentRegistration(prefix, orgID, chatbotAPI, chatbotKey, workspaceID, modelLiveURL string, now time.Time) *AgentRegistration {
	ts := float64(now.UnixMilli()) / 1000
	return &AgentRegistration{
		AgentPrefix:    prefix,
		OrganizationID: orgID,
		ChatbotAPI:     chatbotAPI,
		ChatbotKey:     chatbotKey,
		TTSConfig: map[string]any{
			"provider": "openai",
			"openai": map[string]any{
				"api_key":         "",
				"model":           "gpt-4o-mini-tts",
				"response_format": "mp3",
				"voice":           "alloy",
				"language":        "en",
				"speed":           1,
			},
			"elevenlabs": nil,
		},
		STTConfig: map[string]any{
			"provider": "openai",
			"deepgram": nil,
			"openai": map[string]any{
				"api_key":  "",
				"model":    "gpt-4o-mini-transcribe",
				"language": "en",
			},
		},
		InitialMessage:  "Hello! How can I help you today?",
		NudgeText:       "Hello, Are you still there?",
		NudgeInterval:   15,
		MaxNudges:       3,
		TypingVolume:    0.8,
		MaxCallDuration: 300,
		SystemPrompt:    "You are a helpful AI assistant.",
		ModelProvider:   "OpenAI",
		ModelName:       "GPT-4o",
		ModelLiveURL:    modelLiveURL,
		Config:          map[string]any{"workspace_id": workspaceID},
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
}

// ModelConfigRequest replaces an app's model configuration.
// APIKey is the model provider key; it is required but Dify keeps its own copy.
type ModelConfigRequest struct {
	Provider       string         `json:"provider"`
	Model          string         `json:"model"`
	APIKey         string         `json:"api_key"`
	ChatbotAPIKey  string         `json:"chatbot_api_key"`
	DatasetConfigs map[string]any `json:"dataset_configs"`
	AppID          string         `json:"app_id"`
	PrePrompt      string         `json:"pre_prompt"`
}

func (r *ModelConfigRequest) Validate() error {
	switch {
	case r.Provider == "" || r.Model == "" || r.APIKey == "":
		return utils.NewValidationError("Provider, model, and API key are required")
	case r.ChatbotAPIKey == "":
		return utils.NewValidationError("Chatbot API key is required")
	case r.AppID == "":
		return utils.NewValidationError("App ID is required. Please provide app_id in request body.")
	}
	return nil
}

// Payload is the complete console model-config body Dify Studio sends.
func (r *ModelConfigRequest) Payload() map[string]any {
	prompt := r.PrePrompt
	if prompt == "" {
		prompt = DefaultPrePrompt
	}
	datasets := r.DatasetConfigs
	if datasets == nil {
		datasets = map[string]any{
			"retrieval_model":  "single",
			"datasets":         map[string]any{"datasets": []any{}},
			"top_k":            4,
			"reranking_enable": false,
		}
	}
	return map[string]any{
		"pre_prompt":               prompt,
		"prompt_type":              "simple",
		"chat_prompt_config":       map[string]any{},
		"completion_prompt_config": map[string]any{},
		"user_input_form":          []any{},
		"dataset_query_variable":   "",
		"more_like_this":           map[string]any{"enabled": false},
		"opening_statement":        "",
		"suggested_questions":      []any{},
		"sensitive_word_avoidance": map[string]any{"enabled": false},
		"speech_to_text":           map[string]any{"enabled": false},
		"text_to_speech":           map[string]any{"enabled": false, "voice": "", "language": ""},
		"file_upload": map[string]any{
			"image": map[string]any{
				"detail":           "high",
				"enabled":          false,
				"number_limits":    3,
				"transfer_methods": []string{"remote_url", "local_file"},
			},
			"enabled":                     false,
			"allowed_file_types":          []any{},
			"allowed_file_extensions":     []string{".JPG", ".JPEG", ".PNG", ".GIF", ".WEBP", ".SVG", ".MP4", ".MOV", ".MPEG", ".WEBM"},
			"allowed_file_upload_methods": []string{"remote_url", "local_file"},
			"number_limits":               3,
		},
		"suggested_questions_after_answer": map[string]any{"enabled": false},
		"retriever_resource":               map[string]any{"enabled": false},
		"agent_mode": map[string]any{
			"enabled":       false,
			"max_iteration": 10,
			"strategy":      "function_call",
			"tools":         []any{},
		},
		"model":           chatModel(r.Provider, r.Model),
		"dataset_configs": datasets,
	}
}

func chatModel(provider, name string) map[string]any {
	return map[string]any{
		"provider": provider,
		"name":     name,
		"mode":     "chat",
		"completion_params": map[string]any{
			"temperature": 0.3,
			"stop":        []any{},
		},
	}
}

// PromptConfigRequest replaces only the system prompt of an app.
type PromptConfigRequest struct {
	Prompt        string `json:"prompt"`
	ChatbotAPIKey string `json:"chatbot_api_key"`
	AppID         string `json:"app_id"`
}

// Greetings the dashboard used to prepend to prompts; they are stripped in this order.
var promptGreetings = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^You are an expert calendar management assistant\.\s*`),
	regexp.MustCompile(`(?i)^You are a helpful assistant\.\s*`),
	regexp.MustCompile(`(?i)^Always be helpful, accurate, and proactive in managing schedules\.\s*`),
	regexp.MustCompile(`(?i)^Thank you for calling Wellness Partners\. This is Riley, your scheduling agent\. How may I help you today\?\s*`),
	regexp.MustCompile(`(?i)^Hello! I'm Riley, your scheduling assistant\. How can I help you today\?\s*`),
	regexp.MustCompile(`(?i)^Hi there! I'm here to help you with your scheduling needs\. What can I do for you today\?\s*`),
	regexp.MustCompile(`(?i)^Good day! I'm Riley, your appointment scheduling assistant\. How may I assist you today\?\s*`),
}

// CleanPrompt drops a leading greeting left over from older prompt templates.
func CleanPrompt(prompt string) string {
	for _, re := range promptGreetings {
		prompt = re.ReplaceAllString(prompt, "")
	}
	return strings.TrimSpace(prompt)
}

// PromptConfigPayload keeps every setting of current and swaps in prompt.
// Without a current config a minimal chat model config is sent.
func PromptConfigPayload(current map[string]any, prompt string) map[string]any {
	if current == nil {
		return map[string]any{
			"model":      chatModel(DefaultModelProvider, DefaultModelName),
			"pre_prompt": prompt,
		}
	}
	out := make(map[string]any, len(current)+1)
	for k, v := range current {
		out[k] = v
	}
	out["pre_prompt"] = prompt
	return out
}

// AnnotateConversation adds the user and app ids the dashboard needs to a console conversation.
// appUser is the app API user the conversation was listed under, or "" for console listings.
func AnnotateConversation(conv map[string]any, appID, appUser string) map[string]any {
	endUser, _ := conv["from_end_user_id"].(string)
	sessionID, _ := conv["from_end_user_session_id"].(string)

	fallback := appUser
	if fallback == "" {
		fallback = DefaultConversationUser
	}
	userID := endUser
	if userID == "" {
		userID = fallback
	}
	if sessionID == "" {
		sessionID = fallback
	}

	out := make(map[string]any, len(conv)+5)
	for k, v := range conv {
		out[k] = v
	}
	out["user_id"] = userID
	out["app_user_id"] = userID
	if appUser != "" {
		out["app_user_id"] = appUser
		out["from_end_user_id"] = userID
	}
	out["session_id"] = sessionID
	out["app_id"] = appID
	return out
}

type AgentTransferPhoneRequest struct {
	TransferPhoneNumber string `json:"transfer_phonenumber"`
}

type AgentDeleteByOrgRequest struct {
	AgentName string `json:"agentName"`
}
