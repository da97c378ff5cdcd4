package models

import (
	"sort"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// AgentUpdateRequest configures a voice agent. The TTS and STT blocks are
// forwarded as sent, so provider specific keys survive.
type AgentUpdateRequest struct {
	ChatbotAPI     string         `json:"chatbot_api"`
	ChatbotKey     string         `json:"chatbot_key"`
	TTSConfig      map[string]any `json:"tts_config"`
	STTConfig      map[string]any `json:"stt_config"`
	InitialMessage *string        `json:"initial_message,omitempty"`
	NudgeText      *string        `json:"nudge_text,omitempty"`
	NudgeInterval  *float64       `json:"nudge_interval,omitempty"`
	MaxNudges      *int           `json:"max_nudges,omitempty"`
	TypingVolume   *float64       `json:"typing_volume,omitempty"`
}

func (r *AgentUpdateRequest) Validate() error {
	if r.ChatbotAPI == "" || r.ChatbotKey == "" || r.TTSConfig == nil || r.STTConfig == nil {
		return utils.NewValidationError("Missing required fields: chatbot_api, chatbot_key, tts_config, stt_config")
	}
	if !truthy(r.TTSConfig["voice_id"]) || !truthy(r.TTSConfig["tts_api_key"]) || !truthy(r.TTSConfig["model"]) {
		return utils.NewValidationError("Invalid TTS configuration")
	}
	// speed may legitimately be 0, it only has to be present.
	if _, ok := r.TTSConfig["speed"]; !ok {
		return utils.NewValidationError("Invalid TTS configuration")
	}
	if !truthy(r.STTConfig["api_key"]) || !truthy(r.STTConfig["model"]) || !truthy(r.STTConfig["language"]) {
		return utils.NewValidationError("Invalid STT configuration")
	}
	return nil
}

type AgentPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// ActiveCalls is the live backend's call summary with defaults filled in.
type ActiveCalls struct {
	ActiveCalls      []any  `json:"active_calls"`
	TotalActiveCalls int    `json:"total_active_calls"`
	Timestamp        string `json:"timestamp"`
}

// NormalizeAgents accepts every agents listing shape the live backend has used:
// {"agents": [...]}, {"data": [...]}, a bare array, {"agents": {id: {...}}},
// or any object whose first array or object field holds the agents.
func NormalizeAgents(result any) []any {
	switch v := result.(type) {
	case []any:
		return v
	case map[string]any:
		if list, ok := v["agents"].([]any); ok {
			return list
		}
		if list, ok := v["data"].([]any); ok {
			return list
		}
		if byID, ok := v["agents"].(map[string]any); ok {
			return agentsFromMap(byID)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch field := v[k].(type) {
			case []any:
				return field
			case map[string]any:
				return agentsFromMap(field)
			}
		}
	}
	return []any{}
}

func agentsFromMap(byID map[string]any) []any {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	agents := make([]any, 0, len(ids))
	for _, id := range ids {
		agent := map[string]any{"agentId": id}
		if fields, ok := byID[id].(map[string]any); ok {
			for k, val := range fields {
				agent[k] = val
			}
		}
		agents = append(agents, agent)
	}
	return agents
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	}
	return true
}
