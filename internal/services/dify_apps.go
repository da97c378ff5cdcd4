package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

var (
	ErrNoAppID  = errors.New("No app ID received from import")
	ErrNoAppKey = errors.New("No API key received")
)

const (
	appPageSize = 100
	maxAppPages = 10
)

// --- Workspaces ---

type DifyWorkspace struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// Key is the workspace id, whichever field Dify filled in.
func (w DifyWorkspace) Key() string {
	if w.ID != "" {
		return w.ID
	}
	return w.TenantID
}

func (s *DifySession) Workspaces(ctx context.Context) ([]DifyWorkspace, error) {
	var out struct {
		Data       []DifyWorkspace `json:"data"`
		Workspaces []DifyWorkspace `json:"workspaces"`
	}
	if err := s.api.Do(ctx, "Failed to fetch workspaces", http.MethodGet, "/console/api/workspaces", nil, &out); err != nil {
		return nil, err
	}
	if out.Data != nil {
		return out.Data, nil
	}
	return out.Workspaces, nil
}

// SwitchWorkspace makes workspaceID the session's active workspace. The
// X-Workspace-Id header is updated even if Dify rejects the switch.
func (s *DifySession) SwitchWorkspace(ctx context.Context, workspaceID string) error {
	err := s.api.Do(ctx, "Workspace switch failed", http.MethodPost, "/console/api/workspaces/switch", map[string]any{"tenant_id": workspaceID}, nil)
	s.api.Header.Set("X-Workspace-Id", workspaceID)
	return err
}

func (s *DifySession) switchOrWarn(ctx context.Context, workspaceID string) {
	if err := s.SwitchWorkspace(ctx, workspaceID); err != nil {
		log.Printf("Workspace switch to %s failed, continuing: %v", shortID(workspaceID), err)
	}
}

// AppsInWorkspace switches to workspaceID and pages through its apps.
func (s *DifySession) AppsInWorkspace(ctx context.Context, workspaceID string) ([]DifyApp, error) {
	s.switchOrWarn(ctx, workspaceID)

	var apps []DifyApp
	for page := 1; page <= maxAppPages; page++ {
		var out struct {
			Data  []DifyApp `json:"data"`
			Total int       `json:"total"`
		}
		path := "/console/api/apps?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(appPageSize)
		if err := s.api.Do(ctx, "Failed to fetch apps", http.MethodGet, path, nil, &out); err != nil {
			if page == 1 {
				return nil, err
			}
			log.Printf("Stopped listing apps of workspace %s at page %d: %v", shortID(workspaceID), page, err)
			break
		}
		apps = append(apps, out.Data...)
		if len(out.Data) < appPageSize || page*appPageSize >= out.Total {
			break
		}
	}
	return apps, nil
}

// AllApps lists the apps of every workspace the admin account can see, along
// with the number of workspaces found. Workspaces that cannot be listed are skipped.
func (s *DifySession) AllApps(ctx context.Context) ([]models.DifyAgentSummary, int) {
	workspaces, err := s.Workspaces(ctx)
	if err != nil {
		log.Printf("Failed to fetch workspaces: %v", err)
	}

	agents := []models.DifyAgentSummary{}
	for _, ws := range workspaces {
		id := ws.Key()
		if id == "" {
			continue
		}
		apps, err := s.AppsInWorkspace(ctx, id)
		if err != nil {
			log.Printf("Failed to fetch apps in workspace %s: %v", shortID(id), err)
			continue
		}
		for _, app := range apps {
			name := app.Name
			if name == "" {
				name = "Unnamed Agent"
			}
			agents = append(agents, models.DifyAgentSummary{AppID: app.ID, AppName: name, WorkspaceID: id, WorkspaceName: ws.Name})
		}
	}
	return agents, len(workspaces)
}

// FindAppInWorkspaces looks for the app owning apiKey, starting with the
// configured workspace. It returns the app, the workspace it lives in and
// how many workspaces were searched.
func (s *DifySession) FindAppInWorkspaces(ctx context.Context, apiKey string) (*DifyApp, string, int, error) {
	searched := 0
	seen := map[string]bool{}

	try := func(workspaceID string) *DifyApp {
		searched++
		seen[workspaceID] = true
		s.switchOrWarn(ctx, workspaceID)
		app, err := s.FindAppByAPIKey(ctx, apiKey)
		if err != nil {
			if !errors.Is(err, ErrAppNotFound) {
				log.Printf("Error searching workspace %s: %v", shortID(workspaceID), err)
			}
			return nil
		}
		return app
	}

	if s.workspaceID != "" {
		if app := try(s.workspaceID); app != nil {
			return app, s.workspaceID, searched, nil
		}
	}

	workspaces, err := s.Workspaces(ctx)
	if err != nil {
		log.Printf("Failed to fetch workspaces: %v", err)
	}
	for _, ws := range workspaces {
		id := ws.Key()
		if id == "" || seen[id] {
			continue
		}
		if app := try(id); app != nil {
			return app, id, searched, nil
		}
	}
	return nil, "", searched, ErrAppNotFound
}

// --- App lifecycle ---

type appDSL struct {
	Version     string         `yaml:"version"`
	Kind        string         `yaml:"kind"`
	App         appDSLApp      `yaml:"app"`
	ModelConfig appDSLModelCfg `yaml:"model_config"`
}

type appDSLApp struct {
	Mode        string `yaml:"mode"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type appDSLModelCfg struct {
	Model struct {
		Provider string `yaml:"provider"`
		Name     string `yaml:"name"`
	} `yaml:"model"`
	PrePrompt  string `yaml:"pre_prompt"`
	Parameters struct {
		Temperature float64 `yaml:"temperature"`
	} `yaml:"parameters"`
}

// ChatAppDSL renders the Dify import document for a plain chat app.
func ChatAppDSL(name, provider, model string) ([]byte, error) {
	doc := appDSL{
		Version: "0.3.0",
		Kind:    "app",
		App:     appDSLApp{Mode: "chat", Name: name, Description: "Created via API on Dify"},
	}
	doc.ModelConfig.Model.Provider = provider
	doc.ModelConfig.Model.Name = model
	doc.ModelConfig.PrePrompt = models.DefaultPrePrompt
	doc.ModelConfig.Parameters.Temperature = 0.3
	return yaml.Marshal(&doc)
}

// ImportApp creates an app from a DSL document and returns its id.
func (s *DifySession) ImportApp(ctx context.Context, dsl []byte) (string, error) {
	body := map[string]any{"mode": "yaml-content", "yaml_content": string(dsl)}
	var out struct {
		AppID string `json:"app_id"`
		Data  struct {
			AppID string `json:"app_id"`
		} `json:"data"`
	}
	if err := s.api.Do(ctx, "App import failed", http.MethodPost, "/console/api/apps/imports", body, &out); err != nil {
		return "", err
	}
	if out.AppID != "" {
		return out.AppID, nil
	}
	if out.Data.AppID != "" {
		return out.Data.AppID, nil
	}
	return "", ErrNoAppID
}

// CreateAppAPIKey issues a new service API key for appID.
func (s *DifySession) CreateAppAPIKey(ctx context.Context, appID string) (string, error) {
	var out map[string]any
	if err := s.api.Do(ctx, "API key creation failed", http.MethodPost, "/console/api/apps/"+url.PathEscape(appID)+"/api-keys", map[string]any{}, &out); err != nil {
		return "", err
	}
	if data, ok := out["data"].(map[string]any); ok {
		if key := keyValue(data); key != "" {
			return key, nil
		}
	}
	if key := keyValue(out); key != "" {
		return key, nil
	}
	return "", ErrNoAppKey
}

// FirstAppAPIKey returns the first existing key of appID, or "" when it has none.
func (s *DifySession) FirstAppAPIKey(ctx context.Context, appID string) (string, error) {
	keys, err := s.AppAPIKeys(ctx, appID)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keyValue(keys[0]), nil
}

func keyValue(m map[string]any) string {
	for _, field := range []string{"api_key", "key", "token"} {
		if v, ok := m[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// DifyAppDetail is the part of the console app detail the dashboard uses.
type DifyAppDetail struct {
	ID          string
	Name        string
	Mode        string
	WorkspaceID string
	APIServer   string
	ModelConfig map[string]any
}

// ServiceOrigin is the API server without its /v1 suffix.
func (d *DifyAppDetail) ServiceOrigin() string {
	return strings.Replace(d.APIServer, "/v1", "", 1)
}

func (s *DifySession) AppDetail(ctx context.Context, appID string) (*DifyAppDetail, error) {
	var out map[string]any
	if err := s.api.Do(ctx, "Failed to fetch app details", http.MethodGet, "/console/api/apps/"+url.PathEscape(appID), nil, &out); err != nil {
		return nil, err
	}
	if inner, ok := out["data"].(map[string]any); ok {
		out = inner
	}
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := out[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}
	d := &DifyAppDetail{
		ID:          str("id", "app_id"),
		Name:        str("name", "app_name"),
		Mode:        str("mode"),
		WorkspaceID: str("workspace_id"),
		APIServer:   str("api_server"),
	}
	d.ModelConfig, _ = out["model_config"].(map[string]any)
	return d, nil
}

func (s *DifySession) DeleteApp(ctx context.Context, appID string) error {
	return s.api.Do(ctx, "Failed to delete app", http.MethodDelete, "/console/api/apps/"+url.PathEscape(appID), nil, nil)
}

// UpdateModelConfig replaces the app's model configuration, prompt included.
func (s *DifySession) UpdateModelConfig(ctx context.Context, appID string, payload map[string]any) (any, error) {
	var out any
	err := s.api.Do(ctx, "Failed to configure model", http.MethodPost, "/console/api/apps/"+url.PathEscape(appID)+"/model-config", payload, &out)
	return out, err
}

// AppConversations lists the first page of an app's conversations, trying the
// chat, generic and completion console endpoints in turn.
func (s *DifySession) AppConversations(ctx context.Context, appID string) ([]map[string]any, error) {
	var lastErr error
	for _, kind := range []string{"chat-conversations", "conversations", "completion-conversations"} {
		var out struct {
			Data []map[string]any `json:"data"`
		}
		path := "/console/api/apps/" + url.PathEscape(appID) + "/" + kind + "?page=1&limit=100"
		if err := s.api.Do(ctx, "Failed to fetch conversations", http.MethodGet, path, nil, &out); err != nil {
			lastErr = err
			continue
		}
		if out.Data == nil {
			out.Data = []map[string]any{}
		}
		return out.Data, nil
	}
	return nil, lastErr
}

// CreateAgent provisions a chat app in the configured workspace and issues its API key.
func (d *DifyClient) CreateAgent(ctx context.Context, req *models.CreateDifyAgentRequest) (*models.DifyAgent, error) {
	if d != nil && d.workspaceID == "" {
		return nil, ErrNoWorkspace
	}
	s, err := d.Login(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Creating Dify agent %q in workspace %s", req.AgentName, shortID(d.workspaceID))
	s.switchOrWarn(ctx, d.workspaceID)

	dsl, err := ChatAppDSL(req.AgentName, req.ModelProvider, req.ModelName)
	if err != nil {
		return nil, err
	}
	appID, err := s.ImportApp(ctx, dsl)
	if err != nil {
		return nil, err
	}
	key, err := s.CreateAppAPIKey(ctx, appID)
	if err != nil {
		return nil, err
	}

	agent := &models.DifyAgent{
		AppID:          appID,
		AppKey:         key,
		AppName:        req.AgentName,
		OrganizationID: req.OrganizationID,
		ModelProvider:  req.ModelProvider,
		ModelName:      req.ModelName,
	}
	detail, err := s.AppDetail(ctx, appID)
	if err != nil {
		log.Printf("Failed to fetch details of app %s: %v", shortID(appID), err)
		return agent, nil
	}
	if detail.WorkspaceID != "" && detail.WorkspaceID != d.workspaceID {
		log.Printf("App %s was created in workspace %s, expected %s", shortID(appID), shortID(detail.WorkspaceID), shortID(d.workspaceID))
	}
	agent.ServiceOrigin = detail.ServiceOrigin()
	return agent, nil
}

// AppConversationsAs lists conversations through the app API as the given end user.
func (d *DifyClient) AppConversationsAs(ctx context.Context, apiKey, user string) ([]map[string]any, error) {
	api, err := d.serviceAPI(apiKey)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []map[string]any `json:"data"`
	}
	path := "/conversations?user=" + encodeComponent(user) + "&limit=100"
	if err := api.Do(ctx, "Failed to fetch conversations", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
