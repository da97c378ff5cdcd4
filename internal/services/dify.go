package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

var (
	ErrDifyNotConfigured = errors.New("Dify console credentials are not configured")
	ErrAppNotFound       = errors.New("App not found")
	ErrNoDatasetAPIKey   = errors.New("No API keys available and cannot create new ones (limit reached)")
	ErrNoWorkspace       = errors.New("DIFY_WORKSPACE_ID is not set. Agent creation requires a workspace ID.")
	ErrNoCrawlJob        = errors.New("Firecrawl service error: No job ID returned. Please ensure Firecrawl is properly configured on the backend.")
)

// CrawlerNotConfiguredError means the Dify backend has no working Firecrawl setup.
type CrawlerNotConfiguredError struct {
	Details string
}

func (e *CrawlerNotConfiguredError) Error() string {
	return "Firecrawl is not configured on the backend.\n\nTo enable URL crawling:\n1. Contact your administrator to configure Firecrawl\n2. Or use File or Text upload instead"
}

// CrawlRejectedError is a non-2xx answer to the crawl start request.
// Failures after the crawl has started are reported as plain errors.
type CrawlRejectedError struct {
	*UpstreamError
}

func (e *CrawlRejectedError) Unwrap() error { return e.UpstreamError }

// DifyClient logs into the Dify console and calls the dataset service API.
type DifyClient struct {
	consoleOrigin string
	serviceURL    string
	workspaceID   string
	email         string
	password      string
	httpClient    *http.Client
}

type DifyConfig struct {
	ConsoleOrigin string
	ServiceURL    string
	WorkspaceID   string
	Email         string
	Password      string
}

func NewDifyClient(cfg DifyConfig) *DifyClient {
	return &DifyClient{
		consoleOrigin: strings.TrimRight(cfg.ConsoleOrigin, "/"),
		serviceURL:    strings.TrimRight(cfg.ServiceURL, "/"),
		workspaceID:   cfg.WorkspaceID,
		email:         cfg.Email,
		password:      cfg.Password,
		httpClient:    NewUpstream("", nil).Client,
	}
}

// DifySession is an authenticated console session.
type DifySession struct {
	api         *Upstream
	workspaceID string
}

// Login authenticates against the console and returns a session.
func (d *DifyClient) Login(ctx context.Context) (*DifySession, error) {
	if d == nil || d.consoleOrigin == "" || d.email == "" || d.password == "" {
		return nil, ErrDifyNotConfigured
	}

	login := &Upstream{BaseURL: d.consoleOrigin, Header: http.Header{}, Client: d.httpClient}
	var resp struct {
		AccessToken string `json:"access_token"`
		Data        struct {
			AccessToken string `json:"access_token"`
			Token       string `json:"token"`
		} `json:"data"`
	}
	body := map[string]any{"email": d.email, "password": d.password, "language": "en-US", "remember_me": true}
	if err := login.Do(ctx, "Dify login failed", http.MethodPost, "/console/api/login", body, &resp); err != nil {
		return nil, err
	}

	token := resp.Data.AccessToken
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		token = resp.Data.Token
	}
	if token == "" {
		return nil, errors.New("Dify login failed: no access token in response")
	}

	header := http.Header{"Authorization": {"Bearer " + token}}
	if d.workspaceID != "" {
		header.Set("X-Workspace-Id", d.workspaceID)
	}
	return &DifySession{api: &Upstream{BaseURL: d.consoleOrigin, Header: header, Client: d.httpClient}, workspaceID: d.workspaceID}, nil
}

// --- Datasets ---

type difyDataset struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	DocumentCount      int    `json:"document_count"`
	WordCount          int    `json:"word_count"`
	EmbeddingAvailable bool   `json:"embedding_available"`
	CreatedAt          int64  `json:"created_at"`
	IndexingTechnique  string `json:"indexing_technique"`
	Permission         string `json:"permission"`
}

func (ds difyDataset) toKnowledgeBase() models.KnowledgeBase {
	kb := models.KnowledgeBase{
		ID:                ds.ID,
		Name:              ds.Name,
		Description:       ds.Description,
		DocumentCount:     ds.DocumentCount,
		WordCount:         ds.WordCount,
		Status:            "processing",
		CreatedAt:         models.UnixToISO(ds.CreatedAt),
		IndexingTechnique: ds.IndexingTechnique,
		Permission:        ds.Permission,
	}
	if ds.EmbeddingAvailable {
		kb.Status = "ready"
	}
	if kb.IndexingTechnique == "" {
		kb.IndexingTechnique = "high_quality"
	}
	if kb.Permission == "" {
		kb.Permission = "only_me"
	}
	return kb
}

func (s *DifySession) ListDatasets(ctx context.Context) ([]models.KnowledgeBase, error) {
	var out struct {
		Data []difyDataset `json:"data"`
	}
	if err := s.api.Do(ctx, "Failed to fetch knowledge bases", http.MethodGet, "/console/api/datasets?page=1&limit=100", nil, &out); err != nil {
		return nil, err
	}
	kbs := make([]models.KnowledgeBase, 0, len(out.Data))
	for _, ds := range out.Data {
		kbs = append(kbs, ds.toKnowledgeBase())
	}
	return kbs, nil
}

func (s *DifySession) CreateDataset(ctx context.Context, req *models.CreateKnowledgeBaseRequest) (*models.KnowledgeBase, error) {
	body := map[string]any{
		"name":               req.Name,
		"description":        req.Description,
		"indexing_technique": orDefault(req.IndexingTechnique, "high_quality"),
		"permission":         orDefault(req.Permission, "only_me"),
		"provider":           "vendor",
	}
	var ds difyDataset
	if err := s.api.Do(ctx, "Failed to create knowledge base", http.MethodPost, "/console/api/datasets", body, &ds); err != nil {
		return nil, err
	}
	kb := ds.toKnowledgeBase()
	return &kb, nil
}

func (s *DifySession) GetDataset(ctx context.Context, id string) (*models.KnowledgeBase, error) {
	var ds difyDataset
	if err := s.api.Do(ctx, "Failed to fetch knowledge base", http.MethodGet, "/console/api/datasets/"+url.PathEscape(id), nil, &ds); err != nil {
		return nil, err
	}
	kb := ds.toKnowledgeBase()
	return &kb, nil
}

func (s *DifySession) DeleteDataset(ctx context.Context, id string) error {
	return s.api.Do(ctx, "Failed to delete knowledge base", http.MethodDelete, "/console/api/datasets/"+url.PathEscape(id), nil, nil)
}

// --- Documents ---

type difyDocument struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IndexingStatus string `json:"indexing_status"`
	Enabled        bool   `json:"enabled"`
	WordCount      int    `json:"word_count"`
	CreatedAt      int64  `json:"created_at"`
	Batch          string `json:"batch"`
}

func (doc difyDocument) toKnowledgeDocument() models.KnowledgeDocument {
	return models.KnowledgeDocument{
		ID:        doc.ID,
		Name:      doc.Name,
		Status:    models.DocumentStatus(doc.IndexingStatus),
		Enabled:   doc.Enabled,
		WordCount: doc.WordCount,
		CreatedAt: models.UnixToISO(doc.CreatedAt),
		Batch:     doc.Batch,
	}
}

func (s *DifySession) ListDocuments(ctx context.Context, datasetID string) ([]models.KnowledgeDocument, error) {
	var out struct {
		Data []difyDocument `json:"data"`
	}
	path := "/console/api/datasets/" + url.PathEscape(datasetID) + "/documents?page=1&limit=100"
	if err := s.api.Do(ctx, "Failed to fetch documents", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	docs := make([]models.KnowledgeDocument, 0, len(out.Data))
	for _, d := range out.Data {
		docs = append(docs, d.toKnowledgeDocument())
	}
	return docs, nil
}

func (s *DifySession) DeleteDocument(ctx context.Context, datasetID, docID string) error {
	path := "/console/api/datasets/" + url.PathEscape(datasetID) + "/documents/" + url.PathEscape(docID)
	return s.api.Do(ctx, "Failed to delete document", http.MethodDelete, path, nil, nil)
}

// SetDocumentStatus applies enable, disable, archive or un_archive to one document.
func (s *DifySession) SetDocumentStatus(ctx context.Context, datasetID, docID, action string) error {
	path := fmt.Sprintf("/console/api/datasets/%s/documents/status/%s/batch?document_id=%s",
		url.PathEscape(datasetID), url.PathEscape(action), url.QueryEscape(docID))
	return s.api.Do(ctx, "Failed to update document status", http.MethodPatch, path, nil, nil)
}

func (s *DifySession) ListSegments(ctx context.Context, datasetID, docID string) (any, error) {
	path := fmt.Sprintf("/console/api/datasets/%s/documents/%s/segments?page=1&limit=100", url.PathEscape(datasetID), url.PathEscape(docID))
	var out any
	err := s.api.Do(ctx, "Failed to fetch segments", http.MethodGet, path, nil, &out)
	return out, err
}

func (s *DifySession) SetSegmentStatus(ctx context.Context, datasetID, docID, segmentID, action string) error {
	path := fmt.Sprintf("/console/api/datasets/%s/documents/%s/segment/%s?segment_id=%s",
		url.PathEscape(datasetID), url.PathEscape(docID), url.PathEscape(action), url.QueryEscape(segmentID))
	return s.api.Do(ctx, "Failed to update segment", http.MethodPatch, path, nil, nil)
}

func (s *DifySession) HitTesting(ctx context.Context, datasetID, query string, topK int) (any, error) {
	if topK <= 0 {
		topK = 3
	}
	body := map[string]any{
		"query": query,
		"retrieval_model": map[string]any{
			"search_method":           "semantic_search",
			"reranking_enable":        false,
			"top_k":                   topK,
			"score_threshold_enabled": false,
		},
	}
	var out any
	err := s.api.Do(ctx, "Failed to test retrieval", http.MethodPost, "/console/api/datasets/"+url.PathEscape(datasetID)+"/hit-testing", body, &out)
	return out, err
}

// --- Dataset API keys ---

func (s *DifySession) ListDatasetAPIKeys(ctx context.Context) ([]map[string]any, error) {
	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := s.api.Do(ctx, "Failed to fetch dataset API keys", http.MethodGet, "/console/api/datasets/api-keys", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *DifySession) CreateDatasetAPIKey(ctx context.Context, datasetID string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]any{"name": "API Key for Dataset " + datasetID}
	if err := s.api.Do(ctx, "Failed to create dataset API key", http.MethodPost, "/console/api/datasets/api-keys", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// DatasetAPIKey returns the first existing dataset API key, creating one when none exists.
func (s *DifySession) DatasetAPIKey(ctx context.Context, datasetID string) (string, error) {
	keys, err := s.ListDatasetAPIKeys(ctx)
	if err == nil && len(keys) > 0 {
		if token, ok := keys[0]["token"].(string); ok && token != "" {
			return token, nil
		}
	}
	token, err := s.CreateDatasetAPIKey(ctx, datasetID)
	if err != nil || token == "" {
		return "", ErrNoDatasetAPIKey
	}
	return token, nil
}

// --- Apps and conversations ---

type DifyApp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mode string `json:"mode"`
}

func (s *DifySession) ListApps(ctx context.Context) ([]DifyApp, error) {
	var out struct {
		Data []DifyApp `json:"data"`
	}
	if err := s.api.Do(ctx, "Failed to fetch apps", http.MethodGet, "/console/api/apps?page=1&limit=100", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *DifySession) AppAPIKeys(ctx context.Context, appID string) ([]map[string]any, error) {
	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := s.api.Do(ctx, "Failed to fetch app API keys", http.MethodGet, "/console/api/apps/"+url.PathEscape(appID)+"/api-keys", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// FindAppByAPIKey scans every app's keys for apiKey. Apps whose keys cannot be listed are skipped.
func (s *DifySession) FindAppByAPIKey(ctx context.Context, apiKey string) (*DifyApp, error) {
	apps, err := s.ListApps(ctx)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		keys, err := s.AppAPIKeys(ctx, apps[i].ID)
		if err != nil {
			continue
		}
		for _, k := range keys {
			for _, field := range []string{"api_key", "key", "token"} {
				if v, ok := k[field].(string); ok && v == apiKey {
					return &apps[i], nil
				}
			}
		}
	}
	return nil, ErrAppNotFound
}

// ConversationQuery narrows a conversation listing.
type ConversationQuery struct {
	Page  int
	Limit int
	Start string
	End   string
}

func (s *DifySession) ChatConversations(ctx context.Context, appID string, q ConversationQuery) ([]models.Conversation, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 100
	}
	params := "page=" + strconv.Itoa(q.Page) + "&limit=" + strconv.Itoa(q.Limit)
	if q.Start != "" {
		params += "&start=" + encodeComponent(q.Start)
	}
	if q.End != "" {
		params += "&end=" + encodeComponent(q.End)
	}

	var out struct {
		Data []models.Conversation `json:"data"`
	}
	path := "/console/api/apps/" + url.PathEscape(appID) + "/chat-conversations?" + params
	if err := s.api.Do(ctx, "Failed to fetch conversations", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *DifySession) ChatMessages(ctx context.Context, appID, conversationID string) ([]models.ConversationMessage, error) {
	var out struct {
		Data []models.ConversationMessage `json:"data"`
	}
	path := "/console/api/apps/" + url.PathEscape(appID) + "/chat-messages?conversation_id=" + url.QueryEscape(conversationID) + "&limit=100"
	if err := s.api.Do(ctx, "Failed to fetch messages", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Statistic fetches one daily statistics series, e.g. "daily-conversations".
func (s *DifySession) Statistic(ctx context.Context, appID, metric, start, end string) ([]map[string]any, error) {
	var out struct {
		Data []map[string]any `json:"data"`
	}
	path := fmt.Sprintf("/console/api/apps/%s/statistics/%s?start=%s&end=%s",
		url.PathEscape(appID), metric, encodeComponent(start), encodeComponent(end))
	if err := s.api.Do(ctx, "Failed to fetch "+metric, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// --- Website crawl ---

// Crawl starts a single-page Firecrawl job and returns its id.
func (s *DifySession) Crawl(ctx context.Context, target string) (string, error) {
	body := map[string]any{
		"provider": "firecrawl",
		"url":      target,
		"options": map[string]any{
			"crawl_sub_pages":   false,
			"only_main_content": true,
			"includes":          "",
			"excludes":          "",
			"limit":             1,
			"max_depth":         1,
		},
	}
	var out struct {
		JobID string `json:"job_id"`
	}
	err := s.api.Do(ctx, "Failed to crawl URL", http.MethodPost, "/console/api/website/crawl", body, &out)
	var uerr *UpstreamError
	if errors.As(err, &uerr) {
		text := string(uerr.Body)
		if strings.Contains(text, "NoneType") || strings.Contains(text, "crawl_failed") {
			return "", &CrawlerNotConfiguredError{Details: text}
		}
		uerr.Message = "Failed to crawl URL: " + uerr.StatusText
		return "", &CrawlRejectedError{UpstreamError: uerr}
	}
	if err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", ErrNoCrawlJob
	}
	return out.JobID, nil
}

// CrawlStatus returns the job status, read from "status" or "data.status".
func (s *DifySession) CrawlStatus(ctx context.Context, jobID string) (string, error) {
	var out struct {
		Status string `json:"status"`
		Data   struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := s.api.Do(ctx, "Failed to check crawl status", http.MethodGet, "/console/api/website/crawl/status/"+url.PathEscape(jobID)+"?provider=firecrawl", nil, &out); err != nil {
		return "", err
	}
	if out.Status != "" {
		return out.Status, nil
	}
	return out.Data.Status, nil
}

// CreateCrawledDocument registers a crawled page as a dataset document.
func (s *DifySession) CreateCrawledDocument(ctx context.Context, datasetID string, payload any) (map[string]any, error) {
	var out map[string]any
	err := s.api.Do(ctx, "Failed to create document", http.MethodPost, "/console/api/datasets/"+url.PathEscape(datasetID)+"/documents", payload, &out)
	return out, err
}

// --- Dataset service API ---

func (d *DifyClient) serviceAPI(apiKey string) (*Upstream, error) {
	if d == nil || d.serviceURL == "" {
		return nil, ErrDifyNotConfigured
	}
	return &Upstream{BaseURL: d.serviceURL, Header: http.Header{"Authorization": {"Bearer " + apiKey}}, Client: d.httpClient}, nil
}

// CreateDocumentByText adds a text document through the dataset service API.
func (d *DifyClient) CreateDocumentByText(ctx context.Context, datasetID, apiKey string, req *models.TextDocumentRequest) (map[string]any, error) {
	api, err := d.serviceAPI(apiKey)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"name":               req.Name,
		"text":               req.Text,
		"indexing_technique": orDefault(req.IndexingTechnique, "high_quality"),
		"process_rule":       models.ProcessRuleFor(req.ChunkSettings),
	}
	var out map[string]any
	err = api.Do(ctx, "Failed to create document", http.MethodPost, "/datasets/"+url.PathEscape(datasetID)+"/document/create_by_text", body, &out)
	return out, err
}

// CreateDocumentByFile uploads a file through the dataset service API.
func (d *DifyClient) CreateDocumentByFile(ctx context.Context, datasetID, apiKey, filename string, file io.Reader, settings *models.ChunkSettings) (map[string]any, error) {
	api, err := d.serviceAPI(apiKey)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(map[string]any{
		"indexing_technique": "high_quality",
		"process_rule":       models.ProcessRuleFor(settings),
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("data", string(data)); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.BaseURL+"/datasets/"+url.PathEscape(datasetID)+"/document/create_by_file", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out map[string]any
	err = api.DoRequest(req, "Failed to upload document", &out)
	return out, err
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// encodeComponent escapes like JavaScript's encodeURIComponent for the characters we send.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
