package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/models"
	"github.com/harentsoaR/admin-panel-api/internal/services"
	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

var documentActions = map[string]bool{"enable": true, "disable": true, "archive": true, "un_archive": true}

// session logs into the Dify console, writing the error response on failure.
func (h *Handler) session(c *gin.Context, context string) (*services.DifySession, bool) {
	s, err := h.Dify.Login(c.Request.Context())
	if err != nil {
		respondError(c, err, context)
		return nil, false
	}
	return s, true
}

// respondNotFound turns an upstream 404 into msg, and anything else into the usual error.
func respondNotFound(c *gin.Context, err error, msg, context string) {
	var uerr *services.UpstreamError
	if errors.As(err, &uerr) && uerr.Status == http.StatusNotFound {
		c.JSON(http.StatusNotFound, utils.ErrorBody(msg))
		return
	}
	respondError(c, err, context)
}

// --- Knowledge bases ---

func (h *Handler) ListKnowledgeBases(c *gin.Context) {
	s, ok := h.session(c, "List Knowledge Bases")
	if !ok {
		return
	}
	kbs, err := s.ListDatasets(c.Request.Context())
	if err != nil {
		respondError(c, err, "List Knowledge Bases")
		return
	}
	c.JSON(http.StatusOK, kbs)
}

func (h *Handler) CreateKnowledgeBase(c *gin.Context) {
	var req models.CreateKnowledgeBaseRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == "" {
		respondError(c, utils.NewValidationError("Name is required"), "Create Knowledge Base")
		return
	}
	s, ok := h.session(c, "Create Knowledge Base")
	if !ok {
		return
	}

	kb, err := s.CreateDataset(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Create Knowledge Base")
		return
	}
	c.JSON(http.StatusCreated, kb)
}

func (h *Handler) GetKnowledgeBase(c *gin.Context) {
	s, ok := h.session(c, "Get Knowledge Base")
	if !ok {
		return
	}
	kb, err := s.GetDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondNotFound(c, err, "Knowledge base not found", "Get Knowledge Base")
		return
	}
	c.JSON(http.StatusOK, kb)
}

func (h *Handler) DeleteKnowledgeBase(c *gin.Context) {
	s, ok := h.session(c, "Delete Knowledge Base")
	if !ok {
		return
	}
	if err := s.DeleteDataset(c.Request.Context(), c.Param("id")); err != nil {
		respondNotFound(c, err, "Knowledge base not found", "Delete Knowledge Base")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Documents ---

func (h *Handler) ListDocuments(c *gin.Context) {
	s, ok := h.session(c, "List Documents")
	if !ok {
		return
	}
	docs, err := s.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondNotFound(c, err, "Knowledge base not found", "List Documents")
		return
	}
	c.JSON(http.StatusOK, docs)
}

// CreateTextDocument adds raw text through the dataset service API.
func (h *Handler) CreateTextDocument(c *gin.Context) {
	datasetID := c.Param("id")
	var req models.TextDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == "" || req.Text == "" {
		respondError(c, utils.NewValidationError("Name and text are required"), "Create Text Document")
		return
	}
	s, ok := h.session(c, "Create Text Document")
	if !ok {
		return
	}
	apiKey, err := s.DatasetAPIKey(c.Request.Context(), datasetID)
	if err != nil {
		respondError(c, err, "Create Text Document")
		return
	}

	data, err := h.Dify.CreateDocumentByText(c.Request.Context(), datasetID, apiKey, &req)
	if err != nil {
		respondError(c, err, "Create Text Document")
		return
	}
	c.JSON(http.StatusCreated, services.CreatedDocument(data, req.Name, ""))
}

// UploadFileDocument takes a multipart "file" and an optional JSON "chunkSettings" field.
func (h *Handler) UploadFileDocument(c *gin.Context) {
	datasetID := c.Param("id")
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, utils.NewValidationError("File is required"), "Upload File Document")
		return
	}
	var settings *models.ChunkSettings
	if raw := c.PostForm("chunkSettings"); raw != "" {
		settings = &models.ChunkSettings{}
		if err := json.Unmarshal([]byte(raw), settings); err != nil {
			respondError(c, utils.NewValidationError("chunkSettings must be valid JSON"), "Upload File Document")
			return
		}
	}

	s, ok := h.session(c, "Upload File Document")
	if !ok {
		return
	}
	apiKey, err := s.DatasetAPIKey(c.Request.Context(), datasetID)
	if err != nil {
		respondError(c, err, "Upload File Document")
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err, "Upload File Document")
		return
	}
	defer f.Close()

	data, err := h.Dify.CreateDocumentByFile(c.Request.Context(), datasetID, apiKey, fh.Filename, f, settings)
	if err != nil {
		respondError(c, err, "Upload File Document")
		return
	}
	c.JSON(http.StatusCreated, services.CreatedDocument(data, fh.Filename, ""))
}

// CreateURLDocument crawls a web page into the knowledge base.
func (h *Handler) CreateURLDocument(c *gin.Context) {
	var req models.URLDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	doc, err := h.Ingestor.IngestURL(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		log.Printf("URL document error: %v", err)
		var crawlErr *services.CrawlerNotConfiguredError
		var rejected *services.CrawlRejectedError
		switch {
		case errors.As(err, &crawlErr):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":                 crawlErr.Error(),
				"details":               crawlErr.Details,
				"configurationRequired": true,
			})
		case errors.As(err, &rejected):
			// Only the crawl start keeps the upstream status; later stages are 500.
			c.JSON(rejected.Status, gin.H{"error": rejected.Error(), "details": rejected.Details()})
		case unavailable(err):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	s, ok := h.session(c, "Delete Document")
	if !ok {
		return
	}
	if err := s.DeleteDocument(c.Request.Context(), c.Param("id"), c.Param("docId")); err != nil {
		respondNotFound(c, err, "Document not found", "Delete Document")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetDocumentStatus applies enable, disable, archive or un_archive.
func (h *Handler) SetDocumentStatus(c *gin.Context) {
	action := c.Param("action")
	if !documentActions[action] {
		respondError(c, utils.NewValidationError("Invalid action. Must be one of: enable, disable, archive, un_archive"), "Update Document Status")
		return
	}
	s, ok := h.session(c, "Update Document Status")
	if !ok {
		return
	}
	if err := s.SetDocumentStatus(c.Request.Context(), c.Param("id"), c.Param("docId"), action); err != nil {
		respondNotFound(c, err, "Document not found", "Update Document Status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "enabled": action == "enable"})
}

// ReindexDocument disables and re-enables a document so Dify indexes it again.
func (h *Handler) ReindexDocument(c *gin.Context) {
	datasetID, docID := c.Param("id"), c.Param("docId")
	s, ok := h.session(c, "Reindex Document")
	if !ok {
		return
	}
	if err := s.SetDocumentStatus(c.Request.Context(), datasetID, docID, "disable"); err != nil {
		respondNotFound(c, err, "Document not found", "Reindex Document")
		return
	}
	if err := s.SetDocumentStatus(c.Request.Context(), datasetID, docID, "enable"); err != nil {
		respondError(c, err, "Reindex Document")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document is being reindexed. Note: Chunk settings cannot be modified for existing documents. To change chunk settings, please delete and re-upload the document.",
		"warning": "The document has been reset to its original chunk settings",
	})
}

func (h *Handler) ListSegments(c *gin.Context) {
	s, ok := h.session(c, "List Segments")
	if !ok {
		return
	}
	segments, err := s.ListSegments(c.Request.Context(), c.Param("id"), c.Param("docId"))
	if err != nil {
		respondNotFound(c, err, "Document not found", "List Segments")
		return
	}
	c.JSON(http.StatusOK, segments)
}

func (h *Handler) SetSegmentStatus(c *gin.Context) {
	action := c.Param("action")
	if action != "enable" && action != "disable" {
		respondError(c, utils.NewValidationError("Invalid action. Must be enable or disable"), "Update Segment")
		return
	}
	s, ok := h.session(c, "Update Segment")
	if !ok {
		return
	}
	if err := s.SetSegmentStatus(c.Request.Context(), c.Param("id"), c.Param("docId"), c.Param("segmentId"), action); err != nil {
		respondError(c, err, "Update Segment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "enabled": action == "enable"})
}

// TestRetrieval runs a hit test against the knowledge base and returns the matched records.
func (h *Handler) TestRetrieval(c *gin.Context) {
	var req models.RetrievalRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Query == "" {
		respondError(c, utils.NewValidationError("Query is required"), "Test Retrieval")
		return
	}
	s, ok := h.session(c, "Test Retrieval")
	if !ok {
		return
	}

	result, err := s.HitTesting(c.Request.Context(), c.Param("id"), req.Query, req.TopK)
	if err != nil {
		respondError(c, err, "Test Retrieval")
		return
	}
	records := []any{}
	if m, ok := result.(map[string]any); ok {
		if list, ok := m["records"].([]any); ok {
			records = list
		}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// --- Dataset API keys ---

func (h *Handler) ListDatasetAPIKeys(c *gin.Context) {
	s, ok := h.session(c, "List API Keys")
	if !ok {
		return
	}
	keys, err := s.ListDatasetAPIKeys(c.Request.Context())
	if err != nil {
		respondError(c, err, "List API Keys")
		return
	}
	if keys == nil {
		keys = []map[string]any{}
	}
	c.JSON(http.StatusOK, keys)
}

func (h *Handler) CreateDatasetAPIKey(c *gin.Context) {
	s, ok := h.session(c, "Create API Key")
	if !ok {
		return
	}
	token, err := s.CreateDatasetAPIKey(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Create API Key")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}
