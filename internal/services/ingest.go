package services

import (
	"context"
	"log"
	"net/url"
	"time"

	"github.com/harentsoaR/admin-panel-api/internal/models"
)

// Ingestor turns a web page into a knowledge-base document: crawl, wait, create with retries.
type Ingestor struct {
	Dify *DifyClient

	PollInterval time.Duration
	PollTimeout  time.Duration
	RetryDelay   time.Duration
	MaxAttempts  int

	sleep func(ctx context.Context, d time.Duration) error
}

func NewIngestor(dify *DifyClient) *Ingestor {
	return &Ingestor{
		Dify:         dify,
		PollInterval: 2 * time.Second,
		PollTimeout:  30 * time.Second,
		RetryDelay:   3 * time.Second,
		MaxAttempts:  3,
		sleep:        sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IngestURL crawls req.URL and registers it as a document of datasetID.
func (in *Ingestor) IngestURL(ctx context.Context, datasetID string, req *models.URLDocumentRequest) (*models.KnowledgeDocument, error) {
	session, err := in.Dify.Login(ctx)
	if err != nil {
		return nil, err
	}

	log.Printf("Crawling URL with Firecrawl: %s", req.URL)
	jobID, err := session.Crawl(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Crawl job started: %s", jobID)

	if err := in.waitForCrawl(ctx, session, jobID); err != nil {
		return nil, err
	}

	indexing := req.IndexingTechnique
	if indexing == "" {
		indexing = "high_quality"
	}
	payload := map[string]any{
		"indexing_technique": indexing,
		"data_source": map[string]any{
			"type": "website_crawl",
			"info_list": map[string]any{
				"data_source_type": "website_crawl",
				"website_info_list": map[string]any{
					"provider":          "firecrawl",
					"job_id":            jobID,
					"urls":              []string{req.URL},
					"only_main_content": true,
				},
			},
		},
		"process_rule": models.ProcessRuleFor(req.ChunkSettings),
		"doc_form":     "text_model",
		"doc_language": "English",
	}

	data, err := in.createWithRetry(ctx, session, datasetID, payload)
	if err != nil {
		return nil, err
	}
	return CreatedDocument(data, req.Name, req.URL), nil
}

func (in *Ingestor) waitForCrawl(ctx context.Context, session *DifySession, jobID string) error {
	polls := int(in.PollTimeout / in.PollInterval)
	for i := 0; i < polls; i++ {
		status, err := session.CrawlStatus(ctx, jobID)
		switch {
		case err != nil:
			log.Printf("Crawl status check failed for job %s: %v", jobID, err)
		case status == "completed":
			log.Printf("Crawl job %s completed", jobID)
			return nil
		case status == "failed":
			log.Printf("Crawl job %s failed, continuing anyway", jobID)
			return nil
		}
		if err := in.sleep(ctx, in.PollInterval); err != nil {
			return err
		}
	}
	log.Printf("Crawl job %s timed out after %s, continuing anyway", jobID, in.PollTimeout)
	return nil
}

func (in *Ingestor) createWithRetry(ctx context.Context, session *DifySession, datasetID string, payload any) (map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= in.MaxAttempts; attempt++ {
		log.Printf("Creating document (attempt %d/%d)", attempt, in.MaxAttempts)
		data, err := session.CreateCrawledDocument(ctx, datasetID, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.Printf("Attempt %d failed: %v", attempt, err)

		if attempt < in.MaxAttempts {
			if err := in.sleep(ctx, time.Duration(attempt)*in.RetryDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// CreatedDocument maps a Dify document creation response onto the dashboard view.
// The name falls back to fallbackName, then to the host of sourceURL.
func CreatedDocument(data map[string]any, fallbackName, sourceURL string) *models.KnowledgeDocument {
	var first map[string]any
	if docs := documentList(data); len(docs) > 0 {
		first, _ = docs[0].(map[string]any)
	}
	if first == nil {
		first, _ = data["document"].(map[string]any)
	}

	doc := &models.KnowledgeDocument{SourceURL: sourceURL}
	doc.Batch, _ = data["batch"].(string)
	if first != nil {
		doc.ID, _ = first["id"].(string)
		doc.Name, _ = first["name"].(string)
		status, _ := first["indexing_status"].(string)
		doc.Status = models.DocumentStatus(status)
		if wc, ok := first["word_count"].(float64); ok {
			doc.WordCount = int(wc)
		}
		if ts, ok := first["created_at"].(float64); ok {
			doc.CreatedAt = models.UnixToISO(int64(ts))
		}
	} else {
		doc.Status = models.DocumentStatus("")
	}

	if doc.Name == "" {
		doc.Name = fallbackName
	}
	if doc.Name == "" && sourceURL != "" {
		if u, err := url.Parse(sourceURL); err == nil {
			doc.Name = u.Hostname()
		}
	}
	if doc.CreatedAt == "" {
		doc.CreatedAt = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	}
	return doc
}

func documentList(data map[string]any) []any {
	if docs, ok := data["documents"].([]any); ok {
		return docs
	}
	if inner, ok := data["data"].(map[string]any); ok {
		if docs, ok := inner["documents"].([]any); ok {
			return docs
		}
	}
	return nil
}
