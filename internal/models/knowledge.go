package models

import (
	"math"
	"time"
)

// KnowledgeBase is the dashboard view of a Dify dataset.
type KnowledgeBase struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	DocumentCount     int    `json:"documentCount"`
	WordCount         int    `json:"wordCount"`
	Status            string `json:"status"`
	CreatedAt         string `json:"createdAt"`
	IndexingTechnique string `json:"indexingTechnique"`
	Permission        string `json:"permission"`
}

// KnowledgeDocument is the dashboard view of a Dify document.
type KnowledgeDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Enabled   bool   `json:"enabled"`
	WordCount int    `json:"wordCount"`
	CreatedAt string `json:"createdAt"`
	Batch     string `json:"batch,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

type CreateKnowledgeBaseRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	IndexingTechnique string `json:"indexing_technique"`
	Permission        string `json:"permission"`
}

type TextDocumentRequest struct {
	Name              string         `json:"name"`
	Text              string         `json:"text"`
	IndexingTechnique string         `json:"indexing_technique"`
	ChunkSettings     *ChunkSettings `json:"chunkSettings,omitempty"`
}

// ChunkSettings are the optional segmentation overrides sent by the dashboard.
type ChunkSettings struct {
	Mode               string `json:"mode"`
	ChunkSize          int    `json:"chunkSize"`
	ChunkOverlap       *int   `json:"chunkOverlap,omitempty"`
	MaxSectionSize     int    `json:"maxSectionSize"`
	ReplaceExtraSpaces *bool  `json:"replaceExtraSpaces,omitempty"`
	RemoveUrlsEmails   *bool  `json:"removeUrlsEmails,omitempty"`
}

type URLDocumentRequest struct {
	URL               string         `json:"url"`
	Name              string         `json:"name"`
	IndexingTechnique string         `json:"indexingTechnique"`
	ChunkSettings     *ChunkSettings `json:"chunkSettings,omitempty"`
}

type RetrievalRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// ProcessRule is Dify's document processing rule.
type ProcessRule struct {
	Mode  string          `json:"mode"`
	Rules ProcessRuleBody `json:"rules"`
}

type ProcessRuleBody struct {
	PreProcessingRules []PreProcessingRule `json:"pre_processing_rules"`
	Segmentation       Segmentation        `json:"segmentation"`
}

type PreProcessingRule struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

type Segmentation struct {
	Separator    string        `json:"separator"`
	MaxTokens    int           `json:"max_tokens"`
	Hierarchical *Hierarchical `json:"hierarchical,omitempty"`
}

type Hierarchical struct {
	Enabled         bool `json:"enabled"`
	MaxParentTokens int  `json:"max_parent_tokens"`
	OverlapTokens   int  `json:"overlap_tokens"`
}

// AutomaticProcessRule is the default rule used when no structure chunking is requested.
func AutomaticProcessRule() ProcessRule {
	return ProcessRule{
		Mode: "automatic",
		Rules: ProcessRuleBody{
			PreProcessingRules: []PreProcessingRule{
				{ID: "remove_extra_spaces", Enabled: true},
				{ID: "remove_urls_emails", Enabled: true},
			},
			Segmentation: Segmentation{Separator: "\n", MaxTokens: 500},
		},
	}
}

// ProcessRuleFor picks the hierarchical rule for "structure" chunking and the automatic one otherwise.
func ProcessRuleFor(cs *ChunkSettings) ProcessRule {
	if cs == nil || cs.Mode != "structure" {
		return AutomaticProcessRule()
	}

	chunkSize := cs.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	maxSection := cs.MaxSectionSize
	if maxSection <= 0 {
		maxSection = 4000
	}
	// A zero overlap percentage means "use the default".
	overlap := 50
	if cs.ChunkOverlap != nil && *cs.ChunkOverlap != 0 {
		overlap = *cs.ChunkOverlap
	}

	return ProcessRule{
		Mode: "hierarchical",
		Rules: ProcessRuleBody{
			PreProcessingRules: []PreProcessingRule{
				{ID: "remove_extra_spaces", Enabled: cs.ReplaceExtraSpaces == nil || *cs.ReplaceExtraSpaces},
				{ID: "remove_urls_emails", Enabled: cs.RemoveUrlsEmails != nil && *cs.RemoveUrlsEmails},
			},
			Segmentation: Segmentation{
				Separator: `\n\n`,
				MaxTokens: chunkSize,
				Hierarchical: &Hierarchical{
					Enabled:         true,
					MaxParentTokens: maxSection,
					OverlapTokens:   int(math.Floor(float64(chunkSize*overlap) / 100)),
				},
			},
		},
	}
}

// DocumentStatus collapses Dify's indexing states into completed, error or indexing.
func DocumentStatus(indexingStatus string) string {
	switch indexingStatus {
	case "completed", "error":
		return indexingStatus
	}
	return "indexing"
}

// UnixToISO renders Dify's epoch-second timestamps.
func UnixToISO(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02T15:04:05.000Z")
}
