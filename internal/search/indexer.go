// Package search maintains a secondary Elasticsearch index over projects
// and tasks for the free-text search endpoints. The relational store stays
// the source of truth; index writes are fire-and-forget and a disabled or
// unreachable index never fails the triggering operation.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"geo-survey/survey-portal/survey-portal-backend/internal/config"
)

const (
	projectIndex = "projects"
	taskIndex    = "tasks"
)

// ProjectDocument is the indexed shape of a project
type ProjectDocument struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	TopographeID string `json:"topographe_id"`
	ClientID     string `json:"client_id"`
}

// TaskDocument is the indexed shape of a task
type TaskDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ProjectID   string `json:"project_id"`
}

// Indexer wraps the Elasticsearch client. A nil Indexer is valid and makes
// every method a no-op, which is how the portal runs with search disabled.
type Indexer struct {
	client *elasticsearch.Client
	logger *zap.Logger
}

// NewIndexer builds an Indexer, or nil when search is not configured
func NewIndexer(cfg config.SearchConfig, logger *zap.Logger) (*Indexer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}
	return &Indexer{client: client, logger: logger}, nil
}

// IndexProject upserts a project document; failures are logged only
func (i *Indexer) IndexProject(ctx context.Context, doc ProjectDocument) {
	if i == nil {
		return
	}
	i.index(ctx, projectIndex, doc.ID, doc)
}

// IndexTask upserts a task document; failures are logged only
func (i *Indexer) IndexTask(ctx context.Context, doc TaskDocument) {
	if i == nil {
		return
	}
	i.index(ctx, taskIndex, doc.ID, doc)
}

// DeleteProject removes a project document
func (i *Indexer) DeleteProject(ctx context.Context, id string) {
	if i == nil {
		return
	}
	i.delete(ctx, projectIndex, id)
}

// DeleteTask removes a task document
func (i *Indexer) DeleteTask(ctx context.Context, id string) {
	if i == nil {
		return
	}
	i.delete(ctx, taskIndex, id)
}

func (i *Indexer) index(ctx context.Context, index, id string, doc interface{}) {
	body, err := json.Marshal(doc)
	if err != nil {
		i.logger.Warn("marshalling search document failed", zap.String("index", index), zap.Error(err))
		return
	}
	res, err := i.client.Index(index, bytes.NewReader(body),
		i.client.Index.WithDocumentID(id),
		i.client.Index.WithContext(ctx))
	if err != nil {
		i.logger.Warn("indexing document failed", zap.String("index", index), zap.String("id", id), zap.Error(err))
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		i.logger.Warn("index response error", zap.String("index", index), zap.String("id", id), zap.String("status", res.Status()))
	}
}

func (i *Indexer) delete(ctx context.Context, index, id string) {
	res, err := i.client.Delete(index, id, i.client.Delete.WithContext(ctx))
	if err != nil {
		i.logger.Warn("deleting document failed", zap.String("index", index), zap.String("id", id), zap.Error(err))
		return
	}
	res.Body.Close()
}

// SearchProjects runs a free-text query across project name and description
func (i *Indexer) SearchProjects(ctx context.Context, query string, size int) ([]ProjectDocument, error) {
	if i == nil {
		return nil, fmt.Errorf("search is not enabled")
	}
	hits, err := i.search(ctx, projectIndex, query, []string{"name^2", "description", "status"}, size)
	if err != nil {
		return nil, err
	}
	docs := make([]ProjectDocument, 0, len(hits))
	for _, h := range hits {
		var doc ProjectDocument
		if err := json.Unmarshal(h, &doc); err != nil {
			return nil, fmt.Errorf("decoding project hit: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// SearchTasks runs a free-text query across task title and description
func (i *Indexer) SearchTasks(ctx context.Context, query string, size int) ([]TaskDocument, error) {
	if i == nil {
		return nil, fmt.Errorf("search is not enabled")
	}
	hits, err := i.search(ctx, taskIndex, query, []string{"title^2", "description", "status"}, size)
	if err != nil {
		return nil, err
	}
	docs := make([]TaskDocument, 0, len(hits))
	for _, h := range hits {
		var doc TaskDocument
		if err := json.Unmarshal(h, &doc); err != nil {
			return nil, fmt.Errorf("decoding task hit: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (i *Indexer) search(ctx context.Context, index, query string, fields []string, size int) ([]json.RawMessage, error) {
	if size <= 0 {
		size = 20
	}
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": fields,
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(index),
		i.client.Search.WithBody(&buf))
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search response error: %s: %s", res.Status(), raw)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	sources := make([]json.RawMessage, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		sources = append(sources, h.Source)
	}
	return sources, nil
}
