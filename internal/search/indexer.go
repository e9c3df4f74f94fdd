// internal/search/indexer.go

// Package search maintains a secondary Elasticsearch index of application
// documents so admins can filter and search the pipeline. Indexing follows
// the same contract as notifications: it happens after the durable persist
// and a failure never fails the transition.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"talent-pipeline/internal/common/logger"
	"talent-pipeline/internal/models"
)

const DefaultIndex = "applications"

type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search-indexer"}),
	}
}

// IndexApplication upserts the application document keyed by its ID.
func (ix *Indexer) IndexApplication(ctx context.Context, app models.Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application %s: %w", app.ID, err)
	}

	res, err := ix.es.Index(
		ix.index,
		bytes.NewReader(data),
		ix.es.Index.WithDocumentID(app.ID),
		ix.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index application %s: %w", app.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index application %s: %s", app.ID, res.Status())
	}
	return nil
}

// SearchByStatus returns indexed applications matching an overall status.
func (ix *Indexer) SearchByStatus(ctx context.Context, status models.OverallStatus) ([]models.Application, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"overallStatus": string(status),
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search applications: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search applications: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Application `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	apps := make([]models.Application, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		apps = append(apps, hit.Source)
	}
	return apps, nil
}
