package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/common/logger"
	"smartfarm-backend/internal/models"
)

var (
	ErrIndexFailed       = errs.New(errs.ErrCodeSearchIndexFailed, "failed to index pest report")
	ErrSearchQueryFailed = errs.New(errs.ErrCodeSearchQueryFailed, "pest report search failed")
)

// Indexer mirrors pest reports into Elasticsearch so they are searchable by
// free text. The relational store stays the source of truth; index failures
// are reported but must not fail the ingest.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"index": index}),
	}
}

func (ix *Indexer) IndexReport(ctx context.Context, report *models.PestReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("%w: marshal report: %v", ErrIndexFailed, err)
	}

	res, err := ix.client.Index(
		ix.index,
		bytes.NewReader(body),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(strconv.FormatInt(report.ID, 10)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}

	ix.logger.Debug("pest report indexed", map[string]interface{}{
		"reportId": report.ID,
	})
	return nil
}

// SearchReports runs a multi-field match against pest name, plant name and
// recommendation text.
func (ix *Indexer) SearchReports(ctx context.Context, query string, size int) ([]models.PestReport, error) {
	var buf bytes.Buffer
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"pest_name^2", "plant_name", "recommendation"},
			},
		},
		"size": size,
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
		},
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", ErrSearchQueryFailed, err)
	}

	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.index),
		ix.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.PestReport `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	out := make([]models.PestReport, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}
