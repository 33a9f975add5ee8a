// Package archive keeps a searchable copy of every tender in Elasticsearch.
//
// The archive is an optional convenience on top of the JSON history store:
// the store decides what is new, the archive answers "what tenders about X
// have we ever seen". Archive failures never fail a monitoring run.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"tenderwatch/pkg/models"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Client wraps the Elasticsearch client with tender-archive operations.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new archive client.
func New(config Config) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping defines the ES mapping for archived tenders. Dates are
// keywords because the source page does not use a parseable date format.
var indexMapping = `{
	"mappings": {
		"properties": {
			"tender_title": { "type": "text", "analyzer": "english" },
			"category": { "type": "text", "analyzer": "english" },
			"department_owner": { "type": "text", "analyzer": "english" },
			"start_date": { "type": "keyword" },
			"closing_date": { "type": "keyword" },
			"tender_number": { "type": "keyword" },
			"tse": { "type": "keyword" },
			"pdf_links": { "type": "keyword" },
			"archived_at": { "type": "date" }
		}
	}
}`

// CreateIndex creates the archive index with its mapping, if missing.
func (c *Client) CreateIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// archivedTender is the archive document shape: a tender plus when we saw it.
type archivedTender struct {
	models.Tender
	ArchivedAt time.Time `json:"archived_at"`
}

// IndexTender archives a single tender. The document ID derives from the
// normalized tender number, so re-archiving the same tender overwrites
// rather than duplicates; tenders without a number get distinct IDs from
// their title.
func (c *Client) IndexTender(ctx context.Context, t models.Tender) error {
	id := models.TenderID(t.Number)
	if t.Number == "" {
		id = models.TenderID(t.Title + t.ClosingDate)
	}

	data, err := json.Marshal(archivedTender{Tender: t, ArchivedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal tender: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("failed to index tender: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing tender (status %d): %s", res.StatusCode, res.String())
	}

	return nil
}

// Refresh forces an index refresh so a just-archived tender is searchable.
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// searchResponse represents the ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Tender `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a BM25 text search over title, category and department.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Tender, error) {
	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"tender_title^2", "category", "department_owner"},
			},
		},
		"size": limit,
	}

	data, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	tenders := make([]models.Tender, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		tenders[i] = hit.Source
	}

	return tenders, nil
}
