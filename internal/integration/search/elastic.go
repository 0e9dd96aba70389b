package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/futig/rag-chat/internal/config"
	"github.com/futig/rag-chat/internal/entity"
	"github.com/futig/rag-chat/internal/pkg/logger"
	"github.com/futig/rag-chat/internal/integration/common"
	pkghttp "github.com/futig/rag-chat/pkg/http"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	opElasticSearch = "elastic search"
	opElasticIndex  = "elastic index"

	cosineScript = "cosineSimilarity(params.query_vector, 'embedding') + 1.0"
)

type ElasticConnector struct {
	index     string
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewElasticConnector(cfg config.SearchConfig, logger *zap.Logger) *ElasticConnector {
	httpCfg := cfg.Elastic.HTTPClientConfig
	apiKey := httpCfg.APIKey
	// Elasticsearch expects "Authorization: ApiKey", not the "api-key" header.
	httpCfg.APIKey = ""

	return &ElasticConnector{
		index: cfg.IndexName,
		connector: common.NewBaseConnector(httpCfg, logger,
			pkghttp.WithElasticAPIKey(apiKey),
			pkghttp.WithInsecureSkipVerify(cfg.Elastic.InsecureSkipVerify),
		),
		logger: logger,
	}
}

type scriptScoreQuery struct {
	Size        int              `json:"size"`
	TrackScores bool             `json:"track_scores"`
	Sort        []map[string]any `json:"sort"`
	Query       queryBlock       `json:"query"`
}

// elasticDocument carries the id as a sortable keyword, since _id cannot be
// sorted on.
type elasticDocument struct {
	DocID string `json:"doc_id"`
	entity.IndexedDocument
}

// Ties at the size cutoff are resolved by id, the same order Rank applies.
// Documents indexed without doc_id sort last.
var scoreThenID = []map[string]any{
	{"_score": map[string]any{"order": "desc"}},
	{"doc_id": map[string]any{"order": "asc", "unmapped_type": "keyword"}},
}

type queryBlock struct {
	ScriptScore scriptScore `json:"script_score"`
}

type scriptScore struct {
	Query  map[string]any `json:"query"`
	Script script         `json:"script"`
}

type script struct {
	Source string         `json:"source"`
	Params map[string]any `json:"params"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	ID     string  `json:"_id"`
	Score  float64 `json:"_score"`
	Source struct {
		Content  string `json:"content"`
		FileName string `json:"file_name"`
		Path     string `json:"path"`
	} `json:"_source"`
}

// Search runs a script_score query ranking every document by cosine
// similarity to the query vector.
func (c *ElasticConnector) Search(ctx context.Context, query entity.EmbeddingVector, k int) ([]entity.RetrievedDocument, error) {
	ctx = logger.WithFallback(ctx, c.logger)

	ctxzap.Debug(ctx, "searching elastic index", zap.String("index", c.index), zap.Int("k", k))

	req := &scriptScoreQuery{
		Size:        k,
		TrackScores: true,
		Sort:        scoreThenID,
		Query: queryBlock{
			ScriptScore: scriptScore{
				Query: map[string]any{"match_all": map[string]any{}},
				Script: script{
					Source: cosineScript,
					Params: map[string]any{"query_vector": query},
				},
			},
		},
	}

	var opts []pkghttp.RequestOpt
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		opts = append(opts, pkghttp.WithHeader("X-Opaque-Id", reqID))
	}

	var resp searchResponse
	endpoint := "/" + url.PathEscape(c.index) + "/_search"
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp, opts...); err != nil {
		return nil, common.Classify(opElasticSearch, err)
	}

	docs := make([]entity.RetrievedDocument, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source.Content == "" {
			continue
		}
		docs = append(docs, entity.RetrievedDocument{
			ID:       hit.ID,
			Content:  hit.Source.Content,
			FileName: hit.Source.FileName,
			Path:     hit.Source.Path,
			Score:    hit.Score,
		})
	}

	docs = Rank(docs, k)
	ctxzap.Debug(ctx, "elastic search finished", zap.Int("hits", len(docs)))

	return docs, nil
}

// EnsureIndex creates the index with a dense_vector mapping when it does not
// exist yet.
func (c *ElasticConnector) EnsureIndex(ctx context.Context, dimension int) error {
	ctx = logger.WithFallback(ctx, c.logger)

	endpoint := "/" + url.PathEscape(c.index)

	err := c.connector.DoRequest(ctx, http.MethodHead, endpoint, nil, nil)
	if err == nil {
		return nil
	}

	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		return common.Classify(opElasticIndex, err)
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"doc_id":    map[string]any{"type": "keyword"},
				"file_name": map[string]any{"type": "keyword"},
				"path":      map[string]any{"type": "keyword"},
				"content":   map[string]any{"type": "text"},
				"embedding": map[string]any{
					"type": "dense_vector",
					"dims": dimension,
				},
			},
		},
	}

	if err := c.connector.DoRequest(ctx, http.MethodPut, endpoint, mapping, nil); err != nil {
		return common.Classify(opElasticIndex, fmt.Errorf("create index %s: %w", c.index, err))
	}

	ctxzap.Info(ctx, "elastic index created", zap.String("index", c.index), zap.Int("dimension", dimension))

	return nil
}

// Upsert writes the document under its id, replacing any previous version.
func (c *ElasticConnector) Upsert(ctx context.Context, doc entity.IndexedDocument) error {
	endpoint := "/" + url.PathEscape(c.index) + "/_doc/" + url.PathEscape(doc.ID)

	body := elasticDocument{DocID: doc.ID, IndexedDocument: doc}
	if err := c.connector.DoRequest(ctx, http.MethodPut, endpoint, body, nil); err != nil {
		return common.Classify(opElasticIndex, err)
	}

	return nil
}
