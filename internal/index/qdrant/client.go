// Package qdrant is a thin REST adapter for the external Qdrant vector
// index. The retrieval core treats the index as a black box: an ordered
// candidate list in, nothing persisted. The upsert and collection calls
// exist for the seeding path only.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/soff-cloud/playkb/internal/domain"
	"github.com/soff-cloud/playkb/internal/domain/match"
)

// Client talks to one Qdrant collection over HTTP. The underlying
// connection pool is reused across calls; no per-call state is shared.
type Client struct {
	baseURL    string
	collection string
	http       *http.Client
	logger     *zap.Logger
}

// Config holds index connection settings.
type Config struct {
	URL        string
	Collection string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// New creates a Qdrant client for a named collection.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.URL,
		collection: cfg.Collection,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Point is a vector plus payload for upsert.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

type queryRequest struct {
	Query       []float32 `json:"query"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type queryResponse struct {
	Result struct {
		Points []scoredPoint `json:"points"`
	} `json:"result"`
}

type scoredPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   *float64        `json:"score"`
	Payload map[string]any  `json:"payload"`
}

// Query runs a nearest-neighbor search and returns candidates in index
// order (descending similarity). An empty result is a normal outcome.
func (c *Client) Query(ctx context.Context, vector []float32, limit int) ([]match.Candidate, error) {
	reqBody := queryRequest{Query: vector, Limit: limit, WithPayload: true}
	var resp queryResponse
	if err := c.call(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/query", c.collection), reqBody, &resp); err != nil {
		return nil, err
	}

	candidates := make([]match.Candidate, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		score := 0.0
		if p.Score != nil {
			score = *p.Score
		}
		candidates = append(candidates, match.NewCandidate(pointID(p.ID), score, p.Payload))
	}
	return candidates, nil
}

type collectionExistsResponse struct {
	Result struct {
		Exists bool `json:"exists"`
	} `json:"result"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

// EnsureCollection creates the collection with cosine distance when it
// does not exist yet.
func (c *Client) EnsureCollection(ctx context.Context, vectorSize int) error {
	var exists collectionExistsResponse
	if err := c.call(ctx, http.MethodGet,
		fmt.Sprintf("/collections/%s/exists", c.collection), nil, &exists); err != nil {
		return err
	}
	if exists.Result.Exists {
		return nil
	}

	req := createCollectionRequest{Vectors: vectorParams{Size: vectorSize, Distance: "Cosine"}}
	if err := c.call(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s", c.collection), req, nil); err != nil {
		return err
	}

	c.logger.Info("Created collection",
		zap.String("collection", c.collection),
		zap.Int("vector_size", vectorSize),
	)
	return nil
}

type upsertRequest struct {
	Points []Point `json:"points"`
}

// Upsert writes points into the collection, waiting for them to be
// indexed.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	req := upsertRequest{Points: points}
	return c.call(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s/points?wait=true", c.collection), req, nil)
}

type scrollRequest struct {
	Limit       int  `json:"limit"`
	WithPayload bool `json:"with_payload"`
	WithVector  bool `json:"with_vector"`
}

type scrollResponse struct {
	Result struct {
		Points []scoredPoint `json:"points"`
	} `json:"result"`
}

// Scroll lists stored points without scoring, payload included.
func (c *Client) Scroll(ctx context.Context, limit int) ([]match.Candidate, error) {
	reqBody := scrollRequest{Limit: limit, WithPayload: true}
	var resp scrollResponse
	if err := c.call(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/scroll", c.collection), reqBody, &resp); err != nil {
		return nil, err
	}

	candidates := make([]match.Candidate, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		candidates = append(candidates, match.NewCandidate(pointID(p.ID), 0, p.Payload))
	}
	return candidates, nil
}

// Ping checks index availability.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/collections", nil, nil)
}

// call performs one JSON request against the index. Connection failures
// and non-2xx statuses wrap domain.ErrIndexUnavailable.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, err, domain.ErrIndexUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s: %w",
			method, path, resp.StatusCode, string(data), domain.ErrIndexUnavailable)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", err, domain.ErrIndexUnavailable)
	}
	return nil
}

// pointID renders a Qdrant point id (integer or UUID string) as a string.
func pointID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return string(raw)
}
