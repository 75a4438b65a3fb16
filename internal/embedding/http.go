package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPConfig configures [HTTPEncoder].
type HTTPConfig struct {
	// URL is the service base URL; requests go to URL + "/embed".
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Token, when set, is sent as a bearer token.
	Token string `mapstructure:"token"`
}

// HTTPEncoder talks to a sentence-embedding service exposing
// POST /embed {"model": ..., "texts": [...]} -> {"embeddings": [[...]]}.
type HTTPEncoder struct {
	client *http.Client
	url    string
	model  string
	token  string
}

var _ Encoder = (*HTTPEncoder)(nil)

type embedReq struct {
	Model string   `json:"model,omitempty"`
	Texts []string `json:"texts"`
}

type embedResp struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewHTTPEncoder validates cfg and builds an encoder.
func NewHTTPEncoder(cfg HTTPConfig) (*HTTPEncoder, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("http encoder: url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &HTTPEncoder{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    cfg.URL,
		model:  cfg.Model,
		token:  cfg.Token,
	}, nil
}

// Encode embeds a single text.
func (e *HTTPEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EncodeBatch embeds several texts in one request.
func (e *HTTPEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload, err := json.Marshal(embedReq{Model: e.model, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embed service error (status %d): %s", resp.StatusCode, string(msg))
	}

	var out embedResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("embed service: decode response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed service: got %d embeddings for %d texts", len(out.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(out.Embeddings))
	for i, v := range out.Embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("embed service: empty embedding for text %d", i)
		}
		vecs[i] = toFloat32(v)
	}
	return vecs, nil
}

// ModelName returns the configured model, or the service URL when unset.
func (e *HTTPEncoder) ModelName() string {
	if e.model == "" {
		return e.url
	}
	return e.model
}
