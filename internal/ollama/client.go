// Package ollama provides an HTTP client for the Ollama API (model list, generation).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/log"
)

const (
	_defaultListTimeout     = 10 * time.Second
	_defaultGenerateTimeout = 5 * time.Minute
	// _maxErrorBody caps how much of a failed response is kept in the error.
	_maxErrorBody = 512
)

// Model is one entry of the /api/tags listing.
type Model struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

// Client calls the Ollama API. Zero value is not valid; use NewClient.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	logger          *zap.Logger
	listTimeout     time.Duration
	generateTimeout time.Duration
}

// BaseURL builds the API root for host and port, e.g. http://localhost:11434/api.
func BaseURL(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/api"
}

// NewClient builds an Ollama client. baseURL is the API root including /api.
// If httpClient is nil, http.DefaultClient is used; deadlines come from the
// per-request timeouts instead of the client.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		httpClient:      httpClient,
		logger:          log.OrNop(logger),
		listTimeout:     _defaultListTimeout,
		generateTimeout: _defaultGenerateTimeout,
	}
}

// SetTimeouts overrides the per-request deadlines; zero keeps the current value.
func (c *Client) SetTimeouts(list, generate time.Duration) {
	if list > 0 {
		c.listTimeout = list
	}
	if generate > 0 {
		c.generateTimeout = generate
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

type tagsResponse struct {
	Models []Model `json:"models"`
}

// ListModels GETs /tags and returns the models in server order.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	var body tagsResponse
	if err := c.do(ctx, http.MethodGet, "/tags", nil, &body); err != nil {
		return nil, apperr.GenerationService(err, "ollama tags")
	}
	c.logger.Debug("listed models", zap.Int("count", len(body.Models)))
	return body.Models, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate POSTs a non-streaming request to /generate and returns the reply text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	req := generateRequest{Model: model, Prompt: prompt, Stream: false}
	var body generateResponse
	start := time.Now()
	if err := c.do(ctx, http.MethodPost, "/generate", req, &body); err != nil {
		return "", apperr.GenerationService(err, "ollama generate")
	}
	c.logger.Debug("generated reply",
		zap.String("model", model),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("reply_bytes", len(body.Response)),
		zap.Bool("done", body.Done),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body.Response, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return errors.Wrapf(err, "build request %s %s", method, url)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("api request", zap.String("method", method), zap.String("url", url))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, _maxErrorBody))
		return errors.Newf("%s %s: HTTP %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: parse response: %w", method, url, err)
	}
	return nil
}
