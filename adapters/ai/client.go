// Package ai implements the question- and estimate-generation collaborator
// contracts over HTTP.
//
// Collaborator-level failures (bad status, malformed body, service errors)
// are folded into the response envelope as {success:false, error}; a Go
// error escapes only when the call itself could not run, e.g. caller
// cancellation. Suggestion services front LLMs and occasionally emit
// slightly broken JSON, so bodies pass through jsonrepair before decoding
// and are checked against a structural schema before use.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"effort-estimate/core/interview"
	"effort-estimate/internal/config"
	"effort-estimate/internal/logging"
	"effort-estimate/internal/metrics"
)

const (
	msgRateLimited = "the suggestion service is rate limited; retry shortly"
	msgTimeout     = "the suggestion service timed out; reduce the input size and retry"
	msgUnreachable = "the suggestion service is unreachable"
	msgMalformed   = "the suggestion service returned a malformed response"
)

// Client talks to the AI suggestion service
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a collaborator client from configuration. The request
// timeout is the transport-boundary cancellation the orchestrators
// themselves do not define.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		log:        logging.Named("ai"),
	}
}

// GenerateQuestions implements interview.QuestionGenerator
func (c *Client) GenerateQuestions(ctx context.Context, req interview.QuestionRequest) (*interview.QuestionResponse, error) {
	out := &interview.QuestionResponse{}
	failMsg, err := c.call(ctx, "/v1/questions", "questions", req, questionSchema, out)
	if err != nil {
		return nil, err
	}
	if failMsg != "" {
		return &interview.QuestionResponse{Success: false, Error: failMsg}, nil
	}
	return out, nil
}

// GenerateBulkQuestions implements interview.QuestionGenerator
func (c *Client) GenerateBulkQuestions(ctx context.Context, req interview.BulkQuestionRequest) (*interview.BulkQuestionResponse, error) {
	out := &interview.BulkQuestionResponse{}
	failMsg, err := c.call(ctx, "/v1/questions/bulk", "bulk_questions", req, questionSchema, out)
	if err != nil {
		return nil, err
	}
	if failMsg != "" {
		return &interview.BulkQuestionResponse{Success: false, Error: failMsg}, nil
	}
	return out, nil
}

// GenerateEstimate implements interview.EstimateGenerator
func (c *Client) GenerateEstimate(ctx context.Context, req interview.EstimateRequest) (*interview.EstimateResponse, error) {
	out := &interview.EstimateResponse{}
	failMsg, err := c.call(ctx, "/v1/estimates", "estimate", req, estimateSchema, out)
	if err != nil {
		return nil, err
	}
	if failMsg != "" {
		return &interview.EstimateResponse{Success: false, Error: failMsg}, nil
	}
	return out, nil
}

// GenerateBulkEstimates implements interview.EstimateGenerator
func (c *Client) GenerateBulkEstimates(ctx context.Context, req interview.BulkEstimateRequest) (*interview.BulkEstimateResponse, error) {
	out := &interview.BulkEstimateResponse{}
	failMsg, err := c.call(ctx, "/v1/estimates/bulk", "bulk_estimate", req, bulkEstimateSchema, out)
	if err != nil {
		return nil, err
	}
	if failMsg != "" {
		return &interview.BulkEstimateResponse{Success: false, Error: failMsg}, nil
	}
	return out, nil
}

// call posts payload to path and decodes the response into out. It returns
// a non-empty user-facing message for collaborator-level failures, and a Go
// error only for caller cancellation.
func (c *Client) call(ctx context.Context, path, kind string, payload interface{}, schema *gojsonschema.Schema, out interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return c.failure(kind, msgTimeout, err), nil
		}
		return c.failure(kind, msgUnreachable, err), nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return c.failure(kind, msgRateLimited, nil), nil
	case resp.StatusCode == http.StatusGatewayTimeout:
		return c.failure(kind, msgTimeout, nil), nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := fmt.Sprintf("the suggestion service returned an unexpected error (status %d)", resp.StatusCode)
		return c.failure(kind, msg, nil), nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failure(kind, msgMalformed, err), nil
	}

	repaired, err := jsonrepair.JSONRepair(string(raw))
	if err != nil {
		// Repair is best effort; fall back to the raw body
		repaired = string(raw)
	}

	validation, err := schema.Validate(gojsonschema.NewStringLoader(repaired))
	if err != nil || !validation.Valid() {
		if validation != nil && !validation.Valid() {
			c.log.Warn("collaborator response failed structural validation",
				zap.String("kind", kind), zap.Any("issues", validation.Errors()))
		}
		return c.failure(kind, msgMalformed, err), nil
	}

	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return c.failure(kind, msgMalformed, err), nil
	}
	return "", nil
}

func (c *Client) failure(kind, msg string, cause error) string {
	metrics.CollaboratorFailures.WithLabelValues(kind).Inc()
	c.log.Warn("collaborator call failed", zap.String("kind", kind), zap.String("message", msg), zap.Error(cause))
	return msg
}

var (
	_ interview.QuestionGenerator = (*Client)(nil)
	_ interview.EstimateGenerator = (*Client)(nil)
)
