// Package httpgen calls a Titan-compatible image endpoint over plain HTTP,
// for gateways and self-hosted models that speak the Bedrock invoke format.
package httpgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"petfood/internal/generation"
	"petfood/internal/infra"
)

// ErrMissingBaseURL indicates the client was configured without an endpoint.
var ErrMissingBaseURL = errors.New("httpgen: base url is required")

// Options configures the HTTP backend.
type Options struct {
	BaseURL        string
	APIKey         string
	ModelID        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client posts generation requests to {BaseURL}/model/{ModelID}/invoke.
type Client struct {
	baseURL    string
	apiKey     string
	modelID    string
	httpClient *http.Client
	logger     *infra.Logger
}

type errorResponse struct {
	Type    string `json:"__type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient constructs a client with defaults for unset options.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = "amazon.titan-image-generator-v2:0"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		modelID:    modelID,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ModelID returns the configured model identifier.
func (c *Client) ModelID() string {
	return c.modelID
}

func (c *Client) Invoke(ctx context.Context, req *generation.Request) (*generation.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("httpgen: encode request: %w", err)
	}
	endpoint := c.baseURL + "/model/" + url.PathEscape(c.modelID) + "/invoke"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httpgen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpgen: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpgen: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, decodeError(resp, raw)
	}

	var decoded generation.Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("httpgen: decode response: %w", err)
	}
	c.logger.Debug().
		Str("model", c.modelID).
		Int("images", len(decoded.Images)).
		Msg("httpgen: invoke completed")
	return &decoded, nil
}

// decodeError builds a BackendError. An explicit error type from the
// x-amzn-ErrorType header or the body wins over the status mapping.
func decodeError(resp *http.Response, raw []byte) error {
	be := &generation.BackendError{StatusCode: resp.StatusCode}

	var detail errorResponse
	if err := json.Unmarshal(raw, &detail); err == nil {
		be.Message = detail.Message
		be.Code = firstNonEmpty(detail.Type, detail.Code)
	}
	if header := resp.Header.Get("x-amzn-ErrorType"); header != "" {
		be.Code = strings.SplitN(header, ":", 2)[0]
	}
	if i := strings.LastIndex(be.Code, "#"); i >= 0 {
		be.Code = be.Code[i+1:]
	}
	if be.Code == "" {
		be.Code = codeForStatus(resp.StatusCode)
	}
	if be.Message == "" {
		be.Message = fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return be
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "ThrottlingException"
	case status == http.StatusRequestTimeout:
		return "RequestTimeoutException"
	case status == http.StatusServiceUnavailable:
		return "ServiceUnavailableException"
	case status >= 500:
		return "InternalServerError"
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "AccessDeniedException"
	default:
		return "ValidationException"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
