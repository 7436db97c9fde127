package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DEFAULT_BASE_URL  = "http://localhost:3000"
	USER_AGENT        = "IoT Dashboard Client/1.0.0"
	REQUEST_TIMEOUT   = 10 * time.Second
	REQUEST_ID_HEADER = "X-Request-ID"

	// Upper bound on how much of an error response body is kept.
	maxErrorBody = 4096
)

// Client talks to the device REST API. It keeps no state between calls: no
// caching and no retries, failures are returned to the caller as they are.
type Client struct {
	baseURL    *url.URL
	httpClient http.Client
	userAgent  string
	logger     *slog.Logger
}

func NewClient(baseURL string) (*Client, error) {
	return NewClientWithLogger(baseURL, nil)
}

func NewClientWithLogger(baseURL string, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DEFAULT_BASE_URL
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}

	return &Client{
		baseURL: parsed,
		httpClient: http.Client{
			Timeout: REQUEST_TIMEOUT,
		},
		userAgent: USER_AGENT,
		logger:    logger,
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client, e.g. to change the
// timeout or transport.
func (client *Client) SetHTTPClient(httpClient http.Client) {
	client.httpClient = httpClient
}

func (client *Client) SetUserAgent(userAgent string) {
	client.userAgent = userAgent
}

func (client *Client) BaseURL() string {
	return client.baseURL.String()
}

func (client *Client) log(level slog.Level, msg string, args ...any) {
	if client.logger != nil {
		client.logger.Log(context.Background(), level, msg, args...)
	}
}

// endpoint joins escaped path segments onto the base URL.
func (client *Client) endpoint(query url.Values, segments ...string) (string, string) {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	path := "/" + strings.Join(escaped, "/")

	u := *client.baseURL
	u.RawPath = strings.TrimRight(u.EscapedPath(), "/") + path
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String(), path
}

// do performs one JSON request. body may be nil; out may be nil when the
// response body is not needed.
func (client *Client) do(ctx context.Context, method string, query url.Values, body any, out any, segments ...string) error {
	target, path := client.endpoint(query, segments...)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", client.userAgent)
	request.Header.Set(REQUEST_ID_HEADER, requestID)

	client.log(slog.LevelDebug, "API request", "method", method, "path", path, "request_id", requestID)
	started := time.Now()

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.log(slog.LevelDebug, "API request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer response.Body.Close()

	client.log(slog.LevelDebug, "API response",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Err:        fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	return nil
}
