// Package gateway is the typed request layer over the backend REST API.
// Every remote resource this application touches goes through here: the
// gateway attaches the bearer credential, serializes filters, classifies
// failures and decodes responses. It never touches view state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/alhaja/alhaja-admin/internal/shared"
)

// Client performs typed calls against the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a gateway client for the given backend base URL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetHTTPClient swaps the underlying transport. Tests use it to point at
// an httptest server client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// query is a filter set where only defined values end up on the wire.
type query struct {
	values url.Values
}

func newQuery() *query {
	return &query{values: url.Values{}}
}

// set appends a parameter only when the value is non-empty. Undefined
// filters must never be serialized.
func (q *query) set(key, value string) *query {
	if value != "" {
		q.values.Set(key, value)
	}
	return q
}

func (q *query) setInt(key string, value int) *query {
	if value > 0 {
		q.values.Set(key, fmt.Sprintf("%d", value))
	}
	return q
}

func (q *query) setBool(key string, value *bool) *query {
	if value != nil {
		q.values.Set(key, fmt.Sprintf("%t", *value))
	}
	return q
}

func (q *query) encode() string {
	if q == nil || len(q.values) == 0 {
		return ""
	}
	return q.values.Encode()
}

// FileAttachment is an uploaded file forwarded to a backend endpoint.
type FileAttachment struct {
	Field    string
	Filename string
	Content  []byte
}

// get performs a GET request decoding the JSON response into out.
func (c *Client) get(ctx context.Context, path string, q *query, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, "", out)
}

// send performs a mutating request with a JSON body.
func (c *Client) send(ctx context.Context, method, path string, q *query, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, q, body, contentType, out)
}

// sendMultipart performs a mutating request with a multipart form body.
// fields are written as plain form values, files as attachments.
func (c *Client) sendMultipart(ctx context.Context, method, path string, q *query, fields map[string]string, files []FileAttachment, out any) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("create form file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("write form file %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return c.do(ctx, method, path, q, body, writer.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, q *query, body io.Reader, contentType string, out any) error {
	target := c.baseURL + path
	if encoded := q.encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := shared.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call backend %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		// The caller owns the session side effects (single clear plus
		// redirect). The classified error must never be retried.
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: extractMessage(resp.Body, resp.StatusCode)}
		if c.logger != nil {
			c.logger.Warn("backend rejected request",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", resp.StatusCode))
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, path, err)
	}
	return nil
}

// extractMessage pulls a human readable message out of an error body.
// The backend answers either {"message": "..."} or {"message": [..]};
// anything else falls back to a generic status text.
func extractMessage(body io.Reader, status int) string {
	fallback := fmt.Sprintf("Error %d", status)
	raw, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil || len(raw) == 0 {
		return fallback
	}

	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Message) == 0 {
		return fallback
	}

	var single string
	if err := json.Unmarshal(envelope.Message, &single); err == nil && single != "" {
		return single
	}
	var many []string
	if err := json.Unmarshal(envelope.Message, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return fallback
}
