package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/metrics"
)

const (
	defaultTimeout         = 15 * time.Second
	errorBodyReadLimit     = 64 << 10
	networkErrorMessage    = "Network error. Please check your connection and try again."
	defaultFallbackMessage = "Something went wrong. Please try again."
)

var errBaseURLRequired = errors.New("backend base url is required")

// Client talks to the CRM REST API on behalf of a console session. Every
// call carries the caller's context and the session's backend bearer token.
// Failures come back as *pkgerrors.Error whose message is toast text.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.BackendMetrics
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMetrics records call durations and failures.
func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the CRM client from config.
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.baseURL == "" {
		return nil, errBaseURLRequired
	}
	return client, nil
}

// Request describes one backend call.
type Request struct {
	// Operation labels metrics and logs, e.g. "leads.create".
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Token     string
	// Fallback is shown when the backend gives no usable message.
	Fallback string
}

// Do executes req and decodes the JSON reply into out (when non-nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	var body io.Reader
	contentType := ""
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode backend request")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.send(ctx, req, body, contentType, out)
}

// File is one part of a multipart upload.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Upload proxies files to a multipart endpoint under the given form field.
func (c *Client) Upload(ctx context.Context, req Request, field string, files []File, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	if len(files) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please select at least one file")
	}
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, f := range files {
		part, err := writer.CreateFormFile(field, f.Name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload file")
		}
	}
	if err := writer.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
	}
	if req.Method == "" {
		req.Method = http.MethodPost
	}
	return c.send(ctx, req, buf, writer.FormDataContentType(), out)
}

// Ping checks that the backend base URL answers at all.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req Request, body io.Reader, contentType string, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(req.Path, req.Query), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	started := c.now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.Observe(req.Operation, "network", c.now().Sub(started))
		c.metrics.IncFailure(req.Operation, string(pkgerrors.CodeNetwork))
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, networkErrorMessage)
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.Observe(req.Operation, strconv.Itoa(resp.StatusCode), c.now().Sub(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		typed := normalizeFailure(resp.StatusCode, raw, req.Fallback)
		c.metrics.IncFailure(req.Operation, string(typed.Code()))
		return typed
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackOr(req.Fallback))
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// failureBody is the error shape the CRM returns.
type failureBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  []json.RawMessage `json:"errors"`
}

// normalizeFailure turns a non-2xx reply into the console taxonomy: an
// errors array becomes one joined validation message, a message field is
// shown verbatim, anything else falls back to the operation message.
func normalizeFailure(status int, raw []byte, fallback string) *pkgerrors.Error {
	details := map[string]any{"status": status}
	var body failureBody
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &body) == nil {
		if msgs := collectMessages(body.Errors); len(msgs) > 0 {
			details["errors"] = msgs
			return pkgerrors.New(pkgerrors.CodeValidation, strings.Join(msgs, ", ")).WithDetails(details)
		}
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return pkgerrors.New(pkgerrors.CodeForStatus(status), msg).WithDetails(details)
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return pkgerrors.New(pkgerrors.CodeForStatus(status), msg).WithDetails(details)
		}
	}
	return pkgerrors.New(pkgerrors.CodeForStatus(status), fallbackOr(fallback)).WithDetails(details)
}

// collectMessages accepts both plain strings and {msg|message} objects.
func collectMessages(items []json.RawMessage) []string {
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		var text string
		if json.Unmarshal(item, &text) == nil {
			if text = strings.TrimSpace(text); text != "" {
				msgs = append(msgs, text)
			}
			continue
		}
		var obj struct {
			Msg     string `json:"msg"`
			Message string `json:"message"`
		}
		if json.Unmarshal(item, &obj) == nil {
			switch {
			case strings.TrimSpace(obj.Msg) != "":
				msgs = append(msgs, strings.TrimSpace(obj.Msg))
			case strings.TrimSpace(obj.Message) != "":
				msgs = append(msgs, strings.TrimSpace(obj.Message))
			}
		}
	}
	return msgs
}

func fallbackOr(fallback string) string {
	if strings.TrimSpace(fallback) == "" {
		return defaultFallbackMessage
	}
	return fallback
}
