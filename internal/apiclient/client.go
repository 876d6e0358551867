// Package apiclient is the typed HTTP client for the dashboard backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/therapyassist/dashboard-go/internal/config"
	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
)

type Client struct {
	baseURL         string
	http            *http.Client
	timeout         time.Duration
	downloadTimeout time.Duration
}

type options struct {
	transport       http.RoundTripper
	timeout         time.Duration
	downloadTimeout time.Duration
	onUnauthorized  func(ctx context.Context)
}

type Option func(*options)

// WithTransport replaces the innermost round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithDownloadTimeout sets the timeout used only by report downloads.
func WithDownloadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.downloadTimeout = d
	}
}

// WithUnauthorizedHandler registers the callback run on every 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(o *options) {
		o.onUnauthorized = fn
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", baseURL)
	}

	o := options{
		transport:       http.DefaultTransport,
		timeout:         config.DefaultRequestTimeout,
		downloadTimeout: config.DefaultDownloadTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := Chain(o.transport,
		DefaultHeaders(),
		RequestID(),
		BearerAuth(tokens),
		Unauthorized(o.onUnauthorized),
		Logging(),
	)

	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{Transport: transport},
		timeout:         o.timeout,
		downloadTimeout: o.downloadTimeout,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	accept      string
	timeout     time.Duration
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("marshal request: %w", err)
		}
		req.body = bytes.NewReader(data)
	}
	return req, nil
}

// send issues exactly one HTTP call. Non-2xx responses come back as
// *errors.AppError and the body is closed; on success the caller owns it.
func (c *Client) send(ctx context.Context, r request) (*http.Response, context.CancelFunc, error) {
	timeout := r.timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, nil, apperrors.FromTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer cancel()
		defer resp.Body.Close()
		return nil, nil, decodeError(resp)
	}
	return resp, cancel, nil
}

// doJSON sends r and decodes a JSON response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	resp, cancel, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.FromTransport(err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeExternal, "Unexpected response from server", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	r, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, r, out)
}

// errorBody covers both FastAPI style {"detail": ...} and {"message": ...}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeError(resp *http.Response) *apperrors.AppError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, config.MaxErrorBodyBytes))
	return apperrors.FromStatus(resp.StatusCode, errorMessage(data))
}

func errorMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if msg := detailMessage(body.Detail); msg != "" {
		return msg
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// detailMessage reads detail as a string, or joins the msg fields of a
// validation error list.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
