package edumeal

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

	"github.com/aquamarinepk/aqm"
)

const (
	defaultTimeout  = 15 * time.Second
	refreshPath     = "/auth/refresh-token"
	maxResponseSize = 8 << 20
)

// Client calls the EduMeal REST API. Payload shapes the backend is
// inconsistent about are normalized here and nowhere else.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     aqm.Logger
}

// NewClient builds a client from services.edumeal.url and
// services.edumeal.timeout.
func NewClient(config *aqm.Config, logger aqm.Logger) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	baseURL, _ := config.GetString("services.edumeal.url")
	if baseURL == "" {
		return nil, fmt.Errorf("services.edumeal.url not configured")
	}

	timeout := defaultTimeout
	if raw, ok := config.GetString("services.edumeal.timeout"); ok && raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid services.edumeal.timeout %q: %w", raw, err)
		}
		timeout = d
	}

	return New(baseURL, timeout, logger), nil
}

func New(baseURL string, timeout time.Duration, logger aqm.Logger) *Client {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("encode request: %w", err)
	}
	req.body = body
	req.contentType = "application/json"
	return req, nil
}

// call sends req with the context's credentials and decodes the body into
// out. A 401 triggers one token refresh and one retry.
func (c *Client) call(ctx context.Context, req request, out any) error {
	creds := CredentialsFrom(ctx)

	var sent string
	if creds != nil {
		sent = creds.Tokens().AccessToken
	}

	status, body, err := c.send(ctx, req, sent)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && creds != nil && req.path != refreshPath {
		if err := c.refresh(ctx, creds, sent); err != nil {
			c.log(ctx).Info("token refresh failed", "path", req.path, "error", err)
			return fmt.Errorf("%s %s: %w", req.method, req.path, ErrUnauthorized)
		}

		status, body, err = c.send(ctx, req, creds.Tokens().AccessToken)
		if err != nil {
			return err
		}
	}

	if status == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", req.method, req.path, ErrUnauthorized)
	}

	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status, Message: messageFrom(body)}
		if status >= http.StatusInternalServerError {
			c.log(ctx).Error("backend error", "method", req.method, "path", req.path, "status", status, "message", apiErr.Message)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(body), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req request, token string) (int, []byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := aqm.RequestIDFrom(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: request failed: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: read response: %w", req.method, req.path, err)
	}
	return resp.StatusCode, data, nil
}

// refresh exchanges the refresh token once per stale access token. A caller
// that lost the race finds the pair already replaced and reuses it.
func (c *Client) refresh(ctx context.Context, creds *Credentials, stale string) error {
	creds.refresh.Lock()
	defer creds.refresh.Unlock()

	current := creds.Tokens()
	if current.AccessToken != stale && current.AccessToken != "" {
		return nil
	}
	if current.RefreshToken == "" {
		return errors.New("no refresh token")
	}

	tokens, err := c.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		return err
	}
	creds.Set(tokens)
	c.log(ctx).Debug("access token refreshed")
	return nil
}

func (c *Client) log(ctx context.Context) aqm.Logger {
	if id := aqm.RequestIDFrom(ctx); id != "" {
		return c.logger.With("request_id", id)
	}
	return c.logger
}

// unwrap strips a {data: ...} envelope when the backend adds one.
func unwrap(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return body
	}

	var data json.RawMessage
	for k, v := range obj {
		switch strings.ToLower(k) {
		case "data", "result":
			data = v
		case "success", "succeeded", "message", "statuscode", "errors":
		default:
			return body
		}
	}
	if len(data) == 0 {
		return body
	}
	return data
}
