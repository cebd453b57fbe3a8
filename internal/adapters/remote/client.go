// Package remote provides an HTTP client for a roost server's REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hylla/roost/internal/adapters/server/common"
	"github.com/hylla/roost/internal/app"
	"github.com/hylla/roost/internal/domain"
)

// defaultTimeout bounds one request when no timeout is configured.
const defaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrInvalidEndpoint reports an unusable base URL.
var ErrInvalidEndpoint = errors.New("invalid remote endpoint")

// ErrRejected reports a request the server refused as invalid.
var ErrRejected = errors.New("remote rejected request")

// StatusError describes one non-2xx API response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("remote: http %d", e.StatusCode)
	}
	return fmt.Sprintf("remote: http %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps well-known status codes onto app-level sentinels.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return app.ErrNotFound
	case http.StatusBadRequest:
		return ErrRejected
	default:
		return nil
	}
}

// Client calls the REST API mounted under one base URL (for example http://host:8080/api/v1).
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient validates endpoint and builds a client. A zero timeout uses the default.
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// ListProperties lists remote properties.
func (c *Client) ListProperties(ctx context.Context, includeClosed bool) ([]domain.Property, error) {
	query := url.Values{}
	if includeClosed {
		query.Set("include_closed", "true")
	}
	var out struct {
		Properties []common.Property `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, "properties", query, nil, &out); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	properties := make([]domain.Property, 0, len(out.Properties))
	for _, p := range out.Properties {
		properties = append(properties, p.ToDomain())
	}
	return properties, nil
}

// ListBoardCards lists the open properties as board cards.
func (c *Client) ListBoardCards(ctx context.Context) ([]domain.Card, error) {
	properties, err := c.ListProperties(ctx, false)
	if err != nil {
		return nil, err
	}
	return domain.CardsFor(properties), nil
}

// GetProperty fetches one remote property.
func (c *Client) GetProperty(ctx context.Context, propertyID string) (domain.Property, error) {
	var out common.Property
	if err := c.do(ctx, http.MethodGet, propertyPath(propertyID), nil, nil, &out); err != nil {
		return domain.Property{}, fmt.Errorf("get property: %w", err)
	}
	return out.ToDomain(), nil
}

// UpdatePropertyStatus moves one remote property to status.
func (c *Client) UpdatePropertyStatus(ctx context.Context, propertyID string, status domain.Status) (domain.Property, error) {
	body := common.UpdateStatusRequest{Status: string(status)}
	var out common.Property
	if err := c.do(ctx, http.MethodPut, propertyPath(propertyID)+"/status", nil, body, &out); err != nil {
		return domain.Property{}, fmt.Errorf("update property status: %w", err)
	}
	return out.ToDomain(), nil
}

// ListStatusHistory lists the remote status history for one property.
func (c *Client) ListStatusHistory(ctx context.Context, propertyID string, limit int) ([]domain.StatusChange, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Changes []common.StatusChange `json:"changes"`
	}
	if err := c.do(ctx, http.MethodGet, propertyPath(propertyID)+"/history", query, nil, &out); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	changes := make([]domain.StatusChange, 0, len(out.Changes))
	for _, change := range out.Changes {
		changes = append(changes, change.ToDomain())
	}
	return changes, nil
}

func propertyPath(propertyID string) string {
	return "properties/" + url.PathEscape(strings.TrimSpace(propertyID))
}

// do sends one JSON request and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	target := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return statusErr
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Code != "" {
		statusErr.Code = envelope.Error.Code
		statusErr.Message = envelope.Error.Message
		return statusErr
	}
	statusErr.Message = strings.TrimSpace(string(raw))
	return statusErr
}
