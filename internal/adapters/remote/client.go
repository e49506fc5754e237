// Package remote implements the record-store protocol client over HTTP.
package remote

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

	"github.com/example/fieldforms/internal/ports/secondary"
)

// successMarker is scanned for in raw response text when the body does not
// parse as JSON. The transport behind some record stores wraps responses in
// markup, so a 2xx body that still carries the marker counts as success.
const successMarker = `"ok":true`

// Client talks to the remote record store. Create vs update is chosen from
// the record's Op alone, never by probing the store for the id.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

// NewClient creates a record-store client for the given endpoint. The access
// key is optional; when present it is passed as the key query parameter.
func NewClient(baseURL, accessKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type storeResponse struct {
	OK           bool            `json:"ok"`
	Error        string          `json:"error"`
	SubmissionID string          `json:"submissionId"`
	Payload      json.RawMessage `json:"payload"`
}

// Submit delivers a normalized submission, as a create or an update depending
// on the record's Op.
func (c *Client) Submit(ctx context.Context, record *secondary.SubmissionRecord) (*secondary.SubmitResult, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid record store URL: %w", err)
	}

	q := u.Query()
	if record.Op == secondary.OpUpdate {
		q.Set("action", "update")
		q.Set("id", record.SubmissionID)
	} else {
		q.Set("action", "submit")
	}
	if c.accessKey != "" {
		q.Set("key", c.accessKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(record.Payload))
	if err != nil {
		return nil, err
	}
	// The store's transport rejects preflighted content types; it reads JSON
	// out of a plain-text body.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("record store unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read record store response: %w", err)
	}

	// A non-success transport status is always a failure regardless of body.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("record store error: status=%d body=%s", resp.StatusCode, truncate(raw))
	}

	var parsed storeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if strings.Contains(string(raw), successMarker) {
			return &secondary.SubmitResult{}, nil
		}
		return nil, fmt.Errorf("unparseable record store response: %s", truncate(raw))
	}

	if !parsed.OK {
		return nil, &secondary.StoreRejection{Message: parsed.Error}
	}

	return &secondary.SubmitResult{SubmissionID: parsed.SubmissionID}, nil
}

// FetchByID retrieves an existing record for editing.
func (c *Client) FetchByID(ctx context.Context, id string) (*secondary.FetchResult, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid record store URL: %w", err)
	}

	q := u.Query()
	q.Set("action", "get")
	q.Set("id", id)
	if c.accessKey != "" {
		q.Set("key", c.accessKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("record store unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read record store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("record store error: status=%d body=%s", resp.StatusCode, truncate(raw))
	}

	var parsed storeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unparseable record store response: %s", truncate(raw))
	}

	if !parsed.OK {
		return nil, &secondary.StoreRejection{Message: parsed.Error}
	}

	return &secondary.FetchResult{Payload: parsed.Payload}, nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max])
	}
	return string(b)
}

// Ensure Client implements the interface
var _ secondary.RecordStoreClient = (*Client)(nil)
