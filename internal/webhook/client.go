// Package webhook posts finished application payloads to the accelerator's
// external automation endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"startup-apply-service/internal/domain"
)

// DefaultTimeout bounds a single submission round trip. The endpoint itself
// imposes no timeout, so the client must.
const DefaultTimeout = 30 * time.Second

// Client submits application payloads over HTTP. One payload is one POST;
// there are no retries and no idempotency key, so a resubmission after a
// failure is a brand-new request with an identical body.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Submit posts the payload as JSON. Any transport error or non-2xx status is
// returned as an error; the caller collapses them into a single user-facing
// failure. A 2xx response with an empty or non-JSON body is still a success
// and yields an empty receipt.
func (c *Client) Submit(ctx context.Context, payload domain.ApplicationPayload) (domain.SubmissionReceipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	receipt := domain.SubmissionReceipt{}
	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return receipt, nil
	}
	if err := json.Unmarshal(raw, &receipt); err != nil {
		// Non-JSON success bodies are tolerated.
		return domain.SubmissionReceipt{}, nil
	}
	return receipt, nil
}
