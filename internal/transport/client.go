package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stocksync/internal/logger"
	"stocksync/internal/syncerr"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client sends JSON requests and turns every non-2xx answer into a
// *syncerr.TransportError. It never retries.
type Client struct {
	HTTP   *http.Client
	Header http.Header
}

func New(timeout time.Duration, header http.Header) *Client {
	return &Client{
		HTTP:   &http.Client{Timeout: timeout},
		Header: header,
	}
}

// Do sends in as the JSON body (nil for none) and decodes the response into
// out (nil to discard).
func (c *Client) Do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &syncerr.TransportError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	logger.GetLogger().WithComponent("transport").WithFields(logger.Fields{
		"method":      method,
		"url":         url,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &syncerr.TransportError{
			Op:         method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &syncerr.TransportError{Op: method, URL: url, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
