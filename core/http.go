package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// userAgent identifies folio to upstream APIs.
const userAgent = "folio/1.0 (+https://github.com/huangsam/folio)"

// NewHTTPClient returns the client used by every fetcher. A zero timeout means none.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// getJSON issues a GET to url and decodes a successful JSON body into out.
// Transport failures become NetworkError; non-2xx statuses and undecodable
// bodies become APIError.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{URL: url, StatusCode: resp.StatusCode, Reason: "malformed payload", Err: err}
	}
	return nil
}
