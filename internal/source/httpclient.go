package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultTimeout bounds every external provider call.
const defaultTimeout = 20 * time.Second

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 4 << 20

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// getJSON fetches url and decodes the JSON body into out, retrying
// transient failures (transport errors, 429, 5xx) up to three times with
// exponential backoff. Non-retryable statuses fail immediately.
func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	const maxRetries = 3
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffs[attempt-1]):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("provider returned status %d", resp.StatusCode)
			continue
		}

		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return lastErr
}
