package academic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// retryStatus lists response codes worth retrying with backoff.
var retryStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client wraps http.Client with the request pacing and retry behaviour the
// bibliographic APIs expect: stay below a requests-per-second cap, back off
// and retry on transient server errors.
type Client struct {
	http *http.Client

	maxReqPerSec int
	maxRetries   int
	backoff      time.Duration

	lastRequest time.Time
	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewClient(maxReqPerSec, maxRetries int) *Client {
	if maxReqPerSec <= 0 {
		maxReqPerSec = 5
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Client{
		http:         &http.Client{Timeout: 120 * time.Second},
		maxReqPerSec: maxReqPerSec,
		maxRetries:   maxRetries,
		backoff:      5 * time.Second,
		sleep:        time.Sleep,
	}
}

// GetJSON performs a paced GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out any) error {
	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}

	var lastErr error
	for retry := 0; retry < c.maxRetries; retry++ {
		c.pace()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("api request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if retryStatus[resp.StatusCode] {
			lastErr = fmt.Errorf("api status %d: %s", resp.StatusCode, string(body))
			c.sleep(c.backoff * time.Duration(retry+1))
			continue
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("api status %d: %s", resp.StatusCode, string(body))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("retries exhausted: %w", lastErr)
}

// pace delays the next request far enough to stay below maxReqPerSec.
func (c *Client) pace() {
	perRequest := time.Second / time.Duration(c.maxReqPerSec)
	if wait := perRequest - time.Since(c.lastRequest); wait > 0 {
		c.sleep(wait)
	}
	c.lastRequest = time.Now()
}
