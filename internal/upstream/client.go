package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

const UserAgent = "cta-tracker/1.0"

// Client issues one GET per refresh cycle against a prediction API.
// It does not retry; a failed call fails the cycle and the refresh
// loop tries again on its next tick.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// Get fetches baseURL with the given query parameters and returns the
// raw body. Transport failures come back as *UnavailableError and
// non-2xx statuses as *HTTPError.
func (c *Client) Get(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, &UnavailableError{URL: baseURL, Err: err}
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{URL: baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{URL: baseURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{URL: baseURL, Err: err}
	}

	return body, nil
}
