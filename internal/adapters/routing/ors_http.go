package routing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultORSBaseURL = "https://api.openrouteservice.org"

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// orsClient carries the HTTP session and credentials shared by the
// OpenRouteService directions and geocoding adapters.
type orsClient struct {
	session *http.Client
	apiKey  string
	baseURL string
}

func newORSClient(apiKey, baseURL string, timeout time.Duration) *orsClient {
	if baseURL == "" {
		baseURL = defaultORSBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &orsClient{
		session: &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *orsClient) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json, application/geo+json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do executes req once. Responses with status >= 400 are drained and
// returned as *httpStatusError.
func (c *orsClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}
