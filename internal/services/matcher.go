// HTTP client for the fuzzy tune-name-matching service
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/seisiun/tunelog/internal/shared"
	"golang.org/x/time/rate"
)

// HTTPMatcher implements [Matcher] against the matching service's REST API.
//
// Requests are rate limited so a large paste batch cannot flood the service.
type HTTPMatcher struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPMatcher creates a matcher client for the given base URL.
// A non-positive rateLimit disables throttling.
func NewHTTPMatcher(baseURL string, client *http.Client, rateLimit float64) *HTTPMatcher {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &HTTPMatcher{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    limiter,
	}
}

// Match queries GET /api/match?name= and decodes the best match.
func (m *HTTPMatcher) Match(ctx context.Context, name string) (*Match, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty tune name", shared.ErrInvalidArgument)
	}

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
		}
	}

	fullURL := fmt.Sprintf("%s/api/match?name=%s", m.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q", shared.ErrNoMatch, name)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var match Match
	if err := json.Unmarshal(body, &match); err != nil {
		return nil, fmt.Errorf("%w: malformed match response: %v", shared.ErrAPIRequest, err)
	}
	if match.TuneID == "" {
		return nil, fmt.Errorf("%w: %q", shared.ErrNoMatch, name)
	}

	return &match, nil
}
