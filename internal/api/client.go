// Package api implements the Boosty HTTP client: typed post listings,
// pagination, transient-error retry and the error taxonomy the use cases
// dispatch on.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Boosty API root.
	DefaultBaseURL = "https://api.boosty.to/v1/"
	// UserAgent mirrors a desktop browser; the API rejects obviously
	// synthetic agents on some endpoints.
	UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

	// MinRequestDelay is the floor for inter-page pacing.
	MinRequestDelay = 1 * time.Second
	// DefaultRequestDelay is the default inter-page pacing.
	DefaultRequestDelay = 2500 * time.Millisecond
	// DefaultPageSize is the post count requested per page.
	DefaultPageSize = 5

	maxRetries     = 5
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Client talks to the Boosty API. It retries transient network failures
// with exponential backoff and paces page requests through a rate limiter;
// non-2xx statuses map onto the error taxonomy and are never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	limiter    *rate.Limiter
}

// NewClient builds a Client. httpClient carries the session cookie jar;
// authHeader is the full "Bearer ..." value. delay paces Iterate page
// requests and is clamped to MinRequestDelay.
func NewClient(httpClient *http.Client, baseURL, authHeader string, delay time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if delay < MinRequestDelay {
		delay = MinRequestDelay
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		authHeader: authHeader,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
	}
}

// isTransient reports whether the request failed below the HTTP layer:
// connection reset, DNS failure, server disconnect, connect timeout.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return false
}

// doRetry is the single gateway for outbound requests. Only transport-level
// failures retry; any HTTP response, whatever its status, is returned to the
// caller for taxonomy mapping.
func (c *Client) doRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}
		req, err := makeReq()
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

// GetAuthorPosts fetches one page of the author's posts. offset is the
// opaque cursor from the previous page's Extra; empty for the first page.
func (c *Client) GetAuthorPosts(ctx context.Context, author string, limit int, offset string) (*PostsResponse, error) {
	endpoint := fmt.Sprintf("%sblog/%s/post/", c.baseURL, url.PathEscape(author))
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if offset != "" {
		query.Set("offset", offset)
	}
	rawQuery := query.Encode()

	resp, err := c.doRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.URL.RawQuery = rawQuery
		req.Header.Set("User-Agent", UserAgent)
		if c.authHeader != "" {
			req.Header.Set("Authorization", c.authHeader)
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusNotFound:
		return nil, &NoUsernameError{Author: author}
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, &UnknownError{Status: resp.StatusCode, Details: "unexpected status " + resp.Status}
	}

	var page PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return nil, vErr
		}
		return nil, validationErr("body", "cannot decode posts response: %v", err)
	}
	return &page, nil
}

// Iterate walks the author's pages newest-first, invoking fn for each. The
// rate limiter enforces the configured delay between page requests; fn
// returning an error stops iteration. pageNum starts at 1.
func (c *Client) Iterate(ctx context.Context, author string, pageSize int, fn func(page *PostsResponse, pageNum int) error) error {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	offset := ""
	for pageNum := 1; ; pageNum++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		page, err := c.GetAuthorPosts(ctx, author, pageSize, offset)
		if err != nil {
			return err
		}
		if err := fn(page, pageNum); err != nil {
			return err
		}
		if page.Extra.IsLast {
			return nil
		}
		offset = page.Extra.Offset
	}
}
