// Package fetch retrieves raw source documents over HTTP. It contains no
// parsing logic: adapters hand it a URL and get back bytes or an explicit
// unavailable signal. A sqlite-backed cache can wrap the HTTP fetcher so
// repeated searches in one session do not rescrape the same publications.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donortrail/donortrail/internal/common"
)

// DefaultTimeout bounds every single source request.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the tool to source systems.
const DefaultUserAgent = "donortrail/1.0 (political donations research)"

// Fetcher retrieves a source document by URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the plain HTTP implementation of Fetcher.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTP creates an HTTP fetcher with a fixed per-request timeout.
func NewHTTP(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: DefaultUserAgent,
	}
}

// Get implements Fetcher. Network failures and non-2xx statuses surface as
// common.ErrSourceUnavailable so adapters can degrade that one source
// without inspecting transport details.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", common.ErrSourceUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", common.ErrSourceUnavailable, err)
	}
	return body, nil
}

// Delay pauses between paginated requests so a multi-page scrape does not
// hammer the source. Returns early if the context is canceled.
func Delay(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
