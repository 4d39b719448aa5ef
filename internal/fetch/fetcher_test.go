package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donortrail/donortrail/internal/common"
)

func TestHTTPFetcherGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "donortrail")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := NewHTTP(5 * time.Second)
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), body)
}

func TestHTTPFetcherNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTP(5 * time.Second)
	_, err := f.Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, common.ErrSourceUnavailable)
}

func TestHTTPFetcherConnectionRefused(t *testing.T) {
	f := NewHTTP(time.Second)
	_, err := f.Get(context.Background(), "http://127.0.0.1:1/nothing")
	require.ErrorIs(t, err, common.ErrSourceUnavailable)
}

type countingFetcher struct {
	calls int
	body  []byte
	err   error
}

func (c *countingFetcher) Get(_ context.Context, _ string) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.body, nil
}

func TestCacheServesFreshDocuments(t *testing.T) {
	next := &countingFetcher{body: []byte("document")}
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache.db"), next, time.Hour)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	first, err := cache.Get(ctx, "https://example.org/donations")
	require.NoError(t, err)
	second, err := cache.Get(ctx, "https://example.org/donations")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls, "second read should come from cache")
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	next := &countingFetcher{err: common.ErrSourceUnavailable}
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache.db"), next, time.Hour)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_, err = cache.Get(ctx, "https://example.org/donations")
	require.ErrorIs(t, err, common.ErrSourceUnavailable)

	next.err = nil
	next.body = []byte("recovered")
	body, err := cache.Get(ctx, "https://example.org/donations")
	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), body)
	assert.Equal(t, 2, next.calls)
}

func TestDelayReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	Delay(ctx, 5*time.Second)
	assert.Less(t, time.Since(start), time.Second)
}
