package fast_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphyhiren/fast"
)

func TestServeDocs_default_title(t *testing.T) {
	t.Parallel()

	r := fast.New(fast.WithTitle("My API"))
	r.ServeDocs("/docs")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/docs", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	bodyStr := string(body)
	assert.Contains(t, bodyStr, "My API")
	assert.Contains(t, bodyStr, "elements-api")
	assert.Contains(t, bodyStr, "stoplight")
	assert.Contains(t, bodyStr, "/openapi.json")
}

func TestServeDocs_custom_title(t *testing.T) {
	t.Parallel()

	r := fast.New(fast.WithTitle("Default Title"))
	r.ServeDocs("/docs", fast.WithDocsTitle("Custom"))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/docs", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	bodyStr := string(body)
	assert.Contains(t, bodyStr, "Custom")
	assert.Contains(t, bodyStr, "/openapi.json")
}

func TestServeDocs_spec_url_rendered(t *testing.T) {
	t.Parallel()

	r := fast.New()
	r.ServeDocs("/api-docs")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api-docs", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `apiDescriptionUrl="/openapi.json"`)
}
