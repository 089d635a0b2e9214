package fast_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphyhiren/fast"
)

func TestBodyAllowedForStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		token string
		want  bool
	}{
		"default token":   {token: "default", want: true},
		"1XX range":       {token: "1XX", want: true},
		"2XX range":       {token: "2XX", want: true},
		"5XX range":       {token: "5XX", want: true},
		"200 ok":          {token: "200", want: true},
		"204 no content":  {token: "204", want: false},
		"304 not modified": {token: "304", want: false},
		"100 continue":    {token: "100", want: false},
		"199 informational": {token: "199", want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, fast.BodyAllowedForStatus(tc.token))
		})
	}
}

func TestBodyAllowedForStatusCode(t *testing.T) {
	t.Parallel()

	assert.True(t, fast.BodyAllowedForStatusCode(http.StatusOK))
	assert.True(t, fast.BodyAllowedForStatusCode(http.StatusCreated))
	assert.False(t, fast.BodyAllowedForStatusCode(http.StatusNoContent))
	assert.False(t, fast.BodyAllowedForStatusCode(http.StatusNotModified))
	assert.False(t, fast.BodyAllowedForStatusCode(http.StatusContinue))
}

func TestPathParamNames(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pattern string
		want    []string
	}{
		"no params":      {pattern: "/users", want: nil},
		"single param":   {pattern: "/users/{id}", want: []string{"id"}},
		"two params":     {pattern: "/users/{uid}/posts/{pid}", want: []string{"uid", "pid"}},
		"wildcard param": {pattern: "/files/{path...}", want: []string{"path"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := fast.PathParamNames(tc.pattern)
			assert.Len(t, got, len(tc.want))
			for _, name := range tc.want {
				assert.Contains(t, got, name)
			}
		})
	}
}

func TestDeepMerge(t *testing.T) {
	t.Parallel()

	dst := map[string]any{
		"info": map[string]any{
			"title": "old",
			"keep":  true,
		},
		"tags":   []any{"a"},
		"scalar": 1,
	}
	src := map[string]any{
		"info": map[string]any{
			"title": "new",
		},
		"tags":   []any{"b"},
		"scalar": 2,
		"extra":  "added",
	}

	fast.DeepMerge(dst, src)

	info, ok := dst["info"].(map[string]any)
	require.True(t, ok, "nested maps should merge, not replace")
	assert.Equal(t, "new", info["title"])
	assert.Equal(t, true, info["keep"])

	assert.Equal(t, []any{"a", "b"}, dst["tags"], "lists should concatenate")
	assert.Equal(t, 2, dst["scalar"])
	assert.Equal(t, "added", dst["extra"])
}

func TestDefaultPlaceholder(t *testing.T) {
	t.Parallel()

	d := fast.DefaultOf(200)
	assert.Equal(t, 200, d.Value())
	assert.False(t, d.IsSet())

	e := fast.Explicit(201)
	assert.Equal(t, 201, e.Value())
	assert.True(t, e.IsSet())
}

func TestValueOrDefault(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		first fast.DefaultPlaceholder[int]
		rest  []fast.DefaultPlaceholder[int]
		want  int
	}{
		"first explicit wins": {
			first: fast.Explicit(201),
			rest:  []fast.DefaultPlaceholder[int]{fast.Explicit(202)},
			want:  201,
		},
		"falls through to set value": {
			first: fast.DefaultOf(200),
			rest:  []fast.DefaultPlaceholder[int]{fast.DefaultOf(204), fast.Explicit(418)},
			want:  418,
		},
		"nothing set returns first default": {
			first: fast.DefaultOf(200),
			rest:  []fast.DefaultPlaceholder[int]{fast.DefaultOf(204)},
			want:  200,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := fast.ValueOrDefault(tc.first, tc.rest...)
			assert.Equal(t, tc.want, got.Value())
		})
	}
}

func TestWithDefaultStatus_cascade(t *testing.T) {
	t.Parallel()

	// Router-wide default applies when the route does not set a status.
	r := fast.New(fast.WithDefaultStatus(http.StatusAccepted))

	type resp struct {
		OK bool `json:"ok"`
	}
	fast.Get(r, "/accepted", func(_ context.Context, _ *fast.Void) (*resp, error) {
		return &resp{OK: true}, nil
	})
	fast.Get(r, "/explicit", func(_ context.Context, _ *fast.Void) (*resp, error) {
		return &resp{OK: true}, nil
	}, fast.WithStatus(http.StatusOK))

	spec := r.Spec()
	assert.Contains(t, spec.Paths["/accepted"]["get"].Responses, "202")
	assert.Contains(t, spec.Paths["/explicit"]["get"].Responses, "200")
}
