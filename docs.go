package fast

import (
	"html/template"
	"net/http"
)

// DocsOption configures the docs UI.
type DocsOption func(*docsPage)

type docsPage struct {
	Title   string
	SpecURL string
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(p *docsPage) {
		p.Title = title
	}
}

// WithDocsSpecURL points the docs UI at a spec served somewhere other
// than /openapi.json.
func WithDocsSpecURL(url string) DocsOption {
	return func(p *docsPage) {
		p.SpecURL = url
	}
}

// ServeDocs mounts an interactive API documentation page at the given
// path, rendered with Stoplight Elements against the router's OpenAPI
// spec.
func (r *Router) ServeDocs(path string, opts ...DocsOption) {
	page := &docsPage{
		Title:   r.title,
		SpecURL: "/openapi.json",
	}
	for _, opt := range opts {
		opt(page)
	}

	tmpl := template.Must(template.New("docs").Parse(docsHTML))

	r.mux.HandleFunc("GET "+path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort template render
		tmpl.Execute(w, page)
	})
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{.SpecURL}}"
    router="hash"
    layout="sidebar"
  />
</body>
</html>`
