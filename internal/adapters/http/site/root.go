// Package site serves the landing page that links the service routes.
package site

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
)

// Link is one entry of the landing page.
type Link struct {
	Method      string
	Path        string
	Description string
}

// DefaultLinks lists the routes the server registers.
var DefaultLinks = []Link{ //nolint:gochecknoglobals // static route table
	{Method: "POST", Path: "/v1/forecast?horizon=short&mode=text", Description: "daily table from an element-major payload"},
	{Method: "POST", Path: "/v1/forecast?horizon=short&mode=image", Description: "dot chart PNG of the short horizon"},
	{Method: "POST", Path: "/v1/summary", Description: "summary of the current window of a window-major payload"},
	{Method: "GET", Path: "/api-docs", Description: "API reference"},
	{Method: "GET", Path: "/stats", Description: "service counters"},
	{Method: "GET", Path: "/metrics", Description: "Prometheus metrics"},
	{Method: "GET", Path: "/healthz", Description: "liveness probe"},
}

var page = template.Must(template.New("index").Parse(`<!doctype html>
<html>
  <head><meta charset="utf-8"><title>wxgrid</title></head>
  <body>
    <h1>wxgrid</h1>
    <ul>
{{- range .}}
      <li><code>{{.Method}} {{.Path}}</code> {{.Description}}</li>
{{- end}}
    </ul>
  </body>
</html>
`))

// Register attaches the landing page at / to mux. Other unmatched paths
// return 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler(DefaultLinks))
}

// RootHandler renders the landing page.
type RootHandler struct {
	body []byte
}

// NewRootHandler renders links once and returns a handler serving them.
func NewRootHandler(links []Link) *RootHandler {
	var buf bytes.Buffer
	if err := page.Execute(&buf, links); err != nil {
		panic(err)
	}
	return &RootHandler{body: buf.Bytes()}
}

// ServeHTTP handles GET / requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.body)
}
