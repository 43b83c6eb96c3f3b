// Package demosite serves a small site whose pages carry seeded UI defects,
// for demos and end-to-end audit runs.
package demosite

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

var pageTmpl = template.Must(template.New("page").Parse(
	`<!DOCTYPE html>
<html{{if .Lang}} lang="{{.Lang}}"{{end}}>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// DemoSite is a simple HTTP server whose pages demonstrate every defect the
// audit checks detect.
type DemoSite struct {
	cfg   Config
	pages map[string]PageDefinition
}

// NewDemoSite creates a new demo site instance.
func NewDemoSite(cfg Config) *DemoSite {
	pageMap := make(map[string]PageDefinition)
	for _, p := range AllPages() {
		pageMap[p.Path] = p
	}
	return &DemoSite{cfg: cfg, pages: pageMap}
}

// Handler returns the site's routing handler, usable under httptest in tests.
func (s *DemoSite) Handler() http.Handler {
	mux := http.NewServeMux()

	for path := range s.pages {
		p := path
		mux.HandleFunc(p, s.pageHandler(p))
	}

	mux.HandleFunc("/sitemap.xml", s.sitemapHandler)

	// Every /static/ asset 404s so image references render as broken.
	mux.HandleFunc("/static/", http.NotFound)

	return mux
}

// Start starts the demo site.
func (s *DemoSite) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo site starting on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *DemoSite) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// ServeMux routes unknown paths to the "/" pattern; only the exact
		// root renders the home page.
		if path == "/" && r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page, ok := s.pages[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		pageTmpl.Execute(w, struct {
			Title string
			Lang  string
			Body  template.HTML
		}{
			Title: page.Title,
			Lang:  page.Lang,
			Body:  template.HTML(page.Body),
		})
	}
}

func (s *DemoSite) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, p := range AllPages() {
		fmt.Fprintf(&b, "  <url><loc>%s://%s%s</loc></url>\n", scheme, r.Host, p.Path)
	}
	b.WriteString("</urlset>\n")

	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprint(w, b.String())
}
