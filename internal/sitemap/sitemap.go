// Package sitemap resolves a site's declared page inventory from XML
// sitemaps, including nested sitemap indexes. Failures are never fatal to a
// crawl: any fetch or parse problem yields an empty result and a warning.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sableview/uivet/internal/logging"
)

// maxNestedSitemaps bounds recursion into sitemap indexes so a cyclic or
// enormous index cannot stall the crawl.
const maxNestedSitemaps = 5

// maxBodyBytes caps how much of a sitemap document is read.
const maxBodyBytes = 10 << 20

type Resolver struct {
	client *http.Client
	logger logging.Logger
}

// NewResolver builds a Resolver. A nil client gets a 15s-timeout default.
func NewResolver(client *http.Client, logger logging.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Resolver{client: client, logger: logger}
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []loc    `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []loc    `xml:"sitemap"`
}

type loc struct {
	Loc string `xml:"loc"`
}

// Resolve fetches sitemapURL and returns every page location it declares.
// A sitemap index is followed one level deep, into at most five child
// sitemaps. Image and video sitemap entries are excluded.
func (r *Resolver) Resolve(ctx context.Context, sitemapURL string) []string {
	return r.resolve(ctx, sitemapURL, true)
}

func (r *Resolver) resolve(ctx context.Context, sitemapURL string, followIndex bool) []string {
	body, err := r.fetch(ctx, sitemapURL)
	if err != nil {
		r.logger.Warn("sitemap fetch failed, proceeding without it",
			logging.Field{Key: "url", Value: sitemapURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil
	}

	// A sitemap index wraps <sitemap><loc> entries instead of <url><loc>.
	if strings.Contains(string(body), "<sitemapindex") {
		if !followIndex {
			return nil
		}
		var idx sitemapIndex
		if err := xml.Unmarshal(body, &idx); err != nil {
			r.logger.Warn("sitemap index parse failed",
				logging.Field{Key: "url", Value: sitemapURL},
				logging.Field{Key: "error", Value: err.Error()})
			return nil
		}
		var out []string
		followed := 0
		for _, child := range idx.Sitemaps {
			if followed >= maxNestedSitemaps {
				break
			}
			child.Loc = strings.TrimSpace(child.Loc)
			if child.Loc == "" || isMediaSitemap(child.Loc) {
				continue
			}
			out = append(out, r.resolve(ctx, child.Loc, false)...)
			followed++
		}
		return out
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		r.logger.Warn("sitemap parse failed",
			logging.Field{Key: "url", Value: sitemapURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil
	}

	urls := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		if v := strings.TrimSpace(u.Loc); v != "" {
			urls = append(urls, v)
		}
	}
	return urls
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func isMediaSitemap(loc string) bool {
	l := strings.ToLower(loc)
	return strings.Contains(l, "image") || strings.Contains(l, "video")
}
