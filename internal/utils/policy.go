package utils

import (
	"net/url"
	"strings"
)

// CrawlPolicy constrains which same-origin URLs the frontier may schedule.
type CrawlPolicy struct {
	// AllowPatterns, when non-empty, restricts crawling to URLs whose path
	// contains at least one of these substrings.
	AllowPatterns []string

	// DenyPatterns excludes URLs whose path contains any of these substrings.
	DenyPatterns []string
}

// Extensions that never resolve to a scannable page.
var skipExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".rar": {}, ".7z": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
	".css": {}, ".js": {}, ".mjs": {}, ".map": {},
	".mp3": {}, ".mp4": {}, ".webm": {}, ".avi": {}, ".mov": {}, ".wav": {}, ".ogg": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
	".xml": {}, ".json": {}, ".rss": {}, ".atom": {},
}

// Conventional non-content path prefixes: APIs, framework internals and
// static/CDN asset trees.
var skipPathPrefixes = []string{
	"/api/", "/graphql", "/wp-json/", "/wp-admin/",
	"/_next/", "/_nuxt/", "/__/",
	"/static/", "/assets/", "/cdn-cgi/",
}

// ShouldCrawl decides whether a discovered URL belongs on the frontier.
// Cross-origin URLs and non-page resources are always rejected, regardless
// of the policy's allow patterns.
func ShouldCrawl(raw string, baseOrigin string, policy CrawlPolicy) bool {
	if !SameOrigin(raw, baseOrigin) {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)

	if dot := strings.LastIndex(p, "."); dot >= 0 && !strings.Contains(p[dot:], "/") {
		if _, skip := skipExtensions[p[dot:]]; skip {
			return false
		}
	}

	for _, prefix := range skipPathPrefixes {
		if strings.HasPrefix(p, prefix) || p == strings.TrimSuffix(prefix, "/") {
			return false
		}
	}

	for _, pat := range policy.DenyPatterns {
		if pat != "" && strings.Contains(p, pat) {
			return false
		}
	}

	if len(policy.AllowPatterns) > 0 {
		for _, pat := range policy.AllowPatterns {
			if pat != "" && strings.Contains(p, pat) {
				return true
			}
		}
		return false
	}

	return true
}
