package model

// PageMetrics are the load/DOM measurements captured on the first viewport.
type PageMetrics struct {
	// LoadTimeMs is the navigation latency of the first viewport, in ms.
	LoadTimeMs int64 `json:"load_time_ms"`

	// DOMElements is the rendered element count of the first viewport.
	DOMElements int `json:"dom_elements"`
}

// PageResult is one scanned page's outcome. Created once per URL; the
// finding list is updated in place during dedup, nothing else mutates.
type PageResult struct {
	URL string `json:"url"`

	// Score is the page quality score in [0,100]; 100 means no issues.
	Score int `json:"score"`

	// Timestamp is the scan completion time in RFC 3339.
	Timestamp string `json:"timestamp"`

	// Screenshot is an optional compressed full-page capture of the first
	// viewport. Omitted when capture failed or exceeded the size ceiling.
	Screenshot []byte `json:"screenshot,omitempty"`

	// Findings are sorted by descending priority.
	Findings []Finding `json:"findings"`

	Metrics PageMetrics `json:"metrics"`

	// Links are the same-origin outbound links discovered during the scan,
	// harvested by the frontier manager to grow the crawl.
	Links []string `json:"links,omitempty"`
}

// CrawlResult is one site's outcome, built incrementally as batches finish.
type CrawlResult struct {
	RootURL string `json:"root_url"`

	// PagesScanned counts pages that produced a PageResult. Always
	// <= the configured page budget.
	PagesScanned int `json:"pages_scanned"`

	// TotalPagesFound counts every distinct crawlable URL discovered,
	// independent of the scan budget.
	TotalPagesFound int `json:"total_pages_found"`

	// Score is the arithmetic mean of page scores, rounded; 100 when no
	// pages were scanned.
	Score int `json:"score"`

	Pages []PageResult `json:"pages"`

	// ElapsedMs is the wall-clock duration of the whole crawl.
	ElapsedMs int64 `json:"elapsed_ms,omitempty"`
}
