package app

import (
	"github.com/sableview/uivet/internal/crawl"
	"github.com/sableview/uivet/internal/driver"
	"github.com/sableview/uivet/internal/enrich"
	"github.com/sableview/uivet/internal/model"
)

// Config collects the runtime settings for one uivet process: how pages are
// rendered, which checks run, crawl bounds and the optional enrichment and
// persistence layers.
type Config struct {
	DriverCfg driver.Config
	ScanCfg   model.ScanConfig
	CrawlOpts crawl.Options
	EnrichCfg enrich.Config

	MaxPages int
	MaxDepth int

	// StorePath is the SQLite audit-history file; empty disables
	// persistence.
	StorePath string

	// ListenAddr is the API server bind address.
	ListenAddr string
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DriverCfg:  driver.DefaultConfig(),
		ScanCfg:    model.DefaultScanConfig(),
		CrawlOpts:  crawl.DefaultOptions(),
		EnrichCfg:  enrich.DefaultConfig(),
		MaxPages:   crawl.DefaultMaxPages,
		MaxDepth:   crawl.DefaultMaxDepth,
		ListenAddr: ":8080",
	}
}
