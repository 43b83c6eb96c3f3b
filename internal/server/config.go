package server

import (
	"github.com/sableview/uivet/internal/app"
	"github.com/sableview/uivet/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server (the CLI
	// uses the orchestrator in-process and does not require the network).
	ListenAddr string

	AppConfig *app.Config
	Logger    logging.Logger

	// Runner overrides the audit pipeline; nil uses the browser-backed
	// default.
	Runner app.AuditRunner
}
