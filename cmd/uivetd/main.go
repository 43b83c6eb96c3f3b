// Command uivetd serves the uivet audit API: submit jobs over REST, stream
// progress over WebSocket, browse audit history. Swagger UI at /swagger/.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sableview/uivet/internal/app"
	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/server"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "HTTP listen address")
		storePath = flag.String("store", "uivet.db", "SQLite audit-history file (empty=no persistence)")
		headed    = flag.Bool("headed", false, "Run the browser visibly")
		enrich    = flag.String("enrich", "", "llama-server endpoint for finding enrichment (empty=off)")
	)
	flag.Parse()

	logger := logging.NewStdoutLogger("uivetd")

	cfg := app.DefaultConfig()
	cfg.ListenAddr = *addr
	cfg.StorePath = *storePath
	cfg.DriverCfg.Headless = !*headed
	cfg.EnrichCfg.Endpoint = *enrich

	srv, err := server.NewServer(server.Config{
		ListenAddr: *addr,
		AppConfig:  cfg,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("server setup failed", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer srv.Close()

	httpSrv := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", logging.Field{Key: "addr", Value: *addr})
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
