// Command demosite starts the uivet demo site: a handful of pages seeded
// with UI defects for demos and end-to-end audit runs.
// Usage: go run ./cmd/demosite [port]
// Default port: 9777
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/sableview/uivet/internal/demosite"
)

func main() {
	cfg := demosite.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("uivet demo site")
	fmt.Println("Every page carries seeded UI defects. Audit it with:")
	fmt.Printf("  uivet -url http://localhost:%d\n", cfg.Port)
	fmt.Println()

	site := demosite.NewDemoSite(cfg)
	if err := site.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
