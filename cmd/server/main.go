// Package main is the entry point for the noteseq API server
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/seqforge/noteseq/pkg/api"
)

func main() {
	port := flag.Int("port", defaultPort(), "Server port (env NOTESEQ_PORT)")
	flag.Parse()

	fmt.Printf("Starting noteseq API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func defaultPort() int {
	if raw := os.Getenv("NOTESEQ_PORT"); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			return port
		}
	}
	return 8080
}
