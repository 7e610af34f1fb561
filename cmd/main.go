// Package main is the production entry point for the MoleBeat music player.
//
// MoleBeat is a local-first music player core:
// - Event-driven communication (no callbacks)
// - Dependency injection for testability
// - Repository pattern with a single sqlite store
// - Serialized background persistence
//
// Build:
//
//	go build -o build/molebeat ./cmd
//
// Run:
//
//	./build/molebeat
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/molebeat/molebeat/internal/app"
)

func main() {
	// Create default configuration (env and .env aware)
	config := app.DefaultConfig()

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		fmt.Println("\nShutting down...")
		application.Shutdown()
		fmt.Println("Shutdown complete")
	}()

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.Run(ctx)
}
