package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mygeone2/quotes-fake-api/internal/app"
)

func main() {
	slog.Info("Starting quotes fake API...")

	application, err := app.Start(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start application: %v\n", err)
		os.Exit(1)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- application.Run()
	}()

	// Wait for either a server error or a shutdown signal
	select {
	case err := <-errChan:
		application.Shutdown()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
		if err := application.Shutdown(); err != nil {
			os.Exit(1)
		}
	}
}
