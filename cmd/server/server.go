package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// startHTTPServer runs the HTTP server until the context is canceled, a
// SIGINT/SIGTERM arrives, or the listener fails. In-flight requests get a
// 10 second drain before cleanup runs.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			cancelServer()
		}
	}()

	var serveErr error
	select {
	case sig := <-stop:
		app.logger.Info("Shutdown signal received", "signal", sig.String())
	case <-serverCtx.Done():
		select {
		case serveErr = <-errCh:
			app.logger.Error("HTTP server failed", "error", serveErr)
		default:
			app.logger.Info("Server context canceled, shutting down")
		}
	}

	// Cleanup runs whether or not the drain succeeds; the task runner and
	// the database connection must not outlive the server.
	defer app.cleanup()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}

	app.logger.Info("Server shutdown completed")
	return nil
}
