package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/projectdesk-backend/internal/app"
	apphttp "github.com/yungbote/projectdesk-backend/internal/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Start(); err != nil {
		application.Log.Error("Failed to start background workers", "error", err)
		return
	}

	server := apphttp.NewServer(application.Router, application.Addr())
	server.OnShutdown(application.Hub.CloseAll)
	errCh := make(chan error, 1)
	go func() {
		application.Log.Info("Server listening", "addr", application.Addr())
		errCh <- server.Run()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			application.Log.Error("Server failed", "error", err)
		}
		return
	case <-ctx.Done():
	}

	application.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		application.Log.Warn("Graceful shutdown failed", "error", err)
	}
}
