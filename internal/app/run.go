package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/rockiq/internal/ctxlog"
	"github.com/vk/rockiq/internal/watch"
)

// Run serves the editing API until the context is cancelled. When watching
// is enabled it also broadcasts document changes to connected editors.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	// Fail fast on an unreadable or malformed document rather than on the
	// first request.
	if _, err := a.session.Sequences(ctx); err != nil {
		return fmt.Errorf("failed to open document %s: %w", a.config.DocumentPath, err)
	}

	if a.config.Watch {
		watcher, err := watch.New(a.config.DocumentPath, a.config.WatchDebounce, func() {
			a.hub.Broadcast(watch.DocumentChanged)
		})
		if err != nil {
			return fmt.Errorf("failed to watch document: %w", err)
		}
		go watcher.Run(ctx)
		a.logger.Debug("Document watcher started.", "path", a.config.DocumentPath)
	}

	server := &http.Server{Addr: a.config.Listen, Handler: a.router}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Sequence editor serving.",
			"address", a.config.Listen, "document", a.config.DocumentPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Shutting down.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
