package intake

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Sudo-Ivan/jacked-api/jacked"
	"github.com/charmbracelet/log"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the intake HTTP server on addr until ctx is done or the
// listener fails. The listener is closed before Serve returns.
func Serve(ctx context.Context, addr string, h *Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("intake server: %w", err)
	}
	return serve(ctx, ln, h)
}

func serve(ctx context.Context, ln net.Listener, h *Handler) error {
	cfg := jacked.DefaultConfig()
	cfg.WriteTimeout = 10 * time.Second
	cfg.IdleTimeout = 2 * time.Minute

	app := jacked.NewWithConfig(cfg)

	app.POST("/api/traffic", func(c *jacked.Context) error {
		defer c.Request.Body.Close()
		status, resp := h.Traffic(c.Request.Body)
		return c.JSON(status, resp)
	})

	app.POST("/api/ownship", func(c *jacked.Context) error {
		defer c.Request.Body.Close()
		status, resp := h.Ownship(c.Request.Body)
		return c.JSON(status, resp)
	})

	app.GET("/api/status", func(c *jacked.Context) error {
		status, resp := h.Status()
		return c.JSON(status, resp)
	})

	srv := &http.Server{
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	log.Info("Traffic intake listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return fmt.Errorf("intake server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		log.Warn("Traffic intake did not stop cleanly", "err", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("intake server: %w", err)
	}

	log.Info("Traffic intake stopped")
	return nil
}
