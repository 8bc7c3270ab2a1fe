package shutdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/valyala/fasthttp"

	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/security"
)

var exit = os.Exit

// ShutdownApp stops the server, the maintenance runner and the backend in
// that order. lockedKey is unlocked and wiped when non-nil. Errors from
// individual steps are logged and joined.
func ShutdownApp(ctx context.Context, srvFast *fasthttp.Server, maintenanceCancel context.CancelFunc, backend io.Closer, lockedKey []byte) error {
	logger.Info("shutdown_requested")
	var errs []error

	// stop accepting new requests
	if srvFast != nil {
		logger.Info("shutdown_stopping_http")
		done := make(chan error, 1)
		go func() { done <- srvFast.Shutdown() }()
		select {
		case err := <-done:
			if err != nil {
				logger.Error("shutdown_http_error", "error", err)
				errs = append(errs, fmt.Errorf("http shutdown: %w", err))
			}
		case <-ctx.Done():
			logger.Warn("shutdown_http_timeout", "error", ctx.Err())
			errs = append(errs, fmt.Errorf("http shutdown: %w", ctx.Err()))
		}
	}

	if maintenanceCancel != nil {
		logger.Info("shutdown_stopping_maintenance")
		maintenanceCancel()
	}

	if backend != nil {
		logger.Info("shutdown_closing_store")
		if err := backend.Close(); err != nil {
			logger.Error("shutdown_store_close_error", "error", err)
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if lockedKey != nil {
		if err := security.UnlockMemory(lockedKey); err != nil {
			logger.Warn("shutdown_munlock_failed", "error", err)
		}
		security.Wipe(lockedKey)
	}

	logger.Info("shutdown_complete")
	logger.Sync()
	return errors.Join(errs...)
}

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
// SIGPIPE dumps goroutine stacks before cancelling.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case s := <-sigc:
			logger.Info("signal_received", "signal", s.String(), "msg", "shutdown requested")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigc)
	}()

	sigpipe := make(chan os.Signal, 1)
	signal.Notify(sigpipe, syscall.SIGPIPE)
	go func() {
		select {
		case s := <-sigpipe:
			logger.Info("signal_received", "signal", s.String(), "msg", "SIGPIPE - dumping goroutine stacks")
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			logger.Info("goroutine_stack_dump", "dump", string(buf[:n]))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigpipe)
	}()

	return ctx, cancel
}

// Abort logs a fatal startup error, echoes it to stderr and exits 1.
func Abort(msg string, err error) {
	if err != nil {
		logger.Error("fatal", "msg", msg, "error", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		logger.Error("fatal", "msg", msg)
		fmt.Fprintln(os.Stderr, msg)
	}
	logger.Sync()
	exit(1)
}
