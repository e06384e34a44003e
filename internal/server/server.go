package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	// WorkerStop and Group are nil for binaries without a worker pool.
	WorkerStop    chan bool
	Group         *sync.WaitGroup
	CloseServices context.CancelFunc
}

func CreateServer(listenAddr string, handler http.Handler) {
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//close workers
		if shutdownParams.WorkerStop != nil {
			close(shutdownParams.WorkerStop)
			shutdownParams.Group.Wait()
		}
		if shutdownParams.CloseServices != nil {
			shutdownParams.CloseServices()
		}
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Shut down gracefully")
	case <-ctx.Done():
		_logger.Warn("Forced shut down")
	}
	close(shutdownParams.StopExecution)
}
