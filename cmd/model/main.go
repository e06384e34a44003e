// Command model serves answer generation over HTTP so the api can run it out of process.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/handlers"
	"github.com/akolanti/DocRAG/internal/middleware"
	"github.com/akolanti/DocRAG/internal/server"
	"github.com/akolanti/DocRAG/internal/setup"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file")
	listenAddr := flag.String("listen-addr", "", "server listen address, overrides the config")
	flag.Parse()

	settings, err := config.Load(*configPath)
	logger_i.Init(settings.Log)
	logger := logger_i.NewLogger("model")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if *listenAddr == "" {
		*listenAddr = settings.Server.ModelAddr
	}
	middleware.ConfigureRateLimit(config.RateLimitSettings{})

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	handle := setup.ModelHandle(settings.Generation)
	if settings.Generation.Preload {
		if err := handle.Preload(serviceContext); err != nil {
			logger.Warn("Model preload failed, it loads on the first request", "error", err)
		}
	}

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	go server.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices: func() {
			if err := handle.Cleanup(context.Background()); err != nil {
				logger.Warn("Model cleanup failed", "error", err)
			}
			closeExternalServices()
		},
	})
	go server.CreateServer(*listenAddr, server.ModelRouter(handlers.NewModelHandler(handle)))

	<-stopExecution
	logger.Info("Model service stopped")
}
