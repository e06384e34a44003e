// Command vectorstore serves the embedding index over HTTP so the api can run it out of process.
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
	logger := logger_i.NewLogger("vectorstore")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if *listenAddr == "" {
		*listenAddr = settings.Server.IndexAddr
	}
	middleware.ConfigureRateLimit(config.RateLimitSettings{})

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	index, err := setup.LocalIndex(serviceContext, settings)
	if err != nil {
		logger.Error("Vector store failed to initialize. Shutting down.", "error", err)
		return
	}

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	go server.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices: func() {
			if err := index.Close(); err != nil {
				logger.Warn("Error closing store", "error", err)
			}
			closeExternalServices()
		},
	})
	go server.CreateServer(*listenAddr, server.IndexRouter(handlers.NewIndexHandler(index, settings.RAG.TopK)))

	<-stopExecution
	logger.Info("Vector store stopped")
}
