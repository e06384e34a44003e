// Command api runs the document chat orchestrator: uploads, questions,
// sessions and the MCP endpoint, backed by a worker pool.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocRAG/internal/config"
	jobmodel "github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/handlers"
	"github.com/akolanti/DocRAG/internal/job"
	"github.com/akolanti/DocRAG/internal/mcpserver"
	"github.com/akolanti/DocRAG/internal/middleware"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/server"
	"github.com/akolanti/DocRAG/internal/setup"
	"github.com/akolanti/DocRAG/internal/worker"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var (
	configPath        string
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&configPath, "config", "", "path to a yaml config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config")
	flag.Parse()

	settings, err := config.Load(configPath)
	logger_i.Init(settings.Log)
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr == "" {
		listenAddr = settings.Server.APIAddr
	}
	middleware.ConfigureRateLimit(settings.RateLimit)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	jobStore, sessionStore, closeStores := setup.SessionStores(serviceContext, settings.Redis)
	defer closeStores()

	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobmodel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          jobStore,
		SessionStore:      sessionStore,
	})
	logger.Info("Starting job service")

	index, indexCloser, err := setup.Index(serviceContext, settings)
	if err != nil {
		logger.Error("Vector store failed to initialize. Shutting down.", "error", err)
		return
	}
	defer func() {
		if err := indexCloser.Close(); err != nil {
			logger.Warn("Error closing vector store", "error", err)
		}
	}()
	generator := setup.Generator(serviceContext, settings)
	ragService := rag.NewService(index, generator, sessionStore, settings.RAG)

	//init worker pool
	stopWorkerChannel = make(chan bool)
	worker.NewPool(service, ragService, settings.Worker).Start(stopWorkerChannel, &workerWaitGroup)

	jobHandler := handlers.NewJobHandler(service, settings, setup.Collaborators(index, generator))
	mcp, err := mcpserver.NewServer(service, sessionStore)
	if err != nil {
		logger.Error("MCP server failed to initialize. Shutting down.", "error", err)
		return
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices: func() {
			if err := generator.Cleanup(context.Background()); err != nil {
				logger.Warn("Model cleanup failed", "error", err)
			}
			closeExternalServices()
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, server.APIRouter(jobHandler, mcp.Handler()))

	<-stopExecution
	logger.Info("Server stopped")
}
