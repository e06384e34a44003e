package server

import (
	"net/http"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/handlers"
	"github.com/akolanti/DocRAG/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// APIRouter mounts the orchestrator endpoints. mcp may be nil.
func APIRouter(h *handlers.JobHandler, mcp http.Handler) *chi.Mux {
	r := utils.NewRouter(true).Router

	r.Get("/health", middleware.Wrap(h.HealthHandler))
	r.Post("/sessions", middleware.Wrap(h.CreateSessionHandler))
	r.Get("/sessions/{id}/history", middleware.Wrap(h.GetHistoryHandler))
	r.Delete("/sessions/{id}", middleware.Wrap(h.DeleteSessionHandler))
	r.Post("/ingest", middleware.Wrap(h.PostIngestHandler))
	r.Post("/chat", middleware.Wrap(h.ChatHandler))
	r.Post("/reset", middleware.Wrap(h.ResetHandler))
	r.Post("/cleanup", middleware.Wrap(h.CleanupHandler))
	r.Get("/status/{id}", middleware.Wrap(h.GetStatusHandler))
	if mcp != nil {
		r.Handle("/mcp", mcp)
	}
	return r
}

func IndexRouter(h *handlers.IndexHandler) *chi.Mux {
	r := utils.NewRouter(false).Router

	r.Get("/health", middleware.WrapService(h.Health))
	r.Post("/vectorstore/create", middleware.WrapService(h.Create))
	r.Post("/vectorstore/query", middleware.WrapService(h.Query))
	r.Delete("/vectorstore/reset", middleware.WrapService(h.Reset))
	return r
}

func ModelRouter(h *handlers.ModelHandler) *chi.Mux {
	r := utils.NewRouter(false).Router

	r.Get("/health", middleware.WrapService(h.Health))
	r.Post("/generate", middleware.WrapService(h.Generate))
	r.Post("/cleanup", middleware.WrapService(h.Cleanup))
	return r
}
