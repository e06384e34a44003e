package handlers

import (
	"net/http"

	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

/*
IndexHandler and ModelHandler are the two collaborator services the
orchestrator can run out of process. Every failure answers 500 {detail};
the calling side maps that to its own fallback.
*/

type IndexHandler struct {
	index    vectorDB.Index
	defaultK int
	logger   *logger_i.Logger
}

func NewIndexHandler(index vectorDB.Index, defaultK int) *IndexHandler {
	if defaultK <= 0 {
		defaultK = config.RetrievalTopK
	}
	return &IndexHandler{index: index, defaultK: defaultK, logger: logger_i.NewLogger("IndexHandler")}
}

// Create godoc
// @Summary  Add chunks to the vector store
// @Tags     Vector store
// @Accept   json
// @Produce  json
// @Param    request  body      api.CreateIndexRequest  true  "Chunks to embed and store"
// @Success  200      {object}  api.CreateIndexResponse
// @Failure  500      {object}  api.ErrorDetail
// @Router   /vectorstore/create [post]
func (h *IndexHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateIndexRequest
	if err := decodeBody(r, &req); err != nil {
		WriteDetailResponse(w, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}
	chunks := make([]commonModels.DocChunk, 0, len(req.Chunks))
	for _, c := range req.Chunks {
		chunks = append(chunks, commonModels.DocChunk{ChunkId: c.ChunkId, Text: c.Text})
	}
	if err := h.index.Insert(r.Context(), chunks); err != nil {
		h.logger.WithTrace(r.Context()).Error("Insert failed", "chunks", len(chunks), "error", err)
		WriteDetailResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, api.CreateIndexResponse{Message: "Vector store updated", ChunkCount: len(chunks)})
}

// Query godoc
// @Summary  Top-k passages for a query
// @Tags     Vector store
// @Accept   json
// @Produce  json
// @Param    request  body      api.QueryIndexRequest  true  "Query and optional k (default 7)"
// @Success  200      {object}  api.QueryIndexResponse
// @Failure  500      {object}  api.ErrorDetail
// @Router   /vectorstore/query [post]
func (h *IndexHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req api.QueryIndexRequest
	if err := decodeBody(r, &req); err != nil {
		WriteDetailResponse(w, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}
	k := h.defaultK
	if req.K != nil {
		k = *req.K
	}
	res, err := h.index.Search(r.Context(), req.Query, k)
	if err != nil {
		h.logger.WithTrace(r.Context()).Error("Search failed", "error", err)
		WriteDetailResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	results := res.Texts
	if results == nil {
		results = []string{}
	}
	writeJsonResponse(w, http.StatusOK, api.QueryIndexResponse{Results: results, Lexical: res.Lexical})
}

// Reset godoc
// @Summary  Remove every stored chunk
// @Tags     Vector store
// @Produce  json
// @Success  200  {object}  api.MessageResponse
// @Failure  500  {object}  api.ErrorDetail
// @Router   /vectorstore/reset [delete]
func (h *IndexHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Reset(r.Context()); err != nil {
		h.logger.WithTrace(r.Context()).Error("Reset failed", "error", err)
		WriteDetailResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Vector store reset"})
}

func (h *IndexHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: "vectorstore"})
}

type ModelHandler struct {
	generator llm.Generator
	logger    *logger_i.Logger
}

func NewModelHandler(generator llm.Generator) *ModelHandler {
	return &ModelHandler{generator: generator, logger: logger_i.NewLogger("ModelHandler")}
}

// Generate godoc
// @Summary  Answer a query from a context
// @Tags     Model
// @Accept   json
// @Produce  json
// @Param    request  body      api.GenerateRequest  true  "Retrieved context and the user query"
// @Success  200      {object}  api.GenerateResponse
// @Failure  500      {object}  api.ErrorDetail
// @Router   /generate [post]
func (h *ModelHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		WriteDetailResponse(w, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}
	res := h.generator.Answer(r.Context(), req.Context, req.Query)
	writeJsonResponse(w, http.StatusOK, api.GenerateResponse{Response: res.Text, Fallback: res.UsedFallback})
}

// Cleanup godoc
// @Summary  Unload the model and free memory
// @Tags     Model
// @Produce  json
// @Success  200  {object}  api.MessageResponse
// @Failure  500  {object}  api.ErrorDetail
// @Router   /cleanup [post]
func (h *ModelHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if err := h.generator.Cleanup(r.Context()); err != nil {
		h.logger.WithTrace(r.Context()).Error("Cleanup failed", "error", err)
		WriteDetailResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Message: "Model resources released"})
}

func (h *ModelHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: "model"})
}
