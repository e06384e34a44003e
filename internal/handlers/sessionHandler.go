package handlers

import (
	"errors"
	"net/http"

	"github.com/akolanti/DocRAG/internal/adapter"
	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
)

// CreateSessionHandler godoc
// @Summary      Start a session
// @Description  Creates an empty session. Documents and questions are scoped to it.
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  api.SessionResponse
// @Failure      503  {object}  api.JobResponse  "Session store unavailable"
// @Router       /sessions [post]
func (h *JobHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.SessionStore.CreateSession(r.Context(), utils.GetNewUUID())
	if err != nil {
		h.logger.WithTrace(r.Context()).Error("Could not create session", "error", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Session store unavailable")
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session))
}

// GetHistoryHandler godoc
// @Summary      Session history
// @Description  Lists the questions asked in the session with their answers, oldest first.
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.HistoryResponse
// @Failure      404  {object}  api.JobResponse  "Session not found"
// @Router       /sessions/{id}/history [get]
func (h *JobHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	entries, err := h.service.SessionStore.History(r.Context(), id)
	if errors.Is(err, commonModels.ErrSessionNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, id, "Session not found")
		return
	}
	if err != nil {
		h.logger.WithTrace(r.Context()).Error("Could not read history", "sessionId", id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not read history")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(id, entries))
}

// DeleteSessionHandler godoc
// @Summary      End a session
// @Description  Drops the session's document count and history. Indexed chunks stay until /reset.
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      204
// @Router       /sessions/{id} [delete]
func (h *JobHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	if err := h.service.SessionStore.DeleteSession(r.Context(), id); err != nil {
		h.logger.WithTrace(r.Context()).Error("Could not delete session", "sessionId", id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Could not delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
