package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/adapter"
	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/rag/ingest"
)

// ChatHandler godoc
// @Summary      Ask a question about the uploaded documents
// @Description  Answers the query from the session's documents. A missing session_id starts a new session. With async=true the job id is returned at once.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest  true  "Query and optional session id"
// @Param        async    query     bool             false "Return immediately with the queued job"
// @Success      200      {object}  api.JobResponse  "Answer with fallback flags"
// @Success      202      {object}  api.JobResponse  "Job queued"
// @Failure      400      {object}  api.JobResponse  "Empty query or malformed body"
// @Router       /chat [post]
func (h *JobHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var requestData api.ChatRequest
	if err := decodeBody(r, &requestData); err != nil {
		logRH.WithTrace(r.Context()).Warn("Bad chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, "Bad Request")
		return
	}
	if strings.TrimSpace(requestData.Query) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, commonModels.ErrEmptyQuery.Error())
		return
	}

	sessionId, err := h.ensureSession(r.Context(), requestData.SessionId)
	if err != nil {
		h.logger.WithTrace(r.Context()).Error("Could not open session", "error", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, requestData.SessionId, "Session store unavailable")
		return
	}

	j := newJob(r.Context(), jobModel.JobTypeQuery, sessionId, jobModel.UserQueryInit)
	j.JobPayload.Question = requestData.Query
	h.dispatch(w, r, j, isAsync(r))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Router       /status/{id} [get]
func (h *JobHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	logRH.WithTrace(r.Context()).Debug("Get Status Request", "path", r.URL.Path)

	result, isFound := h.service.GetJob(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler handles the uploading of documents for RAG ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a PDF, DOCX or text file via multipart/form-data, extracts, chunks and indexes it into the session.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document    formData  file    true   "The PDF, DOCX or text file to upload"
// @Param        session_id  formData  string  false  "Session to add the document to"
// @Param        async       query     bool    false  "Return immediately with the queued job"
// @Success      200  {object}  api.JobResponse "Document indexed"
// @Failure      400  {object}  api.JobResponse "Missing file or file too large"
// @Failure      409  {object}  api.JobResponse "Session document limit reached"
// @Failure      415  {object}  api.JobResponse "Unsupported document type"
// @Failure      422  {object}  api.JobResponse "No text could be extracted"
// @Failure      500  {object}  api.JobResponse "Storage or write error"
// @Router       /ingest [post]
func (h *JobHandler) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.WithTrace(r.Context())

	targetDir, errString := getTargetDirectory(h.settings.Server.UploadDir)
	if errString != "" {
		log.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize())
	if err := r.ParseMultipartForm(h.maxUploadSize()); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := filepath.Base(fileMetadata.Filename)
	if ingest.DocTypeOf(docName) == commonModels.ERR {
		WriteErrorResponse(w, http.StatusUnsupportedMediaType, docName, commonModels.ErrUnsupportedDocument.Error())
		return
	}

	sessionId, err := h.ensureSession(r.Context(), r.FormValue("session_id"))
	if err != nil {
		log.Error("Could not open session", "error", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Session store unavailable")
		return
	}

	tempFilePath, err := saveUpload(targetDir, docName, fileReader)
	if err != nil {
		log.Error("Could not store upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	j := newJob(r.Context(), jobModel.JobTypeIngest, sessionId, jobModel.IngestInit)
	j.JobPayload.IngestFileName = docName
	j.JobPayload.IngestPath = tempFilePath
	h.dispatch(w, r, j, isAsync(r))
}

func (h *JobHandler) maxUploadSize() int64 {
	return h.settings.Server.MaxUploadSize()
}

func saveUpload(targetDir, docName string, src io.Reader) (string, error) {
	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), docName)
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		return "", err
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, src); err != nil {
		_ = os.Remove(tempFilePath)
		return "", err
	}
	return tempFilePath, nil
}

// ResetHandler godoc
// @Summary      Clear the document index
// @Description  Removes every indexed chunk and frees the calling session's document slots.
// @Tags         Maintenance
// @Accept       json
// @Produce      json
// @Param        request  body      api.ResetRequest  false  "Session whose document count is reset"
// @Success      200      {object}  api.JobResponse
// @Failure      503      {object}  api.JobResponse  "Vector index unavailable"
// @Router       /reset [post]
func (h *JobHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var requestData api.ResetRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &requestData); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}
	}
	j := newJob(r.Context(), jobModel.JobTypeReset, requestData.SessionId, jobModel.ResetCall)
	h.dispatch(w, r, j, false)
}

// CleanupHandler godoc
// @Summary      Release the generation model
// @Description  Unloads the language model and frees its memory. The next question reloads it.
// @Tags         Maintenance
// @Produce      json
// @Success      200  {object}  api.JobResponse
// @Router       /cleanup [post]
func (h *JobHandler) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	j := newJob(r.Context(), jobModel.JobTypeCleanup, "", jobModel.CleanupCall)
	h.dispatch(w, r, j, false)
}

// HealthHandler godoc
// @Summary      Health check
// @Description  Reports the orchestrator and the reachability of each remote collaborator.
// @Tags         Maintenance
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *JobHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	res := api.HealthResponse{Status: "healthy", Service: "orchestrator"}
	if len(h.collaborators) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), h.settings.Services.HealthTimeout)
		defer cancel()
		res.Collaborators = make(map[string]string, len(h.collaborators))
		for name, c := range h.collaborators {
			if err := c.Health(ctx); err != nil {
				res.Collaborators[name] = "unreachable"
				res.Status = "degraded"
				continue
			}
			res.Collaborators[name] = "healthy"
		}
	}
	writeJsonResponse(w, http.StatusOK, res)
}
