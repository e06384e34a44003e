package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/DocRAG/internal/adapter"
	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/job"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

// HealthChecker is a collaborator the orchestrator can check.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type JobHandler struct {
	service       *job.Service
	settings      config.Settings
	collaborators map[string]HealthChecker
	logger        *logger_i.Logger
}

func NewJobHandler(jobService *job.Service, settings config.Settings, collaborators map[string]HealthChecker) *JobHandler {
	logJH := logger_i.NewLogger("JobHandler")
	logJH.Info("Starting job handler", "collaborators", len(collaborators))
	return &JobHandler{
		service:       jobService,
		settings:      settings,
		collaborators: collaborators,
		logger:        logJH,
	}
}

func newJob(ctx context.Context, jobType jobModel.JobType, sessionId string, step jobModel.InternalStatus) jobModel.Job {
	return jobModel.Job{
		Id:          utils.GetNewUUID(),
		SessionId:   sessionId,
		TraceId:     traceOf(ctx),
		JobType:     jobType,
		CreatedTime: time.Now(),
		CurrentStep: step,
	}
}

// ensureSession returns the session to use for this request, creating it when
// the caller sent no id or an id the store no longer knows.
func (h *JobHandler) ensureSession(ctx context.Context, sessionId string) (string, error) {
	if sessionId == "" {
		sessionId = utils.GetNewUUID()
	}
	if _, found := h.service.SessionStore.GetSession(ctx, sessionId); found {
		return sessionId, nil
	}
	if _, err := h.service.SessionStore.CreateSession(ctx, sessionId); err != nil {
		return "", err
	}
	h.logger.WithTrace(ctx).Debug("Created session", "sessionId", sessionId)
	return sessionId, nil
}

// dispatch runs the job through the worker pool. With async the caller gets
// the queued job back and polls /status/{id}; otherwise the handler waits.
func (h *JobHandler) dispatch(w http.ResponseWriter, r *http.Request, j jobModel.Job, async bool) {
	ctx := r.Context()
	log := h.logger.WithTrace(ctx).With("jobId", j.Id)

	if async {
		queued, err := h.service.Enqueue(ctx, j)
		if err != nil {
			log.Warn("Could not queue job", "error", err)
			WriteErrorResponse(w, http.StatusServiceUnavailable, j.Id, "Job queue unavailable")
			return
		}
		writeJsonResponse(w, http.StatusAccepted, adapter.ToAPIResponse(queued))
		return
	}

	done, err := h.service.Submit(ctx, j)
	if err != nil {
		log.Warn("Job did not finish before the request ended", "error", err)
		WriteErrorResponse(w, http.StatusGatewayTimeout, j.Id, "Request cancelled before the job finished")
		return
	}
	status := http.StatusOK
	if done.Error.Code != 0 {
		status = done.Error.Code
	}
	writeJsonResponse(w, status, adapter.ToAPIResponse(done))
}

func isAsync(r *http.Request) bool {
	return r.URL.Query().Get("async") == "true"
}
