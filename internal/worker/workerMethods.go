package worker

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag"
)

func (p *Pool) executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType)+"_"+string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.jobTimeout)
	defer cancel()
	log := p.logger.WithTrace(ctx).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			job = failJob(job, http.StatusInternalServerError, "internal error", false)
			p.finishJob(ctx, job)
		}
	}()

	job.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, job)

	switch job.JobType {
	case jobModel.JobTypeIngest:
		job = p.ingestDocument(ctx, job)
	case jobModel.JobTypeQuery:
		job = p.processQuery(ctx, job)
	case jobModel.JobTypeReset:
		job.CurrentStep = jobModel.ResetCall
		job = p.completeOrFail(job, p.ragService.Reset(ctx, job.SessionId))
	case jobModel.JobTypeCleanup:
		job.CurrentStep = jobModel.CleanupCall
		job = p.completeOrFail(job, p.ragService.Cleanup(ctx))
	default:
		job = failJob(job, http.StatusBadRequest, "unknown job type", false)
	}

	if job.Status == jobModel.JobStatusError || job.Status == jobModel.JobStatusRejected {
		log.Warn("Job failed", "code", job.Error.Code, "message", job.Error.Message)
	} else {
		log.Info("Job complete", "elapsed", time.Since(start))
	}
	p.finishJob(ctx, job)
}

func (p *Pool) ingestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	payload := job.JobPayload
	var (
		res rag.IngestResult
		err error
	)
	if payload.IngestPath != "" {
		job.CurrentStep = jobModel.IngestExtract
		res, err = p.ragService.IngestFile(ctx, job.SessionId, payload.IngestFileName, payload.IngestPath)
	} else {
		job.CurrentStep = jobModel.IngestProcessing
		res, err = p.ragService.Ingest(ctx, job.SessionId, payload.IngestFileName, payload.IngestText)
	}
	if err != nil {
		return failFromError(job, err)
	}
	job.JobPayload.IngestText = ""
	job.JobPayload.DocumentId = res.Document.Id
	job.JobPayload.ChunkCount = res.ChunkCount
	job.JobPayload.DocumentCount = res.DocumentCount
	return completeJob(job)
}

func (p *Pool) processQuery(ctx context.Context, job jobModel.Job) jobModel.Job {
	job.CurrentStep = jobModel.RAGCall
	res, err := p.ragService.Answer(ctx, job.SessionId, job.JobPayload.Question)
	if err != nil {
		return failFromError(job, err)
	}
	job.JobPayload.Answer = res.Answer
	job.JobPayload.UsedFallback = res.UsedFallback
	job.JobPayload.RetrievalFallback = res.RetrievalFallback
	job.JobPayload.GenerationFallback = res.GenerationFallback
	return completeJob(job)
}

func (p *Pool) completeOrFail(job jobModel.Job, err error) jobModel.Job {
	if err != nil {
		return failFromError(job, err)
	}
	return completeJob(job)
}

// finishJob persists the final state and hands the job back to whoever submitted it.
func (p *Pool) finishJob(ctx context.Context, job jobModel.Job) {
	job.EndTime = time.Now()
	p.saveJobState(ctx, job)
	if job.Reply != nil {
		select {
		case job.Reply <- job:
		default:
		}
	}
}

func (p *Pool) saveJobState(ctx context.Context, job jobModel.Job) {
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		p.logger.WithTrace(ctx).Error("Failed to update job state", "jobId", job.Id, "err", err)
	}
}

func completeJob(job jobModel.Job) jobModel.Job {
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

func failJob(job jobModel.Job, code int, message string, retry bool) jobModel.Job {
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{Code: code, Message: message, Retry: retry}
	return job
}

// failFromError maps a pipeline error to the status the caller sees.
// Capacity and empty documents are rejections, not failures.
func failFromError(job jobModel.Job, err error) jobModel.Job {
	code, retry := ErrorCode(err)
	job = failJob(job, code, err.Error(), retry)
	if code == http.StatusConflict || code == http.StatusUnprocessableEntity {
		job.Status = jobModel.JobStatusRejected
	}
	return job
}

func ErrorCode(err error) (code int, retry bool) {
	switch {
	case errors.Is(err, commonModels.ErrCapacityExceeded):
		return http.StatusConflict, false
	case errors.Is(err, commonModels.ErrExtractionEmpty):
		return http.StatusUnprocessableEntity, false
	case errors.Is(err, commonModels.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType, false
	case errors.Is(err, commonModels.ErrSessionNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, commonModels.ErrEmptyQuery):
		return http.StatusBadRequest, false
	case errors.Is(err, commonModels.ErrIndexUnavailable), errors.Is(err, commonModels.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, true
	default:
		return http.StatusInternalServerError, false
	}
}
