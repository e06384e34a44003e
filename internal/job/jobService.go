package job

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	SessionStore      sessionModel.SessionStore
	requestsPerWorker int64
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	SessionStore      sessionModel.SessionStore
	RequestsPerWorker int64
}

func InitJobService(cfg ServiceConfig) *Service {
	perWorker := cfg.RequestsPerWorker
	if perWorker <= 0 {
		perWorker = config.RequestsPerNewWorkerCount
	}
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		SessionStore:      cfg.SessionStore,
		requestsPerWorker: perWorker,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue records the job as queued and hands it to the worker pool.
// The send blocks when the buffer is full so callers feel the back pressure.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
	log := s.logger.WithTrace(ctx).With("jobId", j.Id, "jobType", j.JobType)

	j.Status = jobModel.JobStatusQueued
	if j.CreatedTime.IsZero() {
		j.CreatedTime = time.Now()
	}
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Warn("Could not record queued job", "error", err)
	}

	select {
	case s.JobChannel <- j:
	case <-ctx.Done():
		return j, ctx.Err()
	}
	metrics.IncrementJobsInQueue()
	log.Debug("Job queued")

	//every n requests the dispatcher is asked for another worker, ingest always asks
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%s.requestsPerWorker == 0 || j.JobType == jobModel.JobTypeIngest {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	return j, nil
}

// Submit enqueues the job and waits for the worker's reply.
func (s *Service) Submit(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
	if j.Reply == nil {
		j.Reply = make(chan jobModel.Job, 1)
	}
	queued, err := s.Enqueue(ctx, j)
	if err != nil {
		return queued, err
	}
	select {
	case done := <-queued.Reply:
		return done, nil
	case <-ctx.Done():
		return queued, ctx.Err()
	}
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
