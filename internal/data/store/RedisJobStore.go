package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/DocRAG/internal/data/redisStore"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

const jobKeyPrefix = "job:"

type RedisJobStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedisJobStore(store *redisStore.Store, ttl time.Duration) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		ttl:    ttl,
		logger: logger_i.NewLogger("job_store"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id)
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, jobKeyPrefix+job.Id, data, s.ttl)
	if err != nil {
		log.Error("Saving job to Redis failed", "error", err)
		return err
	}
	log.Debug("Saved job to Redis", "status", job.Status)
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	log := s.logger.WithTrace(ctx).With("jobId", jobId)

	val, err := s.store.Get(ctx, jobKeyPrefix+jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		log.Error("Reading job from Redis failed", "error", err)
		return job, false
	}

	if err = json.Unmarshal([]byte(val), &job); err != nil {
		log.Error("Stored job is not valid json", "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	if err := s.store.Del(ctx, jobKeyPrefix+jobID); err != nil {
		s.logger.WithTrace(ctx).Error("Error deleting job from Redis", "jobId", jobID, "error", err)
		return
	}
	s.logger.WithTrace(ctx).Debug("Job deleted from Redis", "jobId", jobID)
}
