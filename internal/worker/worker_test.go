package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/job"
	"github.com/akolanti/DocRAG/internal/rag"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	OnIngest       func(ctx context.Context, sessionId, name, text string) (rag.IngestResult, error)
	OnAnswer       func(ctx context.Context, sessionId, query string) (rag.AnswerResult, error)
	OnReset        func(ctx context.Context, sessionId string) error
}

func (m *MockRagService) Ingest(ctx context.Context, sessionId, name, text string) (rag.IngestResult, error) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnIngest != nil {
		return m.OnIngest(ctx, sessionId, name, text)
	}
	return rag.IngestResult{}, nil
}

func (m *MockRagService) IngestFile(ctx context.Context, sessionId, name, path string) (rag.IngestResult, error) {
	return m.Ingest(ctx, sessionId, name, path)
}

func (m *MockRagService) Answer(ctx context.Context, sessionId, query string) (rag.AnswerResult, error) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, sessionId, query)
	}
	return rag.AnswerResult{Answer: "ok"}, nil
}

func (m *MockRagService) Reset(ctx context.Context, sessionId string) error {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnReset != nil {
		return m.OnReset(ctx, sessionId)
	}
	return nil
}

func (m *MockRagService) Cleanup(ctx context.Context) error {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return nil
}

func newTestPool(ragSvc rag.Service, settings config.WorkerSettings) (*job.Service, *Pool) {
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		SessionStore:      store.InitInMemorySessionStore(),
	})
	return jobSvc, NewPool(jobSvc, ragSvc, settings)
}

func TestWorkerPool_Flow(t *testing.T) {
	mockRag := &MockRagService{}
	jobSvc, pool := newTestPool(mockRag, config.WorkerSettings{MaxWorkers: 3, IdleTimeout: time.Minute, JobTimeout: time.Second})
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}
	pool.Start(stopChan, wg)

	t.Run("Start creates the first worker", func(t *testing.T) {
		if count := pool.WorkerCount(); count != 1 {
			t.Errorf("Expected 1 worker, got %d", count)
		}
	})

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		time.Sleep(50 * time.Millisecond)

		if count := pool.WorkerCount(); count != 2 {
			t.Errorf("Expected 2 workers, got %d", count)
		}
	})

	t.Run("Dispatcher respects the maximum", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			jobSvc.DispatcherChannel <- true
		}
		time.Sleep(50 * time.Millisecond)

		if count := pool.WorkerCount(); count != 3 {
			t.Errorf("Expected 3 workers, got %d", count)
		}
	})

	t.Run("Worker processes a submitted job", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		done, err := jobSvc.Submit(ctx, jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeQuery, JobPayload: jobModel.JobPayload{Question: "hi"}})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if done.Status != jobModel.JobStatusComplete || done.JobPayload.Answer != "ok" {
			t.Errorf("unexpected job %+v", done)
		}
		stored, found := jobSvc.GetJob(ctx, "test-1")
		if !found || stored.Status != jobModel.JobStatusComplete {
			t.Errorf("job store not updated: %+v", stored)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
		if count := pool.WorkerCount(); count != 0 {
			t.Errorf("Expected no workers, got %d", count)
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	jobSvc, pool := newTestPool(&MockRagService{}, config.WorkerSettings{MaxWorkers: 2, IdleTimeout: 30 * time.Millisecond, JobTimeout: time.Second})
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}
	pool.Start(stopChan, wg)
	defer func() {
		close(stopChan)
		wg.Wait()
	}()

	jobSvc.DispatcherChannel <- true
	time.Sleep(10 * time.Millisecond)
	if count := pool.WorkerCount(); count != 2 {
		t.Fatalf("Expected 2 workers before idling, got %d", count)
	}

	time.Sleep(150 * time.Millisecond)
	if count := pool.WorkerCount(); count != config.MinWorkerCount {
		t.Errorf("Idle workers should retire down to %d, got %d", config.MinWorkerCount, count)
	}
}

func TestExecuteJob_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus jobModel.JobStatus
		wantCode   int
		wantRetry  bool
	}{
		{"capacity", fmt.Errorf("%w: 5 of 5", commonModels.ErrCapacityExceeded), jobModel.JobStatusRejected, http.StatusConflict, false},
		{"empty document", commonModels.ErrExtractionEmpty, jobModel.JobStatusRejected, http.StatusUnprocessableEntity, false},
		{"unsupported", commonModels.ErrUnsupportedDocument, jobModel.JobStatusError, http.StatusUnsupportedMediaType, false},
		{"index down", fmt.Errorf("%w: refused", commonModels.ErrIndexUnavailable), jobModel.JobStatusError, http.StatusServiceUnavailable, true},
		{"no session", commonModels.ErrSessionNotFound, jobModel.JobStatusError, http.StatusNotFound, false},
		{"other", errors.New("boom"), jobModel.JobStatusError, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRag := &MockRagService{
				OnIngest: func(ctx context.Context, sessionId, name, text string) (rag.IngestResult, error) {
					return rag.IngestResult{}, tt.err
				},
			}
			_, pool := newTestPool(mockRag, config.Default().Worker)
			reply := make(chan jobModel.Job, 1)
			pool.executeJob(jobModel.Job{Id: "j", JobType: jobModel.JobTypeIngest, Reply: reply})

			got := <-reply
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s; want %s", got.Status, tt.wantStatus)
			}
			if got.Error.Code != tt.wantCode || got.Error.Retry != tt.wantRetry {
				t.Errorf("error = %+v; want code %d retry %v", got.Error, tt.wantCode, tt.wantRetry)
			}
		})
	}
}

func TestExecuteJob_IngestResult(t *testing.T) {
	mockRag := &MockRagService{
		OnIngest: func(ctx context.Context, sessionId, name, text string) (rag.IngestResult, error) {
			if sessionId != "s1" || name != "cv.pdf" {
				t.Errorf("unexpected ingest args %s %s", sessionId, name)
			}
			return rag.IngestResult{Document: commonModels.Document{Id: "cv-1234abcd"}, ChunkCount: 4, DocumentCount: 2}, nil
		},
	}
	_, pool := newTestPool(mockRag, config.Default().Worker)
	reply := make(chan jobModel.Job, 1)
	pool.executeJob(jobModel.Job{
		Id:         "j",
		SessionId:  "s1",
		JobType:    jobModel.JobTypeIngest,
		JobPayload: jobModel.JobPayload{IngestFileName: "cv.pdf", IngestText: "some text"},
		Reply:      reply,
	})

	got := <-reply
	if got.Status != jobModel.JobStatusComplete {
		t.Fatalf("unexpected status %s", got.Status)
	}
	if got.JobPayload.DocumentId != "cv-1234abcd" || got.JobPayload.ChunkCount != 4 || got.JobPayload.DocumentCount != 2 {
		t.Errorf("payload not filled: %+v", got.JobPayload)
	}
	if got.JobPayload.IngestText != "" {
		t.Error("raw text should not be kept on the job")
	}
}

func TestExecuteJob_PanicIsRecovered(t *testing.T) {
	mockRag := &MockRagService{
		OnReset: func(ctx context.Context, sessionId string) error {
			panic("store exploded")
		},
	}
	_, pool := newTestPool(mockRag, config.Default().Worker)
	reply := make(chan jobModel.Job, 1)
	pool.executeJob(jobModel.Job{Id: "j", JobType: jobModel.JobTypeReset, Reply: reply})

	got := <-reply
	if got.Status != jobModel.JobStatusError || got.Error.Code != http.StatusInternalServerError {
		t.Errorf("unexpected job after panic: %+v", got)
	}
}
