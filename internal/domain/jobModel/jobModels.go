package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusRejected JobStatus = "REJECTED"
	JobStatusError    JobStatus = "Error"

	UserQueryInit InternalStatus = "Init"
	RAGCall       InternalStatus = "RAG"
	RetrievalCall InternalStatus = "Retrieval"
	LLMCall       InternalStatus = "LLM"
	HistoryCall   InternalStatus = "History"

	IngestInit       InternalStatus = "IngestInit"
	IngestExtract    InternalStatus = "IngestExtract"
	IngestProcessing InternalStatus = "IngestProcessing"
	IndexCall        InternalStatus = "Index"

	ResetCall   InternalStatus = "Reset"
	CleanupCall InternalStatus = "Cleanup"

	Error    InternalStatus = "Error"
	Complete InternalStatus = "Complete"

	JobTypeQuery   JobType = "Query"
	JobTypeIngest  JobType = "Ingest"
	JobTypeReset   JobType = "Reset"
	JobTypeCleanup JobType = "Cleanup"
)

type Job struct {
	Id          string         `json:"id"`
	SessionId   string         `json:"session_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`

	// Reply receives the finished job; nil for fire and forget submissions.
	Reply chan Job `json:"-"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question           string `json:"question,omitempty"`
	Answer             string `json:"answer,omitempty"`
	UsedFallback       bool   `json:"used_fallback,omitempty"`
	RetrievalFallback  bool   `json:"retrieval_fallback,omitempty"`
	GenerationFallback bool   `json:"generation_fallback,omitempty"`

	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestPath     string `json:"ingest_path,omitempty"`
	IngestText     string `json:"-"`
	DocumentId     string `json:"document_id,omitempty"`
	ChunkCount     int    `json:"chunk_count,omitempty"`
	DocumentCount  int    `json:"document_count,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
