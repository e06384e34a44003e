package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	SessionId string            `json:"session_id" example:"session_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"409"`
	Message string `json:"message" example:"document limit reached"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question           string `json:"question"`
	Answer             string `json:"answer"`
	UsedFallback       bool   `json:"used_fallback"`
	RetrievalFallback  bool   `json:"retrieval_fallback"`
	GenerationFallback bool   `json:"generation_fallback"`
}

type IngestResponse struct {
	DocumentId    string `json:"document_id" example:"resume-1a2b3c4d"`
	DocumentName  string `json:"document_name" example:"resume.pdf"`
	ChunkCount    int    `json:"chunk_count" example:"12"`
	DocumentCount int    `json:"document_count" example:"1"`
}

type Result struct {
	Status              string          `json:"status"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	IngestResponse      *IngestResponse `json:"ingest_response,omitempty"`
}

type SessionResponse struct {
	SessionId     string    `json:"session_id"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type HistoryItem struct {
	Query        string    `json:"query"`
	Answer       string    `json:"answer"`
	UsedFallback bool      `json:"used_fallback"`
	AskedAt      time.Time `json:"asked_at"`
}

type HistoryResponse struct {
	SessionId string        `json:"session_id"`
	History   []HistoryItem `json:"history"`
}

type HealthResponse struct {
	Status        string            `json:"status" example:"healthy"`
	Service       string            `json:"service" example:"orchestrator"`
	Collaborators map[string]string `json:"collaborators,omitempty"`
}

// requests---------------------

type ChatRequest struct {
	Query     string `json:"query" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
}

type ResetRequest struct {
	SessionId string `json:"session_id,omitempty"`
}
