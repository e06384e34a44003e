package adapter

import (
	"time"

	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
)

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{Status: string(job.Status)}
	switch job.JobType {
	case jobModel.JobTypeQuery:
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	case jobModel.JobTypeIngest:
		result.IngestResponse = ToIngestResponse(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		SessionId: job.SessionId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" {
		return nil
	}

	return &api.RAGResponse{
		Question:           ragData.Question,
		Answer:             ragData.Answer,
		UsedFallback:       ragData.UsedFallback,
		RetrievalFallback:  ragData.RetrievalFallback,
		GenerationFallback: ragData.GenerationFallback,
	}
}

func ToIngestResponse(payload jobModel.JobPayload) *api.IngestResponse {
	if payload.DocumentId == "" {
		return nil
	}
	return &api.IngestResponse{
		DocumentId:    payload.DocumentId,
		DocumentName:  payload.IngestFileName,
		ChunkCount:    payload.ChunkCount,
		DocumentCount: payload.DocumentCount,
	}
}

func ToSessionResponse(session sessionModel.Session) api.SessionResponse {
	return api.SessionResponse{
		SessionId:     session.Id,
		DocumentCount: session.DocumentCount,
		CreatedAt:     session.CreatedAt,
	}
}

func ToHistoryResponse(sessionId string, entries []commonModels.HistoryEntry) api.HistoryResponse {
	items := make([]api.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, api.HistoryItem{
			Query:        e.Query,
			Answer:       e.Answer,
			UsedFallback: e.UsedFallback,
			AskedAt:      e.AskedAt,
		})
	}
	return api.HistoryResponse{SessionId: sessionId, History: items}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
