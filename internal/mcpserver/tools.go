package mcpserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Submitter interface {
	Submit(ctx context.Context, j jobModel.Job) (jobModel.Job, error)
}

type AskInput struct {
	Query     string `json:"query" jsonschema:"the question to answer from the uploaded documents"`
	SessionId string `json:"session_id,omitempty" jsonschema:"session to ask in, a new one is started when empty"`
}

type AskOutput struct {
	SessionId    string `json:"session_id"`
	Answer       string `json:"answer"`
	UsedFallback bool   `json:"used_fallback"`
}

type IngestInput struct {
	Name      string `json:"name" jsonschema:"document name, for example notes.txt"`
	Text      string `json:"text" jsonschema:"the full document text"`
	SessionId string `json:"session_id,omitempty" jsonschema:"session to add the document to, a new one is started when empty"`
}

type IngestOutput struct {
	SessionId     string `json:"session_id"`
	DocumentId    string `json:"document_id"`
	ChunkCount    int    `json:"chunk_count"`
	DocumentCount int    `json:"document_count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question using only the documents uploaded to the session",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Add a plain text document to the session so later questions can use it",
	}, s.handleIngest)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AskOutput{}, errors.New("query is empty")
	}
	sessionId, err := s.session(ctx, input.SessionId)
	if err != nil {
		return nil, AskOutput{}, err
	}

	j := newJob(ctx, jobModel.JobTypeQuery, sessionId)
	j.JobPayload.Question = input.Query
	done, err := s.run(ctx, j)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		SessionId:    sessionId,
		Answer:       done.JobPayload.Answer,
		UsedFallback: done.JobPayload.UsedFallback,
	}, nil
}

func (s *Server) handleIngest(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, IngestOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		input.Name = "document.txt"
	}
	sessionId, err := s.session(ctx, input.SessionId)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	j := newJob(ctx, jobModel.JobTypeIngest, sessionId)
	j.JobPayload.IngestFileName = input.Name
	j.JobPayload.IngestText = input.Text
	done, err := s.run(ctx, j)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{
		SessionId:     sessionId,
		DocumentId:    done.JobPayload.DocumentId,
		ChunkCount:    done.JobPayload.ChunkCount,
		DocumentCount: done.JobPayload.DocumentCount,
	}, nil
}

func (s *Server) session(ctx context.Context, id string) (string, error) {
	if id != "" {
		if _, found := s.sessions.GetSession(ctx, id); found {
			return id, nil
		}
	} else {
		id = utils.GetNewUUID()
	}
	if _, err := s.sessions.CreateSession(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Server) run(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
	done, err := s.jobs.Submit(ctx, j)
	if err != nil {
		return done, err
	}
	if done.Error.Code != 0 {
		s.logger.WithTrace(ctx).Warn("Tool call failed", "jobId", done.Id, "code", done.Error.Code)
		return done, errors.New(done.Error.Message)
	}
	return done, nil
}

func newJob(ctx context.Context, jobType jobModel.JobType, sessionId string) jobModel.Job {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	return jobModel.Job{
		Id:          utils.GetNewUUID(),
		SessionId:   sessionId,
		TraceId:     trace,
		JobType:     jobType,
		CreatedTime: time.Now(),
	}
}
