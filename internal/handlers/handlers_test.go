package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/store"
	"github.com/akolanti/DocRAG/internal/domain/jobModel"
	"github.com/akolanti/DocRAG/internal/handlers"
	"github.com/akolanti/DocRAG/internal/job"
	"github.com/akolanti/DocRAG/internal/middleware"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/internal/rag/llm"
	"github.com/akolanti/DocRAG/internal/rag/rag_test"
	"github.com/akolanti/DocRAG/internal/rag/vectorDB"
	"github.com/akolanti/DocRAG/internal/server"
	"github.com/akolanti/DocRAG/internal/worker"
)

type testApp struct {
	router    http.Handler
	index     *rag_test.MockIndex
	generator *rag_test.MockGenerator
	jobs      *job.Service
}

type failingChecker struct{}

func (failingChecker) Health(context.Context) error { return errors.New("connection refused") }

func newTestApp(t *testing.T, collaborators map[string]handlers.HealthChecker) *testApp {
	t.Helper()
	middleware.ConfigureRateLimit(config.RateLimitSettings{})

	settings := config.Default()
	settings.Server.UploadDir = t.TempDir()

	index := &rag_test.MockIndex{}
	generator := &rag_test.MockGenerator{}
	sessions := store.InitInMemorySessionStore()
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		SessionStore:      sessions,
	})
	ragSvc := rag.NewService(index, generator, sessions, settings.RAG)

	stop := make(chan bool)
	wg := &sync.WaitGroup{}
	worker.NewPool(jobSvc, ragSvc, settings.Worker).Start(stop, wg)
	t.Cleanup(func() {
		close(stop)
		wg.Wait()
	})

	h := handlers.NewJobHandler(jobSvc, settings, collaborators)
	return &testApp{router: server.APIRouter(h, nil), index: index, generator: generator, jobs: jobSvc}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, api.JobResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	var body api.JobResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func jsonRequest(method, path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, filename, content, sessionId string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if sessionId != "" {
		if err := mw.WriteField("session_id", sessionId); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("document", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestChatHandler(t *testing.T) {
	app := newTestApp(t, nil)
	app.index.OnSearch = func(ctx context.Context, query string, k int) (vectorDB.SearchResult, error) {
		return vectorDB.SearchResult{Texts: []string{"Worked five years with Go"}}, nil
	}
	app.generator.OnAnswer = func(ctx context.Context, contextText, query string) llm.Result {
		return llm.Result{Text: "Five years."}
	}

	t.Run("answers and opens a session", func(t *testing.T) {
		rr, body := app.do(t, jsonRequest(http.MethodPost, "/chat", api.ChatRequest{Query: "how long with Go?"}))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if body.SessionId == "" {
			t.Error("expected a new session id")
		}
		if body.Result.RAGExternalResponse == nil || body.Result.RAGExternalResponse.Answer != "Five years." {
			t.Errorf("unexpected result %+v", body.Result)
		}
	})

	t.Run("async returns the queued job", func(t *testing.T) {
		rr, body := app.do(t, jsonRequest(http.MethodPost, "/chat?async=true", api.ChatRequest{Query: "again?"}))
		if rr.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rr.Code)
		}

		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			statusRR, status := app.do(t, httptest.NewRequest(http.MethodGet, "/status/"+body.Id, nil))
			if statusRR.Code == http.StatusOK && status.Result.Status == string(jobModel.JobStatusComplete) {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Error("async job never completed")
	})

	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query":"   "}`},
		{"malformed json", `{"query":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			rr, body := app.do(t, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
			if body.Error == nil {
				t.Error("expected an error envelope")
			}
		})
	}
}

func TestPostIngestHandler(t *testing.T) {
	app := newTestApp(t, nil)

	t.Run("indexes a text upload", func(t *testing.T) {
		rr, body := app.do(t, uploadRequest(t, "notes.txt", "Python and Go experience at a university project.", ""))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		res := body.Result.IngestResponse
		if res == nil || res.ChunkCount != 1 || res.DocumentCount != 1 || !strings.HasPrefix(res.DocumentId, "notes-") {
			t.Errorf("unexpected ingest response %+v", res)
		}
		if len(app.index.Inserted) != 1 {
			t.Errorf("expected 1 inserted chunk, got %d", len(app.index.Inserted))
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		rr, _ := app.do(t, uploadRequest(t, "photo.png", "binary", ""))
		if rr.Code != http.StatusUnsupportedMediaType {
			t.Errorf("expected 415, got %d", rr.Code)
		}
	})

	t.Run("blank document is rejected", func(t *testing.T) {
		rr, body := app.do(t, uploadRequest(t, "blank.txt", "  \n\t ", ""))
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", rr.Code)
		}
		if body.Result.Status != string(jobModel.JobStatusRejected) {
			t.Errorf("expected REJECTED, got %s", body.Result.Status)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/ingest", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr, _ := app.do(t, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestIngest_SessionLimit(t *testing.T) {
	app := newTestApp(t, nil)

	var sessionId string
	for i := 0; i < config.MaxDocumentsPerSession; i++ {
		rr, body := app.do(t, uploadRequest(t, "cv.txt", "Some resume text", sessionId))
		if rr.Code != http.StatusOK {
			t.Fatalf("upload %d failed with %d", i+1, rr.Code)
		}
		sessionId = body.SessionId
	}

	rr, body := app.do(t, uploadRequest(t, "cv.txt", "Some resume text", sessionId))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on the sixth upload, got %d", rr.Code)
	}
	if body.Error == nil || body.Error.Retry {
		t.Errorf("unexpected error %+v", body.Error)
	}

	resetRR, _ := app.do(t, jsonRequest(http.MethodPost, "/reset", api.ResetRequest{SessionId: sessionId}))
	if resetRR.Code != http.StatusOK {
		t.Fatalf("reset failed with %d", resetRR.Code)
	}
	if rr, _ := app.do(t, uploadRequest(t, "cv.txt", "Some resume text", sessionId)); rr.Code != http.StatusOK {
		t.Errorf("upload after reset should succeed, got %d", rr.Code)
	}
}

func TestSessionHandlers(t *testing.T) {
	app := newTestApp(t, nil)

	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var session api.SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatal(err)
	}

	app.do(t, jsonRequest(http.MethodPost, "/chat", api.ChatRequest{Query: "first", SessionId: session.SessionId}))
	app.do(t, jsonRequest(http.MethodPost, "/chat", api.ChatRequest{Query: "second", SessionId: session.SessionId}))

	rr = httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/"+session.SessionId+"/history", nil))
	var history api.HistoryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history.History) != 2 || history.History[0].Query != "first" {
		t.Errorf("unexpected history %+v", history)
	}
	if history.History[0].Answer != config.NoRelevantInfoAnswer {
		t.Errorf("empty index should give the no information answer, got %q", history.History[0].Answer)
	}

	rr = httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/sessions/"+session.SessionId, nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/"+session.SessionId+"/history", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rr.Code)
	}
}

func TestStatusAndCleanup(t *testing.T) {
	app := newTestApp(t, nil)

	if rr, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/status/nope", nil)); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}

	rr, body := app.do(t, httptest.NewRequest(http.MethodPost, "/cleanup", nil))
	if rr.Code != http.StatusOK || body.Result.Status != string(jobModel.JobStatusComplete) {
		t.Errorf("cleanup failed: %d %+v", rr.Code, body)
	}
	if app.generator.Cleanups != 1 {
		t.Errorf("expected one cleanup, got %d", app.generator.Cleanups)
	}
}

func TestHealthHandler(t *testing.T) {
	app := newTestApp(t, map[string]handlers.HealthChecker{"model": failingChecker{}})

	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health api.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "degraded" || health.Collaborators["model"] != "unreachable" {
		t.Errorf("unexpected health %+v", health)
	}
}
