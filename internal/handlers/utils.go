package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/DocRAG/internal/adapter"
	"github.com/akolanti/DocRAG/internal/api"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out, only logging is left
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// WriteDetailResponse writes the {detail} body used on the service boundary.
func WriteDetailResponse(w http.ResponseWriter, httpCode int, detail string) {
	writeJsonResponse(w, httpCode, api.ErrorDetail{Detail: detail})
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func traceOf(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func getTargetDirectory(dir string) (string, string) {
	if dir == "" {
		dir = "temporary_data"
	}
	if !filepath.IsAbs(dir) {
		root, err := os.Getwd()
		if err != nil {
			return "", "Storage Error"
		}
		dir = filepath.Join(root, dir)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", "Storage Error"
	}
	return dir, ""
}

func decodeBody(r *http.Request, into any) error {
	defer func() {
		if err := r.Body.Close(); err != nil {
			logRH.Error("Couldn't close the request body", "error", err)
		}
	}()
	return json.NewDecoder(r.Body).Decode(into)
}
