package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type requestResponseStruct struct {
	writer       http.ResponseWriter
	req          *http.Request
	badRequest   failureStruct
	logger       *logger_i.Logger
	detailErrors bool
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var logMW = logger_i.NewLogger("middleware")

// Wrap guards an orchestrator handler: trace id, rate limit, panic recovery and request metrics.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, false)
}

// WrapService is Wrap for the collaborator services, which answer errors as {detail}.
func WrapService(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

func wrap(next http.HandlerFunc, detailErrors bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
		}()

		re := processRequest(requestResponseStruct{req: r, writer: rec, detailErrors: detailErrors})
		if !handleBadRequest(re) {
			return
		}

		defer recoverPanic(re)
		next(rec, re.req)
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logMW
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	return rateLimiter(re)
}

// routePattern labels metrics by route so ids in the path do not explode the series.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
