package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/customHttpClient"
	"github.com/akolanti/DocRAG/internal/handlers"
)

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		//this is a bad request
		re.badRequest.httpCode = http.StatusBadRequest
		re.badRequest.errorMessage = "request is empty"
		re.badRequest.isBadRequest = true
		return re
	}
	trace := req.Header.Get(customHttpClient.TraceHeader)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With(config.TRACE_ID_KEY, trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(customHttpClient.TraceHeader, trace)
	re.writer.Header().Set(customHttpClient.TraceHeader, trace)
	re.req = req.WithContext(ctx)

	re.logger.Debug("trace middleware injected")
	return re
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Warn("Too many requests", "ip", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded",
		}
	}
	return re
}

// recoverPanic turns a handler panic into a 500 so one bad request cannot take the process down.
func recoverPanic(re requestResponseStruct) {
	if r := recover(); r != nil {
		re.logger.Error("Handler panicked", "panic", r, "path", re.req.URL.Path)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusInternalServerError,
			errorMessage: fmt.Sprintf("internal error: %v", r),
		}
		handleBadRequest(re)
	}
}

func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
		if re.detailErrors {
			handlers.WriteDetailResponse(re.writer, re.badRequest.httpCode, re.badRequest.errorMessage)
		} else {
			handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.id, re.badRequest.errorMessage)
		}
		return false
	}
	return true
}
