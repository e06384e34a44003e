package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
)

// one transport shared by every outbound client so connections to the
// model runtime and the sibling services get reused
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewClient returns a pooled client; timeout bounds the whole request.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}

// CloseIdle drops idle pooled connections, used on shutdown.
func CloseIdle() {
	customTransport.CloseIdleConnections()
}
