package mcpserver

import (
	"errors"
	"net/http"

	"github.com/akolanti/DocRAG/internal/domain/sessionModel"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

var ErrMissingPorts = errors.New("mcp server needs a job submitter and a session store")

// Server exposes the question answering pipeline as MCP tools. Every tool call
// becomes a job on the same queue the HTTP api uses.
type Server struct {
	jobs     Submitter
	sessions sessionModel.SessionStore
	server   *mcp.Server
	logger   *logger_i.Logger
}

func NewServer(jobs Submitter, sessions sessionModel.SessionStore) (*Server, error) {
	if jobs == nil || sessions == nil {
		return nil, ErrMissingPorts
	}
	s := &Server{
		jobs:     jobs,
		sessions: sessions,
		server:   mcp.NewServer(&mcp.Implementation{Name: "docrag", Version: Version}, nil),
		logger:   logger_i.NewLogger("mcp"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the tools over streamable HTTP, mounted by the api at /mcp.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
