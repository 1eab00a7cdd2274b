package server

import (
	"context"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/roach88/cypherlite/internal/engine"
	"github.com/roach88/cypherlite/internal/store"
)

// Name is the MCP server name announced to clients.
const Name = "cypherlite"

// Graph is the storage the tools need.
type Graph interface {
	store.Beginner
	Summarize(ctx context.Context) (store.Summary, error)
}

// Server wraps an MCP server whose tools run against one graph.
type Server struct {
	MCPServer *server.MCPServer
	graph     Graph
	exec      *engine.Executor
	logger    *slog.Logger
}

// New creates a server with every tool registered.
func New(graph Graph, exec *engine.Executor, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		MCPServer: server.NewMCPServer(Name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		graph:  graph,
		exec:   exec,
		logger: logger,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	deps := &Dependencies{Graph: s.graph, Executor: s.exec, Logger: s.logger}
	s.MCPServer.AddTool(ExecuteCypherSpec(), ExecuteCypherHandler(deps))
	s.MCPServer.AddTool(GraphSummarySpec(), GraphSummaryHandler(deps))
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer, errOut io.Writer) error {
	stdio := server.NewStdioServer(s.MCPServer)
	stdio.SetErrorLogger(log.New(errOut, "mcp: ", log.LstdFlags))
	s.logger.Info("mcp server listening", "name", Name)
	return stdio.Listen(ctx, in, out)
}
