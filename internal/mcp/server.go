package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/service"
)

// Server exposes the triage dialogue as MCP tools.
type Server struct {
	cfg       domain.MCPConfig
	mcpServer *mcp.Server
	triage    *service.TriageService
	directory domain.DoctorDirectory
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance with every tool registered.
func NewServer(cfg domain.MCPConfig, triage *service.TriageService, doctors domain.DoctorDirectory, logger *logrus.Logger) (*Server, error) {
	if triage == nil {
		return nil, fmt.Errorf("triage service is required")
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "medemi-triage"
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "v0.1.0"
	}

	server := &Server{
		cfg:       cfg,
		triage:    triage,
		directory: doctors,
		logger:    logger,
	}
	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	server.registerTools()
	return server, nil
}

// Start serves MCP over the configured transport until ctx is cancelled or
// the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	transport, err := s.transport()
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"server_name":    s.cfg.ServerName,
		"transport_type": s.cfg.TransportType,
	}).Info("Starting MCP server")

	if err := s.mcpServer.Run(ctx, transport); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func (s *Server) transport() (mcp.Transport, error) {
	switch s.cfg.TransportType {
	case "", "stdio":
		return &mcp.StdioTransport{}, nil
	default:
		return nil, fmt.Errorf("unsupported MCP transport %q", s.cfg.TransportType)
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolStartTriage,
		Description: "Start a triage session from the patient's own description of their symptoms. Returns the session ID and the first follow-up question.",
	}, s.handleStartTriage)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolAnswerQuestion,
		Description: "Answer the pending follow-up question of a triage session. Returns the next question, or the assessment once the dialogue is complete.",
	}, s.handleAnswerQuestion)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolGetAssessment,
		Description: "Fetch the urgency assessment, possible conditions and recommended specialists of a completed triage session.",
	}, s.handleGetAssessment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolListDoctors,
		Description: "List doctors in the directory, optionally filtered by specialty.",
	}, s.handleListDoctors)

	s.logger.WithField("tool_count", 4).Debug("Registered MCP tools")
}
