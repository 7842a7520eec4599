// Package mcp serves a running station over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/station"
)

// Server wraps the MCP SDK server around one station.
type Server struct {
	server   *sdk.Server
	st       *station.Station
	injector *station.Injector
	audit    *AuditLogger
	logger   *slog.Logger
	width    int
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "ox500")
	Version string // Server version

	// Station is required. It must already be running on its loop.
	Station *station.Station

	// Injector enables ox500_inject. Nil disables the tool.
	Injector *station.Injector

	// Audit receives one JSONL entry per tool call. Nil disables auditing.
	Audit *AuditLogger

	Logger *slog.Logger
	Width  int // render width, default 72
}

// NewServer creates a new MCP server exposing the station tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil || cfg.Station == nil {
		return nil, errors.New("mcp: station is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	width := cfg.Width
	if width <= 0 {
		width = 72
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:   mcpServer,
		st:       cfg.Station,
		injector: cfg.Injector,
		audit:    cfg.Audit,
		logger:   logger,
		width:    width,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "session", s.st.ID())
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the audit log.
func (s *Server) Close() error {
	return s.audit.Close()
}
