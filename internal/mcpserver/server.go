// Package mcpserver exposes the calculators over the Model Context Protocol.
package mcpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/smart-calc-suite/internal/calculator"
	"github.com/iwvelando/smart-calc-suite/internal/catalog"
	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/internal/visitors"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/output"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tool names
const (
	ToolListCalculators = "list_calculators"
	ToolCalculate       = "calculate"
	ToolInsight         = "insight"
	ToolVisitorCount    = "visitor_count"
)

// Server serves the calculator tools over stdio.
type Server struct {
	mcpServer    *server.MCPServer
	collaborator insight.Collaborator
	counter      *visitors.Counter
	logger       *zap.Logger
}

// New creates a server whose insight tool asks collaborator and whose
// visitor_count tool reads counter. A nil counter disables visitor_count.
func New(collaborator insight.Collaborator, counter *visitors.Counter, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcpServer:    server.NewMCPServer(constants.ProjectName, version),
		collaborator: collaborator,
		counter:      counter,
		logger:       logger,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve blocks serving requests on stdin and stdout.
func (s *Server) Serve() error {
	s.logger.Info("serving MCP over stdio", zap.String("op", "mcpserver.Serve"))
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve MCP server: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolListCalculators,
		mcp.WithDescription("List the available percentage calculators and their inputs"),
	), s.handleListCalculators)

	s.mcpServer.AddTool(mcp.NewTool(ToolCalculate,
		mcp.WithDescription("Run a percentage calculator on two raw numeric inputs"),
		calculatorArg(),
		mcp.WithString("first", mcp.Description("Raw text of the first input")),
		mcp.WithString("second", mcp.Description("Raw text of the second input")),
	), s.handleCalculate)

	s.mcpServer.AddTool(mcp.NewTool(ToolInsight,
		mcp.WithDescription("Run a calculator and ask for a short financial insight on the result"),
		calculatorArg(),
		mcp.WithString("first", mcp.Required(), mcp.Description("Raw text of the first input")),
		mcp.WithString("second", mcp.Required(), mcp.Description("Raw text of the second input")),
	), s.handleInsight)

	if s.counter != nil {
		s.mcpServer.AddTool(mcp.NewTool(ToolVisitorCount,
			mcp.WithDescription("Report the simulated live visitor count"),
		), s.handleVisitorCount)
	}
}

func calculatorArg() mcp.ToolOption {
	return mcp.WithString("calculator",
		mcp.Required(),
		mcp.Description("Calculator id"),
		mcp.Enum(catalog.IDs()...),
	)
}

func (s *Server) handleListCalculators(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := output.WriteCatalog(&buf, constants.OutputFormatJSON, catalog.Definitions()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list calculators: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleCalculate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	unit, errResult := s.mountUnit(req, nil)
	if errResult != nil {
		return errResult, nil
	}
	return s.report(unit)
}

func (s *Server) handleInsight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	unit, errResult := s.mountUnit(req, s.collaborator)
	if errResult != nil {
		return errResult, nil
	}

	if _, err := unit.RequestInsight(ctx); err != nil {
		if errors.Is(err, calculator.ErrNoResult) {
			return mcp.NewToolResultError("Both inputs must hold numbers before an insight can be requested"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch insight: %v", err)), nil
	}
	return s.report(unit)
}

func (s *Server) handleVisitorCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf("%d", s.counter.Value())), nil
}

// mountUnit creates a fresh unit for the requested calculator and feeds it the
// raw inputs. A non-nil result reports a tool error.
func (s *Server) mountUnit(req mcp.CallToolRequest, collaborator insight.Collaborator) (*calculator.Unit, *mcp.CallToolResult) {
	id := mcp.ParseString(req, "calculator", "")
	if id == "" {
		return nil, mcp.NewToolResultError("calculator parameter is required")
	}
	def, err := catalog.Lookup(id)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	unit, err := calculator.New(def, collaborator, s.logger)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create calculator: %v", err))
	}

	raws := []string{mcp.ParseString(req, "first", ""), mcp.ParseString(req, "second", "")}
	for i, in := range def.Inputs {
		accepted, err := unit.SetInput(in.Key, raws[i])
		if err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
		if !accepted {
			return nil, mcp.NewToolResultError(fmt.Sprintf("%s: %q is not a plain non-negative number", in.Label, raws[i]))
		}
	}
	return unit, nil
}

func (s *Server) report(unit *calculator.Unit) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	reports := []output.Report{output.NewReport(unit.Definition(), unit.Snapshot())}
	if err := output.JSONFormat(&buf, reports); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
