// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/roost/internal/adapters/server/common"
	"github.com/hylla/roost/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the property tools.
func NewHandler(cfg Config, properties common.PropertyService) (*Handler, error) {
	if properties == nil {
		return nil, fmt.Errorf("property service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerPropertyReadTools(mcpSrv, properties)
	registerPropertyWriteTools(mcpSrv, properties)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

func normalizeConfig(cfg Config) Config {
	if cfg.ServerName = strings.TrimSpace(cfg.ServerName); cfg.ServerName == "" {
		cfg.ServerName = "roost"
	}
	if cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion); cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = "/" + strings.Trim(strings.TrimSpace(cfg.EndpointPath), "/")
	if cfg.EndpointPath == "/" {
		cfg.EndpointPath = "/mcp"
	}
	return cfg
}

// toolFunc returns the payload encoded as the tool's JSON result.
type toolFunc func(ctx context.Context, req mcp.CallToolRequest) (any, error)

// jsonTool adapts fn into an mcp-go handler. Service and argument errors
// become tool errors; only encoding failures surface as protocol errors.
func jsonTool(name string, fn toolFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := fn(ctx, req)
		if err != nil {
			return toolResultFromError(err), nil
		}
		result, err := mcp.NewToolResultJSON(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return result, nil
	}
}

// requireArg reads a mandatory string argument.
func requireArg(req mcp.CallToolRequest, name string) (string, error) {
	v, err := req.RequireString(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
	}
	return v, nil
}

func addTool(srv *mcpserver.MCPServer, tool mcp.Tool, fn toolFunc) {
	srv.AddTool(tool, jsonTool(strings.TrimPrefix(tool.Name, "roost."), fn))
}

// registerPropertyReadTools registers list, get and history.
func registerPropertyReadTools(srv *mcpserver.MCPServer, properties common.PropertyService) {
	addTool(srv, mcp.NewTool(
		"roost.list_properties",
		mcp.WithDescription("List tracked properties, optionally filtered by a fuzzy text query."),
		mcp.WithBoolean("include_closed", mcp.Description("Include bought and discarded properties")),
		mcp.WithString("query", mcp.Description("Fuzzy match against title and address")),
	), func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		rows, err := properties.ListProperties(ctx, common.ListPropertiesRequest{
			IncludeClosed: req.GetBool("include_closed", false),
			Query:         req.GetString("query", ""),
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"properties": rows}, nil
	})

	addTool(srv, mcp.NewTool(
		"roost.get_property",
		mcp.WithDescription("Return one property by id."),
		mcp.WithString("property_id", mcp.Required(), mcp.Description("Property identifier")),
	), func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		id, err := requireArg(req, "property_id")
		if err != nil {
			return nil, err
		}
		return properties.GetProperty(ctx, id)
	})

	addTool(srv, mcp.NewTool(
		"roost.list_status_history",
		mcp.WithDescription("List recorded status changes for one property, newest first."),
		mcp.WithString("property_id", mcp.Required(), mcp.Description("Property identifier")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (0 uses the server default)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		id, err := requireArg(req, "property_id")
		if err != nil {
			return nil, err
		}
		limit := req.GetInt("limit", 0)
		if limit < 0 {
			return nil, fmt.Errorf("%w: limit must be >= 0", common.ErrInvalidRequest)
		}
		changes, err := properties.ListStatusHistory(ctx, id, limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"changes": changes}, nil
	})
}

// registerPropertyWriteTools registers create and status update.
func registerPropertyWriteTools(srv *mcpserver.MCPServer, properties common.PropertyService) {
	statuses := make([]string, 0, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		statuses = append(statuses, string(status))
	}

	addTool(srv, mcp.NewTool(
		"roost.create_property",
		mcp.WithDescription("Start tracking a new property."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short listing title")),
		mcp.WithString("address", mcp.Description("Street address")),
		mcp.WithNumber("rooms", mcp.Description("Number of rooms")),
		mcp.WithNumber("size_sqm", mcp.Description("Living area in square meters")),
		mcp.WithNumber("price", mcp.Description("Asking price in whole currency units")),
		mcp.WithString("status", mcp.Description("Initial status (defaults to seen)"), mcp.Enum(statuses...)),
		mcp.WithString("notes", mcp.Description("Free-form markdown notes")),
	), func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		title, err := requireArg(req, "title")
		if err != nil {
			return nil, err
		}
		return properties.CreateProperty(ctx, common.CreatePropertyRequest{
			Title:   title,
			Address: req.GetString("address", ""),
			Rooms:   req.GetInt("rooms", 0),
			SizeSqm: req.GetFloat("size_sqm", 0),
			Price:   int64(req.GetInt("price", 0)),
			Status:  domain.Status(req.GetString("status", "")),
			Notes:   req.GetString("notes", ""),
		})
	})

	addTool(srv, mcp.NewTool(
		"roost.update_property_status",
		mcp.WithDescription("Move one property to another pipeline status."),
		mcp.WithString("property_id", mcp.Required(), mcp.Description("Property identifier")),
		mcp.WithString("status", mcp.Required(), mcp.Description("Target status"), mcp.Enum(statuses...)),
	), func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		id, err := requireArg(req, "property_id")
		if err != nil {
			return nil, err
		}
		status, err := requireArg(req, "status")
		if err != nil {
			return nil, err
		}
		return properties.UpdatePropertyStatus(ctx, id, status)
	})
}

// toolResultFromError prefixes tool errors with a stable code.
func toolResultFromError(err error) *mcp.CallToolResult {
	code := "internal_error"
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		code = "invalid_request"
	case errors.Is(err, common.ErrNotFound):
		code = "not_found"
	}
	return mcp.NewToolResultError(code + ": " + err.Error())
}
