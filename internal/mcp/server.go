package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FreeCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FreeCoach strength training coach. Generate and validate session plans, check the periodization day type and deload status, look up rest times and personal records. Weights are in kilograms."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGeneratePlan, Handler: h.generatePlan},
		server.ServerTool{Tool: toolValidatePlan, Handler: h.validatePlan},
		server.ServerTool{Tool: toolGetDayType, Handler: h.getDayType},
		server.ServerTool{Tool: toolGetDeloadStatus, Handler: h.getDeloadStatus},
		server.ServerTool{Tool: toolGetRestSeconds, Handler: h.getRestSeconds},
		server.ServerTool{Tool: toolGetPersonalRecord, Handler: h.getPersonalRecord},
		server.ServerTool{Tool: toolGetVolumeSummary, Handler: h.getVolumeSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"freecoach://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises with ids, equipment, movement type, difficulty and muscle group"),
	mcp.WithMIMEType("application/json"),
)
