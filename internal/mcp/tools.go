package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchNodesTool defines the search_nodes MCP tool.
var searchNodesTool = mcp.NewTool("search_nodes",
	mcp.WithDescription("Search provinces, cities and barangays by name. Exact and prefix matches rank ahead of fuzzy ones."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Name or name fragment to look for"),
	),
	mcp.WithString("kind",
		mcp.Description("Restrict results to one hierarchy level"),
		mcp.Enum("province", "city", "barangay"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)

// nearestNodeTool defines the nearest_node MCP tool.
var nearestNodeTool = mcp.NewTool("nearest_node",
	mcp.WithDescription("Find the placed node closest to a coordinate pair. Nothing is returned beyond roughly 100km."),
	mcp.WithNumber("lat",
		mcp.Required(),
		mcp.Description("Latitude in decimal degrees"),
	),
	mcp.WithNumber("lng",
		mcp.Required(),
		mcp.Description("Longitude in decimal degrees"),
	),
)

// linkVisibilityTool defines the link_visibility MCP tool.
var linkVisibilityTool = mcp.NewTool("link_visibility",
	mcp.WithDescription("Report whether a node's connector line to its parent exists, whether it is currently shown, and why."),
	mcp.WithString("kind",
		mcp.Required(),
		mcp.Description("Level of the child node"),
		mcp.Enum("city", "barangay"),
	),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Node id within its kind"),
	),
)

// datasetStatsTool defines the dataset_stats MCP tool.
var datasetStatsTool = mcp.NewTool("dataset_stats",
	mcp.WithDescription("Summarize the loaded dataset: node counts per level, placed markers, drawable lines and unassigned nodes."),
)
