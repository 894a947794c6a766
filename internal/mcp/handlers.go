package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/terramesa/uplinkmap/internal/hierarchy"
)

// handleSearchNodes looks up nodes by display name.
func (s *Server) handleSearchNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	var kind hierarchy.Kind
	if kindStr := request.GetString("kind", ""); kindStr != "" {
		k, ok := hierarchy.ParseKind(kindStr)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", kindStr)), nil
		}
		kind = k
	}

	results := s.searcher.Search(query, kind, limit)
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No nodes matched %q.", query)), nil
	}

	return mcp.NewToolResultText(s.formatNodes(results)), nil
}

// handleNearestNode answers a nearest-placed-node query.
func (s *Server) handleNearestNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, err := request.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: lat"), nil
	}
	lng, err := request.RequireFloat("lng")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: lng"), nil
	}

	match, ok := s.locator.Nearest(lat, lng)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("No placed node within range of %.4f, %.4f.", lat, lng)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Nearest node: %s\n", match.Node.Name))
	sb.WriteString(fmt.Sprintf("Kind: %s\n", match.Node.Kind))
	sb.WriteString(fmt.Sprintf("ID: %s\n", match.Node.ID))
	sb.WriteString(fmt.Sprintf("Location: %.4f, %.4f\n", match.Node.Coords.Lat, match.Node.Coords.Lng))
	sb.WriteString(fmt.Sprintf("Distance: %.2f km\n", match.DistanceKM))
	enabled, _ := s.state.Enabled(match.Node.Kind, match.Node.ID)
	sb.WriteString(fmt.Sprintf("Enabled: %s\n", yesNo(enabled)))

	return mcp.NewToolResultText(sb.String()), nil
}

// handleLinkVisibility explains the state of one node's uplink line.
func (s *Server) handleLinkVisibility(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindStr, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	kind, ok := hierarchy.ParseKind(kindStr)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", kindStr)), nil
	}
	if kind == hierarchy.KindProvince {
		return mcp.NewToolResultError("provinces have no uplink; kind must be \"city\" or \"barangay\""), nil
	}

	node, ok := s.index.Node(kind, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown node: %s/%s", kind, id)), nil
	}

	return mcp.NewToolResultText(s.describeLink(node)), nil
}

// handleDatasetStats summarizes the working set.
func (s *Server) handleDatasetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatStats()), nil
}

// formatNodes converts search hits into a rich text format optimized
// for AI agent consumption.
func (s *Server) formatNodes(nodes []hierarchy.Node) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d node(s):\n", len(nodes)))

	for i, n := range nodes {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Name: %s\n", n.Name))
		sb.WriteString(fmt.Sprintf("Kind: %s\n", n.Kind))
		sb.WriteString(fmt.Sprintf("ID: %s\n", n.ID))

		if n.ParentID != "" {
			if p, ok := s.index.Parent(n); ok {
				sb.WriteString(fmt.Sprintf("Parent: %s (%s %s)\n", p.Name, p.Kind, p.ID))
			} else {
				sb.WriteString(fmt.Sprintf("Parent: unresolved (declared %q)\n", n.ParentID))
			}
		}

		if n.HasCoords() {
			sb.WriteString(fmt.Sprintf("Location: %.4f, %.4f\n", n.Coords.Lat, n.Coords.Lng))
		} else {
			sb.WriteString("Location: not placed\n")
		}
		if n.Geohash != "" {
			sb.WriteString(fmt.Sprintf("Geohash: %s\n", n.Geohash))
		}

		enabled, _ := s.state.Enabled(n.Kind, n.ID)
		sb.WriteString(fmt.Sprintf("Enabled: %s\n", yesNo(enabled)))
	}

	return sb.String()
}

// describeLink reports whether the node's uplink line exists and is
// shown, naming the rule that decides it.
func (s *Server) describeLink(n hierarchy.Node) string {
	if n.ParentID == "" {
		return fmt.Sprintf("%s %q has no parent key. No line exists.", n.Kind, n.Name)
	}
	parent, ok := s.index.Parent(n)
	if !ok {
		return fmt.Sprintf("%s %q declares parent %q, which is not in the working set. No line exists.", n.Kind, n.Name, n.ParentID)
	}
	if !n.HasCoords() {
		return fmt.Sprintf("%s %q has no coordinates. No line exists.", n.Kind, n.Name)
	}
	if !parent.HasCoords() {
		return fmt.Sprintf("%s %q has no coordinates. No line exists.", parent.Kind, parent.Name)
	}

	vis := s.state.Visibility()
	var shown bool
	switch n.Kind {
	case hierarchy.KindCity:
		shown = vis.CityLine[n.ID]
	case hierarchy.KindBarangay:
		shown = vis.BarangayLine[n.ID]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Line: %s (%s %s) -> %s (%s %s)\n",
		n.Name, n.Kind, n.ID, parent.Name, parent.Kind, parent.ID))
	sb.WriteString(fmt.Sprintf("Shown: %s\n", yesNo(shown)))

	if shown {
		sb.WriteString("Both endpoints are enabled.\n")
		return sb.String()
	}

	var disabled []string
	if on, _ := s.state.Enabled(n.Kind, n.ID); !on {
		disabled = append(disabled, fmt.Sprintf("%s %s", n.Kind, n.Name))
	}
	if on, _ := s.state.Enabled(parent.Kind, parent.ID); !on {
		disabled = append(disabled, fmt.Sprintf("%s %s", parent.Kind, parent.Name))
	}
	sb.WriteString(fmt.Sprintf("Disabled endpoints: %s. The line is shown only while both endpoints are enabled.\n",
		strings.Join(disabled, ", ")))
	return sb.String()
}

// formatStats summarizes counts, placement and drawable lines.
func (s *Server) formatStats() string {
	counts := s.index.Counts()

	placed := map[hierarchy.Kind]int{}
	for _, n := range s.index.All() {
		if n.HasCoords() {
			placed[n.Kind]++
		}
	}

	var cityLines, barangayLines int
	for _, l := range s.index.Links() {
		switch l.Kind {
		case hierarchy.KindCity:
			cityLines++
		case hierarchy.KindBarangay:
			barangayLines++
		}
	}

	tree := s.index.Tree()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Provinces: %d total, %d placed\n", counts.Provinces, placed[hierarchy.KindProvince]))
	sb.WriteString(fmt.Sprintf("Cities: %d total, %d placed\n", counts.Cities, placed[hierarchy.KindCity]))
	sb.WriteString(fmt.Sprintf("Barangays: %d total, %d placed\n", counts.Barangays, placed[hierarchy.KindBarangay]))
	sb.WriteString(fmt.Sprintf("City lines: %d\n", cityLines))
	sb.WriteString(fmt.Sprintf("Barangay lines: %d\n", barangayLines))
	sb.WriteString(fmt.Sprintf("Unassigned cities: %d\n", len(tree.UnassignedCities)))
	sb.WriteString(fmt.Sprintf("Unassigned barangays: %d\n", len(tree.UnassignedBarangays)))
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
