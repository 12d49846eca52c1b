package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for geovis resources.
	uriScheme = "geovis://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queries",
		Name:        "queries",
		Description: "First page of active tracked queries",
		MIMEType:    "application/json",
	}, s.handleQueriesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "comparison",
		Name:        "comparison",
		Description: "Brand comparison across active queries",
		MIMEType:    "application/json",
	}, s.handleComparisonResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "queries/{queryId}/latest",
		Name:        "query-latest-rankings",
		Description: "Latest rankings per platform and brand for one query",
		MIMEType:    "application/json",
	}, s.handleLatestResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "snapshots/{snapshotId}",
		Name:        "snapshot-content",
		Description: "Raw AI answer captured for a ranking",
		MIMEType:    "text/plain",
	}, s.handleSnapshotResource)
}

// handleQueriesResource returns the active queries.
func (s *Server) handleQueriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	active := true
	result, err := s.ports.Facade.Queries(ctx, domain.QueryFilter{Active: &active}, domain.PageRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing queries: %w", err)
	}
	return jsonResource(req.Params.URI, wire.NewResult(result,
		func(p domain.Page[domain.VisibilityQuery]) wire.Paginated[wire.Query] {
			return wire.NewPaginated(p, wire.FromQuery)
		}))
}

// handleComparisonResource returns the comparison table.
func (s *Server) handleComparisonResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	result, err := s.ports.Facade.Comparison(ctx, domain.ComparisonFilter{})
	if err != nil {
		return nil, fmt.Errorf("computing comparison: %w", err)
	}
	return jsonResource(req.Params.URI, wire.NewResult(result, wire.FromComparison))
}

// handleLatestResource returns the latest rankings of one query.
func (s *Server) handleLatestResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract queryId from URI: geovis://queries/{queryId}/latest
	queryID := extractQueryID(req.Params.URI)
	if queryID == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Facade.Latest(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("getting latest rankings: %w", err)
	}
	return jsonResource(req.Params.URI, wire.NewResult(result, wire.FromRankings))
}

// handleSnapshotResource returns the raw content of a snapshot.
func (s *Server) handleSnapshotResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract snapshotId from URI: geovis://snapshots/{snapshotId}
	snapshotID := extractSnapshotID(req.Params.URI)
	if snapshotID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Facade.Snapshot(ctx, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	text := result.Data.RawContent
	if result.IsFallback() {
		text = "[substitute data: observation source unavailable]\n\n" + text
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQueryID extracts the query ID from a URI like geovis://queries/{queryId}/latest.
// Returns 0 when the URI does not match.
func extractQueryID(uri string) int64 {
	const prefix = uriScheme + "queries/"
	const suffix = "/latest"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// extractSnapshotID extracts the snapshot ID from a URI like geovis://snapshots/{snapshotId}.
func extractSnapshotID(uri string) string {
	const prefix = uriScheme + "snapshots/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
