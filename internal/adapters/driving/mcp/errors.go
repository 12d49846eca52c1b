// Package mcp provides an MCP (Model Context Protocol) server adapter for geovis.
// It lets AI assistants read tracked queries, rankings, trends and brand
// comparisons through the same fallback-aware facade as the CLI.
package mcp

import "errors"

// ErrMissingFacade is returned when the visibility facade is not provided.
var ErrMissingFacade = errors.New("mcp: visibility facade is required")
