package mcp

import (
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Facade serves every read, tagging substitute data.
	Facade driving.VisibilityFacade
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Facade == nil {
		return ErrMissingFacade
	}
	return nil
}
