// Package tui provides the interactive geovis dashboard.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"time"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

// Ports aggregates the driving ports and presentation settings used by
// the dashboard.
type Ports struct {
	// Facade serves every read, falling back to substitute data.
	Facade driving.VisibilityFacade

	// Palette colours brands by their tracked position. Zero uses the default.
	Palette styles.Palette

	// Now is the clock for default trend windows. Nil uses time.Now.
	Now func() time.Time
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Facade == nil {
		return ErrMissingFacade
	}
	return nil
}
