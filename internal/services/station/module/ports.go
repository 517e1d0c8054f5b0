package module

import (
	"context"

	"scandesk/internal/services/station/domain"
)

// Ports are what the stations module offers other modules and main
type Ports struct {
	Stations domain.ServicePort
	// Janitor expires idle stations until ctx is done and then closes the rest
	Janitor func(ctx context.Context)
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
