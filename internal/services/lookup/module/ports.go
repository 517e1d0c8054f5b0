package module

import (
	"scandesk/internal/services/lookup/domain"
)

// Ports are what the lookup module offers other modules
type Ports struct {
	Lookup domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
