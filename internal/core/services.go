package core

import (
	"github.com/go-chi/chi/v5"
)

// Service is implemented by every HTTP-facing storefront module.
type Service interface {
	// Name returns the unique identifier for this service (e.g. "catalog", "cart").
	// It doubles as the route prefix and the ENABLED_SERVICES entry.
	Name() string

	// RegisterRoutes sets up HTTP routes on a sub-router already scoped to /<Name>.
	RegisterRoutes(router chi.Router)
}

// Registry holds the services built at startup, in registration order.
type Registry struct {
	services []Service
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds services to the registry.
func (r *Registry) Register(services ...Service) {
	r.services = append(r.services, services...)
}

// Services returns all registered services.
func (r *Registry) Services() []Service {
	return append([]Service(nil), r.services...)
}
