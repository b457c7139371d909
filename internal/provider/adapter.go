// Package provider contains one webhook adapter per payment gateway and
// VTU provider. An adapter authenticates the raw request bytes and
// normalizes the vendor's status vocabulary into the system's own; all
// state mutation happens downstream in the reconciler.
package provider

import (
	"strings"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
)

// StatusMap is a declarative vendor-status -> normalized-status table.
// Adding a provider status is a data change, not new control flow.
// Lookup is case-insensitive; keys must be stored lowercase.
type StatusMap map[string]domain.TransactionStatus

// Normalize maps a vendor status string to the internal vocabulary.
// Unknown statuses map to pending, never to completed: money only moves
// on a status the table explicitly vouches for.
func (m StatusMap) Normalize(vendorStatus string) domain.TransactionStatus {
	if s, ok := m[strings.ToLower(vendorStatus)]; ok {
		return s
	}
	return domain.TransactionStatusPending
}

// Registry resolves adapters by provider name.
type Registry struct {
	adapters map[string]ports.ProviderAdapter
}

// NewRegistry creates a registry over the given adapters.
func NewRegistry(adapters ...ports.ProviderAdapter) *Registry {
	m := make(map[string]ports.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m}
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (ports.ProviderAdapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
