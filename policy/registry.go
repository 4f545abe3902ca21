package policy

import (
	"errors"
	"slices"
	"sync"
)

// Registry is the build-time table mapping each permission to the factors
// it requires. It replaces runtime metadata lookup: applications declare
// every permission once during startup, freeze the registry, and hand it to
// policy construction.
//
//	Docs: docs/policy.md
type Registry struct {
	mu       sync.RWMutex
	required map[Permission][]Factor
	order    []Permission
	frozen   bool
}

// NewRegistry creates an empty permission [Registry].
func NewRegistry() *Registry {
	return &Registry{
		required: make(map[Permission][]Factor),
	}
}

// Register declares a permission and the factors it requires. Duplicate
// factors collapse, keeping first-seen order; a permission with no factors
// is valid and always granted. Must be called before [Registry.Freeze].
func (r *Registry) Register(id Permission, required ...Factor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	if _, exists := r.required[id]; exists {
		return errors.New("permission already registered")
	}

	deduped := make([]Factor, 0, len(required))
	for _, f := range required {
		if !slices.Contains(deduped, f) {
			deduped = append(deduped, f)
		}
	}

	r.required[id] = deduped
	r.order = append(r.order, id)

	return nil
}

// Required returns a copy of the factor list declared for the permission,
// or false if it was never registered.
func (r *Registry) Required(id Permission) ([]Factor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	required, ok := r.required[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(required), true
}

// Permissions returns every registered permission in registration order.
func (r *Registry) Permissions() []Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// PermissionMap exports a snapshot of the full table, suitable for
// [NewPolicy]. Mutating the snapshot does not affect the registry.
func (r *Registry) PermissionMap() PermissionMap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(PermissionMap, len(r.required))
	for id, required := range r.required {
		m[id] = slices.Clone(required)
	}
	return m
}

// Freeze prevents further registrations. Call once startup declaration is
// complete, before the registry is shared.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered permissions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.required)
}
