package material

import (
	"sort"
	"sync"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/collision"
)

// Registry maps collider surfaces to materials, with an optional default for
// unmapped surfaces. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	materials map[collision.Surface]ballistics.Material
	fallback  ballistics.Material
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{materials: make(map[collision.Surface]ballistics.Material)}
}

// Register maps surface to m. A nil m removes the mapping.
func (r *Registry) Register(surface collision.Surface, m ballistics.Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m == nil {
		delete(r.materials, surface)
		return
	}
	r.materials[surface] = m
}

// SetDefault sets the material used for unmapped surfaces; nil disables it.
func (r *Registry) SetDefault(m ballistics.Material) {
	r.mu.Lock()
	r.fallback = m
	r.mu.Unlock()
}

// Default returns the fallback material, or nil.
func (r *Registry) Default() ballistics.Material {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Lookup implements ballistics.MaterialLookup.
func (r *Registry) Lookup(surface collision.Surface) (ballistics.Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.materials[surface]; ok {
		return m, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// Surfaces returns the mapped surfaces in sorted order.
func (r *Registry) Surfaces() []collision.Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]collision.Surface, 0, len(r.materials))
	for s := range r.materials {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
