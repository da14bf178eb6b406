package ballistics

// Deferred is an impact or surface record queued during gather, dispatched
// once all work for the frame has completed.
type Deferred[T any] struct {
	Material Material
	Info     T
}

func (b *Batch) scheduleImpact(mat Material, info ImpactInfo) {
	b.impacts = append(b.impacts, Deferred[ImpactInfo]{Material: mat, Info: info})
}

func (b *Batch) scheduleSurface(mat Material, info SurfaceInfo) {
	b.surfaces = append(b.surfaces, Deferred[SurfaceInfo]{Material: mat, Info: info})
}

// PendingImpacts returns the number of queued impact and surface records.
func (b *Batch) PendingImpacts() (impacts, surfaces int) {
	return len(b.impacts), len(b.surfaces)
}

// HandleScheduledImpacts drains the deferred queues, impacts first, newest
// record first. Each record goes to the bullet's weapon, then its material,
// then the global handler; every handler sees what earlier ones handled.
// A panicking handler is logged and skipped.
func (b *Batch) HandleScheduledImpacts(global Handlers) {
	for i := len(b.impacts) - 1; i >= 0; i-- {
		d := &b.impacts[i]
		b.dispatchImpact(d, global.Impact)
		b.stats.Impacts++
	}
	for i := len(b.surfaces) - 1; i >= 0; i-- {
		d := &b.surfaces[i]
		b.dispatchSurface(d, global.Surface)
		b.stats.Surfaces++
	}

	// Drop references held by the records
	clear(b.impacts)
	clear(b.surfaces)
	b.impacts = b.impacts[:0]
	b.surfaces = b.surfaces[:0]
}

func (b *Batch) dispatchImpact(d *Deferred[ImpactInfo], global ImpactHandler) {
	slot := d.Info.Bullet.slot
	chain := [3]ImpactHandler{}
	n := 0
	if h, ok := d.Info.Bullet.Weapon.(ImpactHandler); ok {
		chain[n] = h
		n++
	}
	if h, ok := d.Material.(ImpactHandler); ok {
		chain[n] = h
		n++
	}
	if global != nil {
		chain[n] = global
		n++
	}

	handled := HandledNone
	for _, h := range chain[:n] {
		ret, _ := protect(b, "impact handler", slot, func() Handled {
			return h.HandleImpact(&d.Info, handled)
		})
		handled |= ret
	}
}

func (b *Batch) dispatchSurface(d *Deferred[SurfaceInfo], global SurfaceHandler) {
	slot := d.Info.Bullet.slot
	chain := [3]SurfaceHandler{}
	n := 0
	if h, ok := d.Info.Bullet.Weapon.(SurfaceHandler); ok {
		chain[n] = h
		n++
	}
	if h, ok := d.Material.(SurfaceHandler); ok {
		chain[n] = h
		n++
	}
	if global != nil {
		chain[n] = global
		n++
	}

	handled := HandledNone
	for _, h := range chain[:n] {
		ret, _ := protect(b, "surface handler", slot, func() Handled {
			return h.HandleSurface(&d.Info, handled)
		})
		handled |= ret
	}
}

// protect calls fn, turning a panic in user code into a logged error.
// ok is false when fn panicked.
func protect[T any](b *Batch, component string, slot int, fn func() T) (out T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.stats.Recovered++
			b.logger.Error("recovered panic in user code",
				"component", component,
				"slot", slot,
				"panic", r,
			)
			ok = false
		}
	}()
	return fn(), true
}
