package ballistics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/collision"
)

// GatherManagedInteractions is the single-threaded phase between the parallel
// tasks. Records settled in the previous pass are finalized (pose on the last
// sub-step, destroy and free when expired). Every still-active record is run
// through impact resolution against its ray result and written either to the
// front (still interacting) or the back (settled) of the record buffer.
func (b *Batch) GatherManagedInteractions(last InteractionsResult, isLastSubstep bool) InteractionsResult {
	for i := last.Active; i < last.Total; i++ {
		b.finalize(b.records[i].Slot, isLastSubstep)
	}
	if last.Active == 0 {
		return InteractionsResult{}
	}
	b.stats.Passes++

	front, back := 0, last.Active-1
	for i := 0; i < last.Active; i++ {
		rec := b.resolveImpact(i)
		if rec.Flags.Active() {
			b.spare[front] = rec
			front++
		} else {
			b.spare[back] = rec
			back--
		}
	}
	b.records, b.spare = b.spare, b.records

	return InteractionsResult{Active: front, Total: last.Active}
}

// finalize handles a bullet that finished its sub-step.
func (b *Batch) finalize(slot int, isLastSubstep bool) {
	hot := &b.arena.hot[slot]
	cold := &b.arena.cold[slot]

	if cold.stopRequested {
		hot.stop()
		cold.stopRequested = false
	}
	if isLastSubstep && cold.Visual != nil {
		visual := cold.Visual
		pos, vel := hot.Position, hot.Velocity
		protect(b, "visual.UpdatePose", slot, func() struct{} {
			visual.UpdatePose(pos, vel)
			return struct{}{}
		})
	}
	if hot.Expired() {
		b.destroyVisual(slot)
		b.arena.MarkFree(slot)
		b.stats.Freed++
	}
}

func (b *Batch) destroyVisual(slot int) {
	visual := b.arena.cold[slot].Visual
	if visual == nil {
		return
	}
	b.arena.cold[slot].Visual = nil
	protect(b, "visual.Destroy", slot, func() struct{} {
		visual.Destroy()
		return struct{}{}
	})
}

// resolveImpact runs the impact-resolution state machine for record i.
func (b *Batch) resolveImpact(i int) InteractionRecord {
	slot := b.records[i].Slot
	hot := &b.arena.hot[slot]
	cold := &b.arena.cold[slot]
	env := &b.env

	rec := InteractionRecord{
		Slot:              slot,
		SpeedMultiplier:   1,
		EnergyLossPerUnit: hot.EnergyLossPerUnit,
	}

	if cold.stopRequested {
		hot.stop()
		cold.stopRequested = false
	}
	if hot.Stopped() {
		return rec
	}

	query := &b.queries[i]
	hit := b.hits[i]
	if hit.OK() && (hit.Collider.Destroyed() || b.isSelfHit(cold, hit)) {
		hit = collision.Hit{}
	}

	dir := query.Direction
	speed := hot.Speed()
	energy := hot.KineticEnergy()

	switch {
	case cold.Material != nil && (cold.Collider == nil || cold.Collider.Destroyed()):
		// Exit collider is gone: back in open air without a surface event
		cold.leaveMaterial()
		hot.EnergyLossPerUnit = OpenAir
		rec.EnergyLossPerUnit = OpenAir

	case cold.Material != nil:
		if hit.OK() && hit.Collider == cold.Collider {
			hit = collision.Hit{}
		}

		loss := hot.EnergyLossPerUnit
		dExit := math.Inf(1)
		if cold.HasExit {
			dExit = r3.Norm(r3.Sub(cold.ExitPoint, hot.Position))
		}
		limit := dExit
		if hit.OK() && hit.Distance < limit {
			limit = hit.Distance
		}

		// Energy runs out before the bullet gets anywhere
		if loss > 0 && loss*limit/env.Scale >= energy {
			stopAt := r3.Add(hot.Position, r3.Scale(energy/loss*env.Scale, dir))
			b.terminate(&rec, stopAt)
			return rec
		}

		switch {
		case hit.OK() && hit.Distance < dExit-env.ContactEpsilon:
			// Another collider overlaps this one; leave through it
			cold.leaveMaterial()
			rec.EnergyLossPerUnit = OpenAir
			energy -= loss * hit.Distance / env.Scale
			speed = speedFromEnergy(hot.Mass, energy)

		case dExit <= query.MaxDistance:
			remaining := energy - loss*dExit/env.Scale
			exitSpeed := speedFromEnergy(hot.Mass, remaining)
			if remaining <= 0 {
				b.terminate(&rec, cold.ExitPoint)
				return rec
			}

			ctx := &ImpactContext{
				Params:   cold.Params,
				Point:    cold.ExitPoint,
				Normal:   cold.ExitNormal,
				Velocity: r3.Scale(exitSpeed, dir),
				Energy:   remaining,
				Collider: cold.Collider,
				Exit:     true,
			}
			spread, _ := protect(b, "material.Spread", slot, func() float64 {
				return cold.Material.Spread(ctx)
			})

			rec.Flags |= InteractionExit
			rec.ExitPoint, rec.ExitNormal = cold.ExitPoint, cold.ExitNormal
			rec.Point, rec.Normal = cold.ExitPoint, cold.ExitNormal
			rec.Spread = spread
			rec.EnergyLossPerUnit = OpenAir

			b.scheduleSurface(cold.Material, SurfaceInfo{
				Bullet:            b.view(slot, cold.ExitPoint, ctx.Velocity),
				Kind:              SurfaceExit,
				Point:             cold.ExitPoint,
				Normal:            cold.ExitNormal,
				Spread:            spread,
				SpeedFactor:       1,
				EnergyLossPerUnit: loss,
				Collider:          cold.Collider,
			})
			b.stats.Exits++

			exitCollider := cold.Collider
			cold.LastExitCollider = exitCollider
			cold.LastExitPoint = cold.ExitPoint
			cold.leaveMaterial()

			// Exit of one collider and entry of an adjacent one in one pass
			if !hit.OK() || hit.Collider == exitCollider || hit.Distance-dExit > env.ContactEpsilon {
				return rec
			}
			speed, energy = exitSpeed, remaining

		default:
			// Still inside at the end of the step
			return rec
		}
	}

	if hit.OK() {
		b.resolveHit(&rec, hit, dir, speed, energy)
	}
	return rec
}

// resolveHit applies a material's verdict on a newly struck collider.
func (b *Batch) resolveHit(rec *InteractionRecord, hit collision.Hit, dir r3.Vec, speed, energy float64) {
	slot := rec.Slot
	cold := &b.arena.cold[slot]
	env := &b.env

	rec.Point, rec.Normal = hit.Point, hit.Normal

	mat, found := b.lookup(hit.Collider.Surface(), slot)
	if !found {
		// Unregistered surface: keep flying through it
		rec.Flags |= InteractionHit | InteractionPassThrough
		return
	}

	velocity := r3.Scale(speed, dir)
	ctx := &ImpactContext{
		Params:   cold.Params,
		Point:    hit.Point,
		Normal:   hit.Normal,
		Velocity: velocity,
		Energy:   energy,
		Collider: hit.Collider,
	}
	outcome, ok := protect(b, "material.Impact", slot, func() ImpactOutcome {
		return mat.Impact(ctx)
	})
	if !ok {
		outcome = ImpactOutcome{Kind: ImpactIgnore}
	}
	b.stats.Hits++

	view := b.view(slot, hit.Point, velocity)
	surface := SurfaceInfo{
		Bullet:            view,
		Point:             hit.Point,
		Normal:            hit.Normal,
		SpeedFactor:       1,
		EnergyLossPerUnit: OpenAir,
		Collider:          hit.Collider,
	}

	switch outcome.Kind {
	case ImpactIgnore:
		rec.Flags |= InteractionHit | InteractionPassThrough

	case ImpactRicochet:
		factor := outcome.SpeedFactor
		if factor <= 0 {
			factor = 1
		}
		spread, _ := protect(b, "material.Spread", slot, func() float64 {
			return mat.Spread(ctx)
		})

		rec.Flags |= InteractionHit | InteractionRicochet
		rec.Spread += spread
		rec.SpeedMultiplier = factor
		rec.EnergyLossPerUnit = OpenAir

		surface.Kind = SurfaceRicochet
		surface.Spread = spread
		surface.SpeedFactor = factor
		b.scheduleSurface(mat, surface)
		b.stats.Ricochets++

	case ImpactStop:
		surface.Kind = SurfaceStop
		surface.SpeedFactor = 0
		b.scheduleSurface(mat, surface)
		b.terminate(rec, hit.Point)

	default:
		loss, ok := protect(b, "material.EnergyLossPerUnit", slot, func() float64 {
			return mat.EnergyLossPerUnit(ctx)
		})
		if !ok {
			rec.Flags |= InteractionHit | InteractionPassThrough
			return
		}
		spread, _ := protect(b, "material.Spread", slot, func() float64 {
			return mat.Spread(ctx)
		})

		surface.Kind = SurfaceEntry
		surface.Spread = spread
		surface.EnergyLossPerUnit = loss
		b.scheduleSurface(mat, surface)

		if loss < 0 {
			// Material absorbs the round outright
			b.terminate(rec, hit.Point)
			return
		}

		exitPoint, exitNormal, hasExit := b.findExit(hit, dir, energy, loss)
		b.scheduleImpact(mat, ImpactInfo{
			Bullet:            view,
			EntryPoint:        hit.Point,
			EntryNormal:       hit.Normal,
			ExitPoint:         exitPoint,
			ExitNormal:        exitNormal,
			HasExit:           hasExit,
			EnergyLossPerUnit: loss,
			Collider:          hit.Collider,
		})
		b.stats.Entries++

		if loss > 0 {
			reach := energy / loss * env.Scale
			thickness := math.Inf(1)
			if hasExit {
				thickness = r3.Norm(r3.Sub(exitPoint, hit.Point))
			}
			if thickness >= reach {
				// Stuck inside
				b.terminate(rec, r3.Add(hit.Point, r3.Scale(reach, dir)))
				return
			}
		}

		rec.Flags |= InteractionHit | InteractionEntry
		rec.Spread += spread
		rec.EnergyLossPerUnit = loss

		cold.Material = mat
		cold.Collider = hit.Collider
		cold.ExitPoint = exitPoint
		cold.ExitNormal = exitNormal
		cold.HasExit = hasExit
	}
}

// findExit casts back through the struck collider from beyond the furthest
// point the bullet could reach, up to PenetrationProbe, to find where it
// would come out. Colliders thicker than the probe have no exit.
func (b *Batch) findExit(hit collision.Hit, dir r3.Vec, energy, loss float64) (r3.Vec, r3.Vec, bool) {
	env := &b.env
	probe := env.PenetrationProbe
	if loss > 0 {
		probe = min(energy/loss*env.Scale+env.ContactEpsilon, probe)
	}

	origin := r3.Add(hit.Point, r3.Scale(probe, dir))
	back := r3.Scale(-1, dir)
	collider := hit.Collider

	exit, ok := protect(b, "collider.Raycast", NoSlot, func() collision.Hit {
		h, found := collider.Raycast(origin, back, probe)
		if !found {
			return collision.Hit{}
		}
		return h
	})
	if !ok || !exit.OK() {
		return r3.Vec{}, r3.Vec{}, false
	}
	return exit.Point, exit.Normal, true
}

// isSelfHit reports the collision backend re-hitting the face a bullet just
// exited through.
func (b *Batch) isSelfHit(cold *ColdState, hit collision.Hit) bool {
	if cold.LastExitCollider == nil || hit.Collider != cold.LastExitCollider {
		return false
	}
	eps := b.env.SelfHitEpsilon
	return hit.Distance <= eps || r3.Norm(r3.Sub(hit.Point, cold.LastExitPoint)) <= eps
}

// terminate stops a bullet at point and settles its record.
func (b *Batch) terminate(rec *InteractionRecord, point r3.Vec) {
	hot := &b.arena.hot[rec.Slot]
	hot.Distance += r3.Norm(r3.Sub(point, hot.Position)) / b.env.Scale
	hot.Position = point
	hot.Velocity = r3.Vec{}
	hot.stop()
	b.arena.cold[rec.Slot].leaveMaterial()

	rec.Flags = InteractionNone
	b.stats.Stopped++
}

func (b *Batch) lookup(surface collision.Surface, slot int) (Material, bool) {
	if b.materials == nil {
		return nil, false
	}
	type found struct {
		mat Material
		ok  bool
	}
	res, ok := protect(b, "materials.Lookup", slot, func() found {
		m, ok := b.materials.Lookup(surface)
		return found{m, ok}
	})
	if !ok || !res.ok || res.mat == nil {
		return nil, false
	}
	return res.mat, true
}

// view snapshots a bullet for handlers.
func (b *Batch) view(slot int, at, velocity r3.Vec) BulletView {
	hot := &b.arena.hot[slot]
	cold := &b.arena.cold[slot]
	return BulletView{
		Weapon:   cold.Weapon,
		Params:   cold.Params,
		Position: at,
		Velocity: velocity,
		Distance: hot.Distance + r3.Norm(r3.Sub(at, hot.Position))/b.env.Scale,
		batch:    b,
		slot:     slot,
		gen:      b.arena.gen[slot],
	}
}

func speedFromEnergy(mass, energy float64) float64 {
	if energy <= 0 || mass <= 0 {
		return 0
	}
	return math.Sqrt(2 * energy / mass)
}
