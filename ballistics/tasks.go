package ballistics

import "gonum.org/v1/gonum/spatial/r3"

// integrateRange is the integration task: it hands each bullet its flight
// time for the sub-step and builds the first query.
func (b *Batch) integrateRange(start, end int) {
	env := &b.env
	for i := start; i < end; i++ {
		slot := b.indices[i]
		h := &b.arena.hot[slot]

		if !h.Stopped() {
			h.FlightTime = min(h.Lifetime, b.timeStep)
			if h.FlightTime < 0 {
				h.FlightTime = 0
			}
			h.Lifetime -= h.FlightTime
		}

		b.queries[i] = buildQuery(h, env)
		b.records[i] = InteractionRecord{
			Slot:              slot,
			SpeedMultiplier:   1,
			EnergyLossPerUnit: h.EnergyLossPerUnit,
		}
	}
}

// resolveRange is the interaction-resolution task. Settled records fly out the
// rest of their flight time; interacting records are moved to their
// interaction point, redirected, and get a new query.
func (b *Batch) resolveRange(start, end int) {
	env := &b.env
	for i := start; i < end; i++ {
		rec := &b.records[i]
		h := &b.arena.hot[rec.Slot]

		if !rec.Flags.Active() {
			h.EnergyLossPerUnit = rec.EnergyLossPerUnit
			if t := h.FlightTime; t > 0 {
				h.FlightTime = 0
				advance(h, t, env)
			}
			continue
		}

		b.resolveInteraction(h, rec, env)
		b.queries[i] = buildQuery(h, env)
	}
}

func (b *Batch) resolveInteraction(h *HotState, rec *InteractionRecord, env *Environment) {
	speed := h.Speed()
	dir := direction(h.Velocity)
	var used float64

	if rec.Flags.Exited() {
		// Through the rest of the material to its exit boundary
		d := r3.Norm(r3.Sub(rec.ExitPoint, h.Position)) / env.Scale
		t, s, _ := depleteOver(h.Mass, speed, h.EnergyLossPerUnit, d)
		used += t
		speed = s
		h.Distance += d
		h.Position = rec.ExitPoint
		h.EnergyLossPerUnit = OpenAir
	}

	if rec.Flags.Hit() {
		d := r3.Norm(r3.Sub(rec.Point, h.Position)) / env.Scale
		if h.InsideMaterial() {
			t, s, _ := depleteOver(h.Mass, speed, h.EnergyLossPerUnit, d)
			used += t
			speed = s
		} else if speed > 0 {
			t := d / speed
			h.Velocity = r3.Scale(speed, dir)
			v1, _ := flyVelocity(h, t, env)
			used += t
			speed = r3.Norm(v1)
			dir = direction(v1)
		}
		h.Distance += d
		h.Position = rec.Point
	}

	if rec.Flags.Ricocheted() {
		bounced := reflect(dir, rec.Normal)
		dir = spreadDirection(bounced, rec.Spread, &b.rngs[rec.Slot])
		// Spread wider than the grazing angle points back into the collider
		if r3.Dot(dir, rec.Normal) <= 0 {
			dir = reflect(dir, rec.Normal)
		}
		if r3.Dot(dir, rec.Normal) <= 0 {
			dir = bounced
		}
	} else {
		dir = spreadDirection(dir, rec.Spread, &b.rngs[rec.Slot])
	}
	speed *= rec.SpeedMultiplier

	h.Velocity = r3.Scale(speed, dir)
	h.EnergyLossPerUnit = rec.EnergyLossPerUnit
	h.FlightTime = max(h.FlightTime-used, 0)
	h.Position = r3.Add(h.Position, r3.Scale(env.SurfaceOffset, dir))
}
