package ballistics

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Interaction describes what happened to a bullet during one gather pass.
// Exit and Entry can both be set when a bullet leaves one collider and enters
// an adjacent one in the same pass; never for the same collider.
type Interaction uint8

const (
	InteractionNone Interaction = 0
	InteractionHit  Interaction = 1 << (iota - 1)
	InteractionEntry
	InteractionExit
	InteractionRicochet
	InteractionPassThrough
)

// Hit reports whether a surface was struck.
func (f Interaction) Hit() bool { return f&InteractionHit != 0 }

// Entered reports a penetrating entry into a material.
func (f Interaction) Entered() bool { return f&InteractionEntry != 0 }

// Exited reports leaving a material through its exit boundary.
func (f Interaction) Exited() bool { return f&InteractionExit != 0 }

// Ricocheted reports a reflection off the surface.
func (f Interaction) Ricocheted() bool { return f&InteractionRicochet != 0 }

// PassedThrough reports a hit with no ballistic effect.
func (f Interaction) PassedThrough() bool { return f&InteractionPassThrough != 0 }

// Active reports whether the bullet needs another resolution pass.
func (f Interaction) Active() bool { return f != InteractionNone }

func (f Interaction) String() string {
	if f == InteractionNone {
		return "none"
	}
	var parts []string
	names := []struct {
		flag Interaction
		name string
	}{
		{InteractionHit, "hit"},
		{InteractionEntry, "entry"},
		{InteractionExit, "exit"},
		{InteractionRicochet, "ricochet"},
		{InteractionPassThrough, "pass"},
	}
	for _, n := range names {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// InteractionRecord is the gather phase's verdict for one slot, consumed once
// by the resolution task.
type InteractionRecord struct {
	Slot  int
	Flags Interaction

	// Point and Normal are where the bullet continues from: the entry point
	// of a hit, or the exit point for a pure exit.
	Point  r3.Vec
	Normal r3.Vec

	ExitPoint  r3.Vec
	ExitNormal r3.Vec

	SpeedMultiplier   float64
	Spread            float64 // radians
	EnergyLossPerUnit float64 // applied after the interaction
}

// InteractionsResult partitions a batch's record buffer: [0, Active) still
// interacting, [Active, Total) settled for this sub-step.
type InteractionsResult struct {
	Active int
	Total  int
}

// Settled returns the number of settled records.
func (r InteractionsResult) Settled() int {
	return r.Total - r.Active
}

// Empty reports whether there is nothing left to resolve or finalize.
func (r InteractionsResult) Empty() bool {
	return r.Total == 0
}
