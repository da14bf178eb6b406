package ballistics

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBatchFull is returned by Arena.Insert when every slot is taken.
var ErrBatchFull = errors.New("ballistics: batch full")

// Arena stores up to capacity bullets as two index-aligned arrays: hot state
// for the parallel tasks and cold state for the gather phase.
type Arena struct {
	hot  []HotState
	cold []ColdState
	used []bool
	gen  []uint32

	// free holds reusable slots; released holds slots freed since the last
	// Insert and is merged into free when Insert is next called.
	free     []int
	released []int
	count    int
}

// NewArena allocates an arena with the given capacity.
func NewArena(capacity int) *Arena {
	a := &Arena{
		hot:      make([]HotState, capacity),
		cold:     make([]ColdState, capacity),
		used:     make([]bool, capacity),
		gen:      make([]uint32, capacity),
		free:     make([]int, 0, capacity),
		released: make([]int, 0, capacity),
	}
	// Pop order hands out low slots first
	for i := capacity - 1; i >= 0; i-- {
		a.free = append(a.free, i)
	}
	return a
}

// Capacity returns the number of slots.
func (a *Arena) Capacity() int {
	return len(a.hot)
}

// ActiveCount returns the number of live bullets.
func (a *Arena) ActiveCount() int {
	return a.count
}

// Full reports whether Insert would fail.
func (a *Arena) Full() bool {
	return a.count == len(a.hot)
}

// Insert splits a spawn request into hot and cold state.
func (a *Arena) Insert(req SpawnRequest) (int, error) {
	if len(a.released) > 0 {
		a.free = append(a.free, a.released...)
		a.released = a.released[:0]
	}
	if len(a.free) == 0 {
		return NoSlot, ErrBatchFull
	}

	slot := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]

	params := req.Params
	dir := req.Direction
	if n := r3.Norm(dir); n > 0 {
		dir = r3.Scale(1/n, dir)
	} else {
		dir = fallbackAxis
	}

	a.hot[slot] = HotState{
		Position:          req.Origin,
		Velocity:          r3.Scale(params.Speed, dir),
		Lifetime:          params.Lifetime,
		Mass:              params.Mass,
		Drag:              params.DragFactor,
		Spin:              params.SpinFactor,
		EnergyLossPerUnit: OpenAir,
		Mask:              params.HitMask,
	}
	a.cold[slot] = ColdState{
		Weapon: req.Weapon,
		Params: params,
		Visual: req.Visual,
	}
	a.used[slot] = true
	a.gen[slot]++
	a.count++

	return slot, nil
}

// MarkFree returns a slot to the arena. The caller must already have
// destroyed the slot's visual.
func (a *Arena) MarkFree(slot int) {
	if slot < 0 || slot >= len(a.used) || !a.used[slot] {
		return
	}
	a.used[slot] = false
	a.cold[slot] = ColdState{}
	a.released = append(a.released, slot)
	a.count--
}

// CopyUsedIndices writes the live slots into dst, which must hold Capacity
// entries, and returns how many were written.
func (a *Arena) CopyUsedIndices(dst []int) int {
	n := 0
	for slot, used := range a.used {
		if used {
			dst[n] = slot
			n++
		}
	}
	return n
}

// Used reports whether slot holds a live bullet.
func (a *Arena) Used(slot int) bool {
	return slot >= 0 && slot < len(a.used) && a.used[slot]
}

// Hot returns the hot state of a slot.
func (a *Arena) Hot(slot int) *HotState {
	return &a.hot[slot]
}

// Cold returns the cold state of a slot.
func (a *Arena) Cold(slot int) *ColdState {
	return &a.cold[slot]
}

// Generation returns how many times slot has been handed out.
func (a *Arena) Generation(slot int) uint32 {
	return a.gen[slot]
}

// Stop cancels a live bullet. Stopping a dead or free slot does nothing.
func (a *Arena) Stop(slot int) {
	if !a.Used(slot) {
		return
	}
	a.hot[slot].stop()
}
