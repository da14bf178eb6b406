package game

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/config"
)

// emitter fires one weapon at a fixed rate from a fixed muzzle.
type emitter struct {
	weapon    string
	params    *ballistics.BulletParams
	origin    r3.Vec
	direction r3.Vec
	rate      float64 // rounds per second
	cone      float64 // radians
	fired     int
}

func newEmitter(cfg *config.Config, ec config.EmitterConfig) (*emitter, error) {
	params, ok := cfg.Weapon(ec.Weapon)
	if !ok {
		return nil, fmt.Errorf("unknown weapon %q", ec.Weapon)
	}
	dir := ec.Direction.Vec()
	if r3.Norm2(dir) == 0 {
		return nil, errors.New("zero direction")
	}
	return &emitter{
		weapon:    ec.Weapon,
		params:    params,
		origin:    ec.Origin.Vec(),
		direction: r3.Unit(dir),
		rate:      ec.Rate,
		cone:      ec.Cone,
	}, nil
}

// due returns how many rounds to fire so that the total fired matches the
// rate after elapsed seconds.
func (e *emitter) due(elapsed float64) int {
	if e.rate <= 0 {
		return 0
	}
	// The epsilon absorbs float error in elapsed at exact multiples.
	total := int(math.Floor(e.rate*elapsed + 1e-9))
	n := total - e.fired
	e.fired = total
	return max(n, 0)
}
