package ballistics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/collision"
)

// ImpactKind is a material's verdict on a hit.
type ImpactKind uint8

const (
	ImpactPenetrate ImpactKind = iota
	ImpactIgnore
	ImpactRicochet
	ImpactStop
)

func (k ImpactKind) String() string {
	switch k {
	case ImpactPenetrate:
		return "penetrate"
	case ImpactIgnore:
		return "ignore"
	case ImpactRicochet:
		return "ricochet"
	case ImpactStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ImpactOutcome is returned by Material.Impact.
type ImpactOutcome struct {
	Kind ImpactKind
	// SpeedFactor scales the bullet's speed after a ricochet. Zero means 1.
	SpeedFactor float64
}

// ImpactContext describes a bullet meeting a material surface.
type ImpactContext struct {
	Params   *BulletParams
	Point    r3.Vec
	Normal   r3.Vec
	Velocity r3.Vec // velocity when the surface is reached
	Energy   float64
	Collider collision.Collider
	Exit     bool // true when leaving the material
}

//go:generate go tool mockgen -destination=./mocks/ballistics_mock.go -package=mocks . Material,MaterialLookup,Visual,ImpactHandler,SurfaceHandler

// Material is a ballistic material. Implementations may additionally
// implement ImpactHandler and SurfaceHandler.
type Material interface {
	Impact(ctx *ImpactContext) ImpactOutcome
	Spread(ctx *ImpactContext) float64
	EnergyLossPerUnit(ctx *ImpactContext) float64
}

// MaterialLookup maps collider surfaces to ballistic materials.
type MaterialLookup interface {
	Lookup(surface collision.Surface) (Material, bool)
}

// Handled is the set of effects handlers in a dispatch chain have produced.
type Handled uint32

const (
	HandledSound Handled = 1 << iota
	HandledDecal
	HandledParticles
	HandledDamage
	HandledCustom

	HandledNone Handled = 0
	HandledAll          = HandledSound | HandledDecal | HandledParticles | HandledDamage | HandledCustom
)

// Has reports whether every bit of other is set.
func (h Handled) Has(other Handled) bool {
	return h&other == other
}

// SurfaceKind classifies a surface interaction.
type SurfaceKind uint8

const (
	SurfaceEntry SurfaceKind = iota
	SurfaceExit
	SurfaceRicochet
	SurfaceStop
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceEntry:
		return "entry"
	case SurfaceExit:
		return "exit"
	case SurfaceRicochet:
		return "ricochet"
	case SurfaceStop:
		return "stop"
	default:
		return "unknown"
	}
}

// BulletView is a snapshot of a bullet passed to handlers.
type BulletView struct {
	Weapon   any
	Params   *BulletParams
	Position r3.Vec
	Velocity r3.Vec
	Distance float64

	batch *Batch
	slot  int
	gen   uint32
}

// Stop requests the bullet be cancelled. It takes effect at the next gather
// and is ignored if the bullet is already gone.
func (b BulletView) Stop() {
	if b.batch == nil {
		return
	}
	b.batch.requestStop(b.slot, b.gen)
}

// SurfaceInfo describes a bullet crossing a surface.
type SurfaceInfo struct {
	Bullet            BulletView
	Kind              SurfaceKind
	Point             r3.Vec
	Normal            r3.Vec
	Spread            float64
	SpeedFactor       float64
	EnergyLossPerUnit float64
	Collider          collision.Collider
}

// ImpactInfo describes a bullet entering a material volume.
type ImpactInfo struct {
	Bullet            BulletView
	EntryPoint        r3.Vec
	EntryNormal       r3.Vec
	ExitPoint         r3.Vec
	ExitNormal        r3.Vec
	HasExit           bool
	EnergyLossPerUnit float64
	Collider          collision.Collider
}

// ImpactHandler receives volumetric impacts.
type ImpactHandler interface {
	HandleImpact(info *ImpactInfo, handled Handled) Handled
}

// SurfaceHandler receives surface interactions.
type SurfaceHandler interface {
	HandleSurface(info *SurfaceInfo, handled Handled) Handled
}

// Handlers are the global handlers invoked after the bullet's and the
// material's own handlers. Either may be nil.
type Handlers struct {
	Impact  ImpactHandler
	Surface SurfaceHandler
}
