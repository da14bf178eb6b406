package telemetry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/salvo/ballistics"
	"github.com/pthm-cable/salvo/collision"
)

// ImpactRecord is one dispatched impact or surface event.
type ImpactRecord struct {
	Frame      uint64  `csv:"frame"`
	Kind       string  `csv:"kind"`
	Surface    string  `csv:"surface"`
	Weapon     string  `csv:"weapon"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	Z          float64 `csv:"z"`
	Speed      float64 `csv:"speed"`
	Distance   float64 `csv:"distance"`
	EnergyLoss float64 `csv:"energy_loss"`
	Thickness  float64 `csv:"thickness"`
	Handled    uint32  `csv:"handled"`
}

// ImpactLog is a global handler that records every event reaching the end
// of the dispatch chain. It runs on the simulation's dispatch goroutine.
type ImpactLog struct {
	frame   uint64
	keep    bool
	records []ImpactRecord
	counts  map[string]int
}

// NewImpactLog creates a log. With keep false only per-kind counts are kept.
func NewImpactLog(keep bool) *ImpactLog {
	return &ImpactLog{keep: keep, counts: make(map[string]int)}
}

// Handlers returns the log as the simulation's global handlers.
func (l *ImpactLog) Handlers() ballistics.Handlers {
	return ballistics.Handlers{Impact: l, Surface: l}
}

// SetFrame stamps subsequent records with frame.
func (l *ImpactLog) SetFrame(frame uint64) {
	l.frame = frame
}

// HandleImpact implements ballistics.ImpactHandler.
func (l *ImpactLog) HandleImpact(info *ballistics.ImpactInfo, handled ballistics.Handled) ballistics.Handled {
	thickness := -1.0
	if info.HasExit {
		thickness = r3.Norm(r3.Sub(info.ExitPoint, info.EntryPoint))
	}
	l.add(ImpactRecord{
		Kind:       "impact",
		Surface:    surfaceOf(info.Collider),
		EnergyLoss: info.EnergyLossPerUnit,
		Thickness:  thickness,
	}, info.EntryPoint, &info.Bullet, handled)
	return ballistics.HandledCustom
}

// HandleSurface implements ballistics.SurfaceHandler.
func (l *ImpactLog) HandleSurface(info *ballistics.SurfaceInfo, handled ballistics.Handled) ballistics.Handled {
	l.add(ImpactRecord{
		Kind:       info.Kind.String(),
		Surface:    surfaceOf(info.Collider),
		EnergyLoss: info.EnergyLossPerUnit,
		Thickness:  -1,
	}, info.Point, &info.Bullet, handled)
	return ballistics.HandledCustom
}

func (l *ImpactLog) add(rec ImpactRecord, at r3.Vec, b *ballistics.BulletView, handled ballistics.Handled) {
	l.counts[rec.Kind]++
	if !l.keep {
		return
	}
	rec.Frame = l.frame
	rec.X, rec.Y, rec.Z = at.X, at.Y, at.Z
	rec.Speed = r3.Norm(b.Velocity)
	rec.Distance = b.Distance
	rec.Handled = uint32(handled)
	if b.Params != nil {
		rec.Weapon = b.Params.Name
	}
	l.records = append(l.records, rec)
}

// Count returns how many events of kind were seen since the log was created.
// Kinds are "impact" and the surface kind names.
func (l *ImpactLog) Count(kind string) int {
	return l.counts[kind]
}

// Drain returns the kept records and empties the log.
func (l *ImpactLog) Drain() []ImpactRecord {
	out := l.records
	l.records = nil
	return out
}

func surfaceOf(c collision.Collider) string {
	if c == nil {
		return ""
	}
	return string(c.Surface())
}
