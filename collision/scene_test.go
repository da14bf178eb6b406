package collision

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBoxRaycast(t *testing.T) {
	box := NewBox(r3.Vec{X: 10, Y: -1, Z: -1}, r3.Vec{X: 12, Y: 1, Z: 1}, 0, "steel")

	tests := []struct {
		name       string
		origin     r3.Vec
		dir        r3.Vec
		maxDist    float64
		wantHit    bool
		wantDist   float64
		wantNormal r3.Vec
	}{
		{
			name:       "front face",
			origin:     r3.Vec{},
			dir:        r3.Vec{X: 1},
			maxDist:    100,
			wantHit:    true,
			wantDist:   10,
			wantNormal: r3.Vec{X: -1},
		},
		{
			name:    "out of range",
			origin:  r3.Vec{},
			dir:     r3.Vec{X: 1},
			maxDist: 5,
		},
		{
			name:    "pointing away",
			origin:  r3.Vec{},
			dir:     r3.Vec{X: -1},
			maxDist: 100,
		},
		{
			name:    "starts inside",
			origin:  r3.Vec{X: 11},
			dir:     r3.Vec{X: 1},
			maxDist: 100,
		},
		{
			name:       "back face from behind",
			origin:     r3.Vec{X: 20},
			dir:        r3.Vec{X: -1},
			maxDist:    100,
			wantHit:    true,
			wantDist:   8,
			wantNormal: r3.Vec{X: 1},
		},
		{
			name:    "parallel miss",
			origin:  r3.Vec{Y: 5},
			dir:     r3.Vec{X: 1},
			maxDist: 100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit, ok := box.Raycast(tc.origin, tc.dir, tc.maxDist)
			if ok != tc.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tc.wantHit)
			}
			if !ok {
				return
			}
			if !approx(hit.Distance, tc.wantDist) {
				t.Errorf("distance = %v, want %v", hit.Distance, tc.wantDist)
			}
			if hit.Normal != tc.wantNormal {
				t.Errorf("normal = %v, want %v", hit.Normal, tc.wantNormal)
			}
			if hit.Collider != Collider(box) {
				t.Error("hit collider is not the box")
			}
		})
	}
}

func TestSceneNearestAndMask(t *testing.T) {
	near := NewBox(r3.Vec{X: 5, Y: -1, Z: -1}, r3.Vec{X: 6, Y: 1, Z: 1}, 2, "glass")
	far := NewBox(r3.Vec{X: 10, Y: -1, Z: -1}, r3.Vec{X: 11, Y: 1, Z: 1}, 1, "steel")
	scene := NewScene(far, near)

	hit := scene.Raycast(Query{Direction: r3.Vec{X: 1}, Mask: 0xFFFFFFFF, MaxDistance: 100})
	if hit.Collider != Collider(near) {
		t.Fatalf("expected nearest box, got %v", hit.Collider)
	}

	hit = scene.Raycast(Query{Direction: r3.Vec{X: 1}, Mask: 1, MaxDistance: 100})
	if hit.Collider != Collider(far) {
		t.Fatalf("mask should skip layer 2, got %v", hit.Collider)
	}

	far.Destroy()
	hit = scene.Raycast(Query{Direction: r3.Vec{X: 1}, Mask: 1, MaxDistance: 100})
	if hit.OK() {
		t.Fatal("destroyed box should not be hit")
	}
}

func TestSceneBatchPreservesOrder(t *testing.T) {
	scene := NewScene()
	for i := 0; i < 10; i++ {
		x := float64(10 + i*10)
		scene.Add(NewBox(r3.Vec{X: x, Y: float64(i), Z: -0.5}, r3.Vec{X: x + 1, Y: float64(i) + 1, Z: 0.5}, 0, "wood"))
	}

	const n = 300
	queries := make([]Query, n)
	hits := make([]Hit, n)
	for i := range queries {
		lane := i % 10
		queries[i] = Query{
			Origin:      r3.Vec{Y: float64(lane) + 0.5},
			Direction:   r3.Vec{X: 1},
			Mask:        DefaultLayer,
			MaxDistance: 1000,
		}
	}

	scene.RaycastBatch(queries, hits)

	for i, h := range hits {
		lane := i % 10
		want := float64(10 + lane*10)
		if !h.OK() || !approx(h.Distance, want) {
			t.Errorf("query %d: distance %v ok=%v, want %v", i, h.Distance, h.OK(), want)
		}
	}
}
