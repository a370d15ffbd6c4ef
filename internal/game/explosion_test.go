package game

import (
	"image"
	"math"
	"testing"
	"time"
)

func TestCircleOutline_OnRadius(t *testing.T) {
	for _, r := range []int{1, 5, 17, 49} {
		pts := circleOutline(100, 100, r)
		if len(pts)%4 != 0 || len(pts) == 0 {
			t.Fatalf("r=%d: %d points, want a non-empty multiple of 4", r, len(pts))
		}
		for _, p := range pts {
			d := math.Hypot(float64(p.X-100), float64(p.Y-100))
			if math.Abs(d-float64(r)) > 1 {
				t.Fatalf("r=%d: point %v is %.2f from center", r, p, d)
			}
		}
		for i := 0; i+3 < len(pts); i += 4 {
			a, b := pts[i], pts[i+2]
			if a.X+b.X != 200 || a.Y+b.Y != 200 {
				t.Fatalf("r=%d: chord ends %v %v not mirrored through center", r, a, b)
			}
		}
	}
}

func TestCircleRectArea_Quadrant(t *testing.T) {
	got := circleRectArea(Vec2{0, 0}, 10, 0, 0, 100, 100)
	want := math.Pi * 100 / 4
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("quarter disk area = %v, want %v", got, want)
	}
	got = circleRectArea(Vec2{0, 0}, 10, -50, -50, 50, 50)
	if math.Abs(got-math.Pi*100) > 1e-9 {
		t.Fatalf("full disk area = %v", got)
	}
}

func TestOverlapPercent_InsideAndDisjoint(t *testing.T) {
	e := NewExplosion(Vec2{100, 100}, 50, 0)
	if p := e.OverlapPercent(image.Rect(90, 90, 110, 110)); p != 100 {
		t.Fatalf("inside rect overlap = %d, want 100", p)
	}
	if p := e.OverlapPercent(image.Rect(200, 200, 240, 220)); p != 0 {
		t.Fatalf("disjoint rect overlap = %d, want 0", p)
	}
	if p := e.OverlapPercent(image.Rect(100, 100, 100, 120)); p != 0 {
		t.Fatalf("zero-area rect overlap = %d, want 0", p)
	}
}

func TestOverlapPercent_MonotoneAwayFromCenter(t *testing.T) {
	e := NewExplosion(Vec2{100, 100}, 50, 0)
	prev := 101
	for dx := 0; dx <= 120; dx += 3 {
		r := image.Rect(80+dx, 90, 120+dx, 110)
		p := e.OverlapPercent(r)
		if p > prev {
			t.Fatalf("overlap grew from %d to %d at dx=%d", prev, p, dx)
		}
		prev = p
	}
	if prev != 0 {
		t.Fatalf("far rect overlap = %d, want 0", prev)
	}
}

func TestOverlapPercent_Fractions(t *testing.T) {
	// A huge circle whose edge runs vertically through x=16 of a 40×20 rect.
	e := NewExplosion(Vec2{16 - 1000, 10}, 1000, 0)
	if p := e.OverlapPercent(image.Rect(0, 0, TankWidth, TankHeight)); p != 40 {
		t.Fatalf("overlap = %d, want 40", p)
	}
	if p := e.OverlapPercent(image.Rect(200, 0, 200+TankWidth, TankHeight)); p != 0 {
		t.Fatalf("far tank overlap = %d, want 0", p)
	}
}

func TestExplosion_GrowFadeLifecycle(t *testing.T) {
	tr := newFlatTerrain(t, 200, 200)
	e := NewExplosion(Vec2{100, 100}, 30, time.Second)
	grow := time.Duration(30.0 / explosionGrowthSpeed * float64(time.Second))

	e.Update(time.Second+grow/2, tr)
	if e.Opacity() != 1 || math.Abs(e.Radius()-15) > 1e-6 {
		t.Fatalf("mid-growth: opacity %v radius %v", e.Opacity(), e.Radius())
	}
	if e.Carved() {
		t.Fatal("carved before reaching full radius")
	}

	e.Update(time.Second+grow+grow/2, tr)
	if math.Abs(e.Opacity()-0.5) > 1e-6 || e.Radius() != 30 {
		t.Fatalf("mid-fade: opacity %v radius %v", e.Opacity(), e.Radius())
	}
	if !e.Carved() || !e.Alive() {
		t.Fatalf("mid-fade: carved=%v alive=%v", e.Carved(), e.Alive())
	}

	e.Update(time.Second+3*grow, tr)
	if e.Alive() || e.Opacity() != 0 {
		t.Fatalf("after fade: opacity %v", e.Opacity())
	}
}

func TestExplosion_CarvesDiskOnce(t *testing.T) {
	tr := newFlatTerrain(t, 200, 200)
	e := NewExplosion(Vec2{100, 100}, 20, 0)
	e.Update(time.Second/5, tr)
	if !e.Carved() {
		t.Fatal("expected carve at full radius")
	}
	for _, p := range []image.Point{{100, 100}, {110, 100}, {100, 115}, {90, 90}, {82, 100}} {
		if tr.Query(p.X, p.Y) {
			t.Fatalf("cell %v inside the blast is still filled", p)
		}
	}
	for _, p := range []image.Point{{100, 125}, {125, 100}, {75, 110}} {
		if !tr.Query(p.X, p.Y) {
			t.Fatalf("cell %v outside the blast was cleared", p)
		}
	}
	if !tr.Changed() {
		t.Fatal("carving did not mark the terrain changed")
	}

	// Refill the center; later updates must not carve again.
	tr.Span(100, 100, 1)[0] = 1
	e.Update(time.Second/4, tr)
	if !tr.Query(100, 100) {
		t.Fatal("explosion carved a second time")
	}
}

func TestExplosion_CarveClipsAtEdges(t *testing.T) {
	tr := newFlatTerrain(t, 100, 100)
	e := NewExplosion(Vec2{2, 98}, 20, 0)
	e.Update(time.Second, tr)
	if tr.Query(0, 99) || tr.Query(10, 90) {
		t.Fatal("corner blast left cells inside the circle")
	}
	if !tr.Query(60, 99) {
		t.Fatal("corner blast cleared far cells")
	}
}
