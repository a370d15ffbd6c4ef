package game

import (
	"image"
	"testing"
	"time"
)

// fly advances p at 60 fps until it hits or maxFrames pass.
func fly(p *Projectile, tr *Terrain, hit HitTest, maxFrames int) (image.Point, bool) {
	for f := 1; f <= maxFrames; f++ {
		if c, ok := p.Advance(time.Duration(f)*DefaultStep, tr.Width(), tr.Height(), hit); ok {
			return c, true
		}
	}
	return image.Point{}, false
}

func TestProjectile_VerticalDropHitsSurface(t *testing.T) {
	tr := newFlatTerrain(t, 100, 100)
	p := NewProjectile(Vec2{50, 0}, Vec2{}, Vec2{0, G}, 0)
	c, ok := fly(p, tr, tr.Query, 600)
	if !ok {
		t.Fatal("projectile never hit")
	}
	if c != image.Pt(50, 50) {
		t.Fatalf("hit at %v, want (50,50)", c)
	}
}

func TestProjectile_HitsFloorThroughClearedColumn(t *testing.T) {
	tr := newFlatTerrain(t, 100, 100)
	for y := 50; y < 100; y++ {
		tr.ClearSpan(50, y, 1)
	}
	p := NewProjectile(Vec2{50, 0}, Vec2{}, Vec2{0, G}, 0)
	c, ok := fly(p, tr, tr.Query, 600)
	if !ok {
		t.Fatal("projectile never hit")
	}
	if c != image.Pt(50, 100) {
		t.Fatalf("hit at %v, want (50,100)", c)
	}
}

func TestProjectile_StillFlying(t *testing.T) {
	tr := newFlatTerrain(t, 100, 100)
	p := NewProjectile(Vec2{50, 0}, Vec2{}, Vec2{0, G}, 0)
	if _, ok := p.Advance(DefaultStep, 100, 100, tr.Query); ok {
		t.Fatal("hit after a single frame")
	}
	if p.Position().Y <= 0 {
		t.Fatalf("projectile did not move: %+v", p.Position())
	}
}

func TestProjectile_OffscreenLandsAtFloor(t *testing.T) {
	tr := newFlatTerrain(t, 100, 100)
	p := NewProjectile(Vec2{-10, 0}, Vec2{}, Vec2{0, G}, 0)
	c, ok := fly(p, tr, func(x, y int) bool {
		t.Fatalf("hit test called outside the playfield at (%d,%d)", x, y)
		return false
	}, 600)
	if !ok {
		t.Fatal("off-screen projectile never landed")
	}
	if c.X != -10 || c.Y != 100 {
		t.Fatalf("landed at %v, want (-10,100)", c)
	}
}

func TestProjectile_EnteringFromAboveHitsFirstSurface(t *testing.T) {
	tr, err := NewTerrain(100, 100)
	if err != nil {
		t.Fatal(err)
	}
	for y := 3; y <= 6; y++ {
		row := tr.Span(0, y, 100)
		for i := range row {
			row[i] = 1
		}
	}
	p := NewProjectile(Vec2{50, -20}, Vec2{0, 300}, Vec2{0, G}, 0)
	c, ok := fly(p, tr, tr.Query, 600)
	if !ok {
		t.Fatal("projectile never hit")
	}
	if c != image.Pt(50, 3) {
		t.Fatalf("hit at %v, want the plate top (50,3)", c)
	}
}

func TestProjectile_HitsTankSilhouette(t *testing.T) {
	tr, _ := NewTerrain(200, 200)
	tank := NewTank(1, 80, 100)
	hit := func(x, y int) bool {
		return tank.Overlaps(Vec2{float64(x) + 0.5, float64(y) + 0.5})
	}
	p := NewProjectile(Vec2{100, 0}, Vec2{}, Vec2{0, G}, 0)
	c, ok := fly(p, tr, hit, 600)
	if !ok {
		t.Fatal("missed the tank")
	}
	if c.X != 100 || c.Y < 100-gunLength || c.Y > 110 {
		t.Fatalf("hit at %v, want on the gun or turret", c)
	}
}
