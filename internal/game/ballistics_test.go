package game

import (
	"image"
	"math"
	"testing"
	"time"
)

func collectCells(b *Ballistics, now time.Duration) []image.Point {
	var out []image.Point
	for c := range b.VisitedCells(now) {
		out = append(out, c)
	}
	return out
}

func checkContinuous(t *testing.T, prev image.Point, cells []image.Point) {
	t.Helper()
	for i, c := range cells {
		if c == prev {
			t.Fatalf("cell %d repeats previous cell %v", i, c)
		}
		dx, dy := c.X-prev.X, c.Y-prev.Y
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			t.Fatalf("cell %d jumps from %v to %v", i, prev, c)
		}
		prev = c
	}
}

func TestBallistics_PositionFormula(t *testing.T) {
	b := NewBallistics(Vec2{10, 20}, Vec2{1, 0}, Vec2{0, 1}, 1, 0)
	p := b.PositionAt(2)
	// p0 + (v0 + a·t)·t = (10,20) + (1,2)·2
	if p.X != 12 || p.Y != 24 {
		t.Fatalf("PositionAt(2) = %+v, want {12 24}", p)
	}
	v := b.VelocityAt(2)
	if v.X != 1 || v.Y != 2 {
		t.Fatalf("VelocityAt(2) = %+v, want {1 2}", v)
	}
}

func TestBallistics_ElapsedUsesTimeScale(t *testing.T) {
	b := NewBallistics(Vec2{}, Vec2{}, Vec2{}, 3, 2*time.Second)
	if got := b.Elapsed(3 * time.Second); math.Abs(got-3) > 1e-9 {
		t.Fatalf("Elapsed = %v, want 3", got)
	}
	if got := b.Elapsed(time.Second); got != 0 {
		t.Fatalf("Elapsed before origin = %v, want 0", got)
	}
}

func TestBallistics_NoRepeatNoTunnel(t *testing.T) {
	cases := []struct {
		v, a Vec2
	}{
		{Vec2{400, -300}, Vec2{-7, G}},
		{Vec2{-1500, 20}, Vec2{10, G}},
		{Vec2{0.3, 0.1}, Vec2{0, 0}},
		{Vec2{0, 0}, Vec2{0, G}},
		{Vec2{-90, -900}, Vec2{3.3, G}},
	}
	for _, tc := range cases {
		start := Vec2{500.5, 500.5}
		b := NewBallistics(start, tc.v, tc.a, 3, 0)
		cells := collectCells(b, 2*time.Second)
		if len(cells) == 0 {
			t.Fatalf("v=%+v a=%+v: no cells visited", tc.v, tc.a)
		}
		checkContinuous(t, start.Cell(), cells)
	}
}

func TestBallistics_ComposesAcrossFrames(t *testing.T) {
	b := NewBallistics(Vec2{100, 100}, Vec2{60, -80}, Vec2{-2, G}, 3, 0)
	prev := b.Position().Cell()
	var all []image.Point
	for now := time.Duration(0); now <= time.Second; now += 16 * time.Millisecond {
		all = append(all, collectCells(b, now)...)
	}
	checkContinuous(t, prev, all)

	end := b.PositionAt(b.CursorTime())
	if b.Position() != end {
		t.Fatalf("cursor position %+v does not match trajectory %+v", b.Position(), end)
	}
	if again := collectCells(b, 992*time.Millisecond); len(again) != 0 {
		t.Fatalf("revisiting the same time yielded %d cells", len(again))
	}
}

func TestBallistics_ZeroVelocitySingleStep(t *testing.T) {
	b := NewBallistics(Vec2{5, 5}, Vec2{}, Vec2{}, 1, 0)
	if cells := collectCells(b, time.Second); len(cells) != 0 {
		t.Fatalf("stationary body visited %v", cells)
	}
	if b.CursorTime() != 1 {
		t.Fatalf("cursor = %v, want 1", b.CursorTime())
	}
}

func TestBallistics_EarlyStopKeepsCursor(t *testing.T) {
	b := NewBallistics(Vec2{0.5, 0.5}, Vec2{0, 10}, Vec2{}, 1, 0)
	var first image.Point
	for c := range b.VisitedCells(time.Second) {
		first = c
		break
	}
	if first != image.Pt(0, 1) {
		t.Fatalf("first cell = %v, want (0,1)", first)
	}
	var next image.Point
	for c := range b.VisitedCells(time.Second) {
		next = c
		break
	}
	if next != image.Pt(0, 2) {
		t.Fatalf("resumed at %v, want (0,2)", next)
	}
}

func TestBallistics_WithinStopsAtBounds(t *testing.T) {
	b := NewBallistics(Vec2{5.5, 5.5}, Vec2{-30, 0}, Vec2{}, 1, 0)
	bounds := image.Rect(0, 0, 20, 20)
	n := 0
	for c := range b.VisitedCellsWithin(time.Second, 20, 20) {
		if !c.In(bounds) {
			t.Fatalf("cell %v outside bounds", c)
		}
		n++
	}
	if n != 5 {
		t.Fatalf("visited %d cells, want 5", n)
	}
	if b.CursorTime() != 1 {
		t.Fatalf("cursor not advanced to end: %v", b.CursorTime())
	}
}

func TestBallistics_WithinFollowsReentry(t *testing.T) {
	b := NewBallistics(Vec2{5.5, -3.5}, Vec2{0, 30}, Vec2{}, 1, 0)
	var cells []image.Point
	for c := range b.VisitedCellsWithin(time.Second, 20, 20) {
		cells = append(cells, c)
	}
	if len(cells) != 20 {
		t.Fatalf("visited %d cells, want 20: %v", len(cells), cells)
	}
	if cells[0] != image.Pt(5, 0) || cells[19] != image.Pt(5, 19) {
		t.Fatalf("entered at %v and left at %v, want (5,0) and (5,19)", cells[0], cells[19])
	}
	checkContinuous(t, cells[0], cells[1:])
}

func TestVec2_Rotate(t *testing.T) {
	v := Vec2{0, -1}.Rotate(90)
	if math.Abs(v.X-1) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Fatalf("up rotated 90° = %+v, want {1 0}", v)
	}
	v = Vec2{0, -1}.Rotate(-90)
	if math.Abs(v.X+1) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Fatalf("up rotated -90° = %+v, want {-1 0}", v)
	}
}
