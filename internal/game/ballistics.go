package game

import (
	"image"
	"iter"
	"time"
)

// Ballistics is a constant-acceleration trajectory sampled on the terrain grid.
//
// Positions follow p(t) = p0 + (v0 + a·t)·t, where t is scaled time in
// "ballistic seconds" (wall seconds × timeScale). The a·t² term is kept as is:
// missile range, fall timing and subsidence speed are all tuned against it.
//
// A Ballistics value keeps a cursor (last sampled time and position) so that
// successive calls to VisitedCells continue exactly where the previous call
// stopped, frame after frame, without revisiting or skipping cells.
type Ballistics struct {
	start     Vec2
	velocity  Vec2
	accel     Vec2
	timeScale float64
	origin    time.Duration

	cursorT   float64
	cursorPos Vec2
}

// NewBallistics starts a trajectory at origin (a round-clock timestamp).
func NewBallistics(start, velocity, accel Vec2, timeScale float64, origin time.Duration) *Ballistics {
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Ballistics{
		start:     start,
		velocity:  velocity,
		accel:     accel,
		timeScale: timeScale,
		origin:    origin,
		cursorPos: start,
	}
}

// Elapsed converts a round-clock timestamp to scaled trajectory time.
func (b *Ballistics) Elapsed(now time.Duration) float64 {
	t := (now - b.origin).Seconds() * b.timeScale
	if t < 0 {
		return 0
	}
	return t
}

// VelocityAt returns v0 + a·t.
func (b *Ballistics) VelocityAt(t float64) Vec2 {
	return b.velocity.Add(b.accel.Scale(t))
}

// PositionAt returns p0 + VelocityAt(t)·t.
func (b *Ballistics) PositionAt(t float64) Vec2 {
	return b.start.Add(b.VelocityAt(t).Scale(t))
}

// rateAt is dp/dt of PositionAt: v0 + 2·a·t.
func (b *Ballistics) rateAt(t float64) Vec2 {
	return b.velocity.Add(b.accel.Scale(2 * t))
}

// Position is the last sampled position.
func (b *Ballistics) Position() Vec2 {
	return b.cursorPos
}

// Velocity is VelocityAt at the cursor time.
func (b *Ballistics) Velocity() Vec2 {
	return b.VelocityAt(b.cursorT)
}

// CursorTime is the scaled time of the last sample.
func (b *Ballistics) CursorTime() float64 {
	return b.cursorT
}

// VisitedCells yields every distinct grid cell crossed between the cursor and
// now. The sequence is finite and stateful: consuming it moves the cursor, and
// a second call for the same now yields nothing.
func (b *Ballistics) VisitedCells(now time.Duration) iter.Seq[image.Point] {
	return b.visit(b.Elapsed(now), nil)
}

// VisitedCellsWithin is VisitedCells restricted to [0,maxX)×[0,maxY). The
// sequence ends when the path leaves the bounds from inside. A path that
// starts outside is followed silently until it enters, so re-entry from above
// or the sides is not skipped. The cursor still advances to now once the
// sequence is exhausted.
func (b *Ballistics) VisitedCellsWithin(now time.Duration, maxX, maxY int) iter.Seq[image.Point] {
	bounds := image.Rect(0, 0, maxX, maxY)
	return b.visit(b.Elapsed(now), &bounds)
}

func (b *Ballistics) visit(end float64, bounds *image.Rectangle) iter.Seq[image.Point] {
	return func(yield func(image.Point) bool) {
		if end <= b.cursorT {
			return
		}

		// Half a cell per step on the fastest axis, so consecutive samples
		// never jump over an occupied cell.
		step := end - b.cursorT
		if m := maxAbsComponent(b.rateAt(b.cursorT), b.rateAt(end)); m > 0 {
			step = min(step, 1/(2*m))
		}

		last := b.cursorPos.Cell()
		inside := bounds == nil || last.In(*bounds)
		t := b.cursorT
		for t < end {
			t = min(t+step, end)
			pos := b.PositionAt(t)
			cell := pos.Cell()
			if cell == last {
				continue
			}
			if bounds != nil && !cell.In(*bounds) {
				if inside {
					break
				}
				last = cell
				b.cursorT, b.cursorPos = t, pos
				continue
			}
			inside = true
			last = cell
			b.cursorT, b.cursorPos = t, pos
			if !yield(cell) {
				return
			}
		}
		b.cursorT, b.cursorPos = end, b.PositionAt(end)
	}
}
