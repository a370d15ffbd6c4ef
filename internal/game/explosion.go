package game

import (
	"image"
	"math"
	"time"
)

// explosionGrowthSpeed is the blast radius growth in pixels per second.
const explosionGrowthSpeed = 150.0

// Explosion is a circular blast that grows to MaxRadius, carves the terrain
// once, then fades out over the same duration it took to grow.
type Explosion struct {
	Center    Vec2
	MaxRadius float64

	created time.Duration
	radius  float64
	opacity float64
	carved  bool
}

// NewExplosion starts a blast at now.
func NewExplosion(center Vec2, maxRadius float64, now time.Duration) *Explosion {
	return &Explosion{
		Center:    center,
		MaxRadius: maxRadius,
		created:   now,
		opacity:   1,
	}
}

// Radius is the current (clamped) radius for drawing.
func (e *Explosion) Radius() float64 { return e.radius }

// Opacity is 1 while growing, then fades linearly to 0.
func (e *Explosion) Opacity() float64 { return e.opacity }

// Alive reports whether the blast is still visible.
func (e *Explosion) Alive() bool { return e.opacity > 0 }

// Carved reports whether the blast already removed its terrain.
func (e *Explosion) Carved() bool { return e.carved }

// Update advances the blast to now, carving terrain the first time the growth
// reaches MaxRadius.
func (e *Explosion) Update(now time.Duration, terrain *Terrain) {
	r := (now - e.created).Seconds() * explosionGrowthSpeed
	if r <= e.MaxRadius {
		e.opacity = 1
	} else {
		e.opacity = math.Max(0, (2*e.MaxRadius-r)/e.MaxRadius)
	}
	e.radius = math.Min(r, e.MaxRadius)

	if !e.carved && r >= e.MaxRadius {
		e.carve(terrain)
		e.carved = true
	}
}

// carve clears the disk with horizontal chords traced from the outline.
func (e *Explosion) carve(terrain *Terrain) {
	outline := circleOutline(int(e.Center.X), int(e.Center.Y), int(e.MaxRadius)-1)
	for i := 0; i+3 < len(outline); i += 4 {
		p1, p2 := outline[i], outline[i+2]
		x0 := max(min(p1.X, p2.X), 0)
		x1 := max(p1.X, p2.X)
		if x1 < x0 {
			continue
		}
		terrain.ClearSpan(x0, p1.Y, x1-x0+1)
		terrain.ClearSpan(x0, p2.Y, x1-x0+1)
	}
	terrain.markDirty(image.Rect(
		int(e.Center.X-e.MaxRadius), int(e.Center.Y-e.MaxRadius),
		int(e.Center.X+e.MaxRadius)+1, int(e.Center.Y+e.MaxRadius)+1,
	))
}

// OverlapPercent returns the share of rect covered by the full blast circle,
// rounded to a whole percent in [0, 100]. Empty rectangles give 0.
func (e *Explosion) OverlapPercent(rect image.Rectangle) int {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return 0
	}
	area := circleRectArea(e.Center, e.MaxRadius,
		float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Max.X), float64(rect.Max.Y))
	pct := int(math.Round(100 * area / float64(w*h)))
	return max(0, min(pct, 100))
}
