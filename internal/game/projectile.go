package game

import (
	"image"
	"time"
)

// missileTimeScale speeds projectile flight relative to wall time.
const missileTimeScale = 3.0

// HitTest reports whether the projectile collides at cell (x, y).
type HitTest func(x, y int) bool

// Projectile is a missile in flight.
type Projectile struct {
	path  *Ballistics
	fired time.Duration
}

// NewProjectile launches a missile from pos at now.
func NewProjectile(pos, velocity, accel Vec2, now time.Duration) *Projectile {
	return &Projectile{
		path:  NewBallistics(pos, velocity, accel, missileTimeScale, now),
		fired: now,
	}
}

// Position is the last sampled position, for drawing.
func (p *Projectile) Position() Vec2 { return p.path.Position() }

// Velocity is the current velocity, for the HUD.
func (p *Projectile) Velocity() Vec2 { return p.path.Velocity() }

// FiredAt is the round-clock time of launch.
func (p *Projectile) FiredAt() time.Duration { return p.fired }

// Advance flies the missile up to now over a width×height playfield. It
// returns the impact cell and true on a hit, or false while still flying.
//
// A cell hits when hit reports a collision or the cell reaches the floor.
// While the missile is outside the playfield its cells are not tested; it
// still lands once its position drops below the floor.
func (p *Projectile) Advance(now time.Duration, width, height int, hit HitTest) (image.Point, bool) {
	// One extra row below the floor so the floor crossing itself is reported.
	for c := range p.path.VisitedCellsWithin(now, width, height+1) {
		if c.Y >= height || hit(c.X, c.Y) {
			return c, true
		}
	}
	if pos := p.path.Position(); pos.Y >= float64(height) {
		c := pos.Cell()
		c.Y = height
		return c, true
	}
	return image.Point{}, false
}
