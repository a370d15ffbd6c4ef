package game

import (
	"image"
	"math"
	"time"
)

const (
	TankWidth  = 40
	TankHeight = 20

	MaxHealth = 100

	gunLength = 18

	// muzzleClearance keeps a fresh missile clear of its own barrel.
	muzzleClearance = 3
	powerScale      = 1.5
	fallTimeScale   = 3.0

	// fallGapRatio is the share of the tank width that may hang over a gap
	// before the tank keeps falling.
	fallGapRatio = 0.3
)

// Tank-local silhouette, in pixels from the top-left corner.
var (
	gunPivot     = Vec2{TankWidth / 2, 6}
	bodyCenter   = Vec2{TankWidth / 2, 14}
	bodyRadii    = Vec2{TankWidth / 2, 6}
	turretCenter = Vec2{TankWidth / 2, 8}
	turretRadii  = Vec2{9, 5}
	gunCenter    = Vec2{0, -gunLength / 2} // relative to the pivot, gun pointing up
	gunRadii     = Vec2{2.5, gunLength / 2}
)

// FallResult is the outcome of one Tank.Step.
type FallResult struct {
	// Placed is true once the tank rests on the ground (or fell off the bottom).
	Placed bool
	// Distance is how many rows the tank dropped during the latest fall.
	Distance int
}

// Tank is a player's vehicle.
type Tank struct {
	PlayerNumber int

	// X, Y is the top-left corner in grid cells.
	X, Y int

	angle  float64
	power  float64
	health int
	dead   bool

	fall     *tankFall
	lastFall int
}

// tankFall is an in-progress drop.
type tankFall struct {
	path     *Ballistics
	distance int
}

// NewTank places a tank with its top-left corner at (x, y).
func NewTank(playerNumber, x, y int) *Tank {
	return &Tank{
		PlayerNumber: playerNumber,
		X:            x,
		Y:            y,
		power:        50,
		health:       MaxHealth,
	}
}

// Angle is the gun angle in degrees from vertical, positive to the right.
func (t *Tank) Angle() float64 { return t.angle }

// Power is the gun power in 0..100.
func (t *Tank) Power() float64 { return t.power }

// SetAngle clamps and stores the gun angle.
func (t *Tank) SetAngle(deg float64) {
	t.angle = math.Max(-90, math.Min(90, deg))
}

// SetPower clamps and stores the gun power.
func (t *Tank) SetPower(p float64) {
	t.power = math.Max(0, math.Min(100, p))
}

func (t *Tank) Health() int { return t.health }
func (t *Tank) Dead() bool  { return t.dead }

// Falling reports whether a drop is in progress.
func (t *Tank) Falling() bool { return t.fall != nil }

// LastFall is the distance of the most recent completed drop.
func (t *Tank) LastFall() int { return t.lastFall }

// TakeDamage lowers health, saturating at zero.
func (t *Tank) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	t.health = max(0, t.health-n)
}

// Rect is the tank body bounds.
func (t *Tank) Rect() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+TankWidth, t.Y+TankHeight)
}

// Center is the middle of the tank body.
func (t *Tank) Center() Vec2 {
	return Vec2{float64(t.X) + TankWidth/2.0, float64(t.Y) + TankHeight/2.0}
}

// GunPivot is the barrel base in playfield coordinates.
func (t *Tank) GunPivot() Vec2 {
	return Vec2{float64(t.X), float64(t.Y)}.Add(gunPivot)
}

// GunTip is the barrel end in playfield coordinates.
func (t *Tank) GunTip() Vec2 {
	return t.GunPivot().Add(Vec2{0, -gunLength}.Rotate(t.angle))
}

// Drop starts a fresh fall from the current position.
func (t *Tank) Drop(now time.Duration) {
	bottom := Vec2{float64(t.X), float64(t.Y + TankHeight - 1)}
	t.fall = &tankFall{
		path: NewBallistics(bottom, Vec2{}, Vec2{0, G}, fallTimeScale, now),
	}
}

// DropFrom moves the tank's top edge to top, then starts a fall.
func (t *Tank) DropFrom(top int, now time.Duration) {
	t.Y = top
	t.Drop(now)
}

// Step continues an active fall up to now. Rows the tank passes through are
// checked under its whole footprint: while more than the allowed gap is empty
// the tank keeps falling and crushes whatever thin terrain is left in that
// row. It reports Placed with the dropped distance once the tank stops.
func (t *Tank) Step(now time.Duration, terrain *Terrain) FallResult {
	if t.fall == nil {
		return FallResult{Placed: true, Distance: t.lastFall}
	}
	allowedGap := int(math.Round(fallGapRatio * TankWidth))
	for cell := range t.fall.path.VisitedCells(now) {
		if cell.Y >= terrain.Height() {
			return t.land()
		}
		empty := TankWidth - terrain.FilledIn(t.X, cell.Y, TankWidth)
		if empty <= allowedGap {
			return t.land()
		}
		if empty < TankWidth {
			x0 := max(t.X, 0)
			terrain.ClearSpan(x0, cell.Y, t.X+TankWidth-x0)
		}
		t.Y = cell.Y - TankHeight + 1
		t.fall.distance++
	}
	return FallResult{}
}

func (t *Tank) land() FallResult {
	t.lastFall = t.fall.distance
	t.fall = nil
	return FallResult{Placed: true, Distance: t.lastFall}
}

// Fire launches a missile from the muzzle along the gun with speed
// power × powerScale under the given acceleration (wind, gravity).
func (t *Tank) Fire(accel Vec2, now time.Duration) *Projectile {
	dir := Vec2{0, -1}.Rotate(t.angle)
	muzzle := t.GunPivot().Add(dir.Scale(gunLength + muzzleClearance))
	return NewProjectile(muzzle, dir.Scale(t.power*powerScale), accel, now)
}

// Overlaps reports whether p lies inside the tank's body, turret or gun.
func (t *Tank) Overlaps(p Vec2) bool {
	local := p.Sub(Vec2{float64(t.X), float64(t.Y)})
	if inEllipse(local, bodyCenter, bodyRadii) || inEllipse(local, turretCenter, turretRadii) {
		return true
	}
	gun := local.Sub(gunPivot).Rotate(-t.angle)
	return inEllipse(gun, gunCenter, gunRadii)
}

func inEllipse(p, c, r Vec2) bool {
	dx := (p.X - c.X) / r.X
	dy := (p.Y - c.Y) / r.Y
	return dx*dx+dy*dy <= 1
}
