package game

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

const (
	MinTanks = 2
	MaxTanks = 8

	// sideMargin is the distance from each edge to the outermost tank centre.
	sideMargin = 100

	// tankResetTop is the top edge tanks are dropped from when a landscape
	// is (re)generated.
	tankResetTop = 0

	missileBlastRadius = 50
	tankBlastRadius    = 40

	fallDamagePerPixel = 0.5
	killBounty         = 1000
	startingMoney      = 0

	maxWind = 10.0
)

// ErrInvalidTankCount is returned when a round is created with fewer than
// MinTanks or more than MaxTanks tanks.
var ErrInvalidTankCount = errors.New("invalid tank count")

// RoundState is the phase of a round.
type RoundState int

const (
	StateTanksThrowing RoundState = iota
	StateAiming
	StateFlyingOfMissile
	StateExploding
	StateSubsidence
	StateFinish
)

func (s RoundState) String() string {
	switch s {
	case StateTanksThrowing:
		return "tanks_throwing"
	case StateAiming:
		return "aiming"
	case StateFlyingOfMissile:
		return "flying"
	case StateExploding:
		return "exploding"
	case StateSubsidence:
		return "subsidence"
	case StateFinish:
		return "finish"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Player is a participant, identified by the number painted on their tank.
type Player struct {
	Number int
	Money  int
	Kills  int
}

// roundOptions collects RoundOption settings. Nil pointers keep the random
// defaults drawn from the round's RNG.
type roundOptions struct {
	seed      *int64
	logger    zerolog.Logger
	amplitude *float64
	dx        *int
	wind      *float64
}

// RoundOption configures NewRound.
type RoundOption func(*roundOptions)

// WithSeed makes the round's randomness (terrain, scroll, turn order, wind)
// reproducible.
func WithSeed(seed int64) RoundOption {
	return func(o *roundOptions) { o.seed = &seed }
}

// WithLogger routes round diagnostics to log.
func WithLogger(log zerolog.Logger) RoundOption {
	return func(o *roundOptions) { o.logger = log }
}

// WithAmplitude overrides the terrain noise amplitude. Zero gives flat ground.
func WithAmplitude(a float64) RoundOption {
	return func(o *roundOptions) { o.amplitude = &a }
}

// WithScroll overrides the terrain horizontal noise offset.
func WithScroll(dx int) RoundOption {
	return func(o *roundOptions) { o.dx = &dx }
}

// WithWind pins the wind to a fixed value for every turn.
func WithWind(w float64) RoundOption {
	return func(o *roundOptions) { o.wind = &w }
}

// Round sequences one game: tanks settle, the current player aims and fires,
// blasts carve the ground, loose terrain collapses, and the turn passes on
// until at most one tank is left.
type Round struct {
	width, height int

	terrain *Terrain
	tanks   []*Tank
	players []*Player
	current int

	wind      float64
	fixedWind *float64

	state     RoundState
	iteration int
	// freePlacement waives fall damage for the next completed placement,
	// which follows a freshly generated landscape.
	freePlacement bool

	projectile *Projectile
	explosions []*Explosion

	now time.Duration
	rng *rand.Rand
	log zerolog.Logger
	ev  *RoundLog
}

// NewRound generates a landscape and drops tankCount tanks onto it, spaced
// evenly between the side margins in shuffled player order.
func NewRound(width, height, tankCount int, opts ...RoundOption) (*Round, error) {
	o := roundOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if tankCount < MinTanks || tankCount > MaxTanks {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidTankCount, tankCount, MinTanks, MaxTanks)
	}
	terrain, err := NewTerrain(width, height)
	if err != nil {
		return nil, fmt.Errorf("new round: %w", err)
	}
	spacing := float64(width-2*sideMargin) / float64(tankCount-1)
	if spacing < TankWidth {
		return nil, fmt.Errorf("%w: %d columns cannot fit %d tanks", ErrInvalidDimensions, width, tankCount)
	}

	seed := time.Now().UnixNano()
	if o.seed != nil {
		seed = *o.seed
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness

	terrain.SetSeed(rng.Int63())
	terrain.SetScroll(rng.Intn(width/2 + 1))
	if o.dx != nil {
		terrain.SetScroll(*o.dx)
	}
	if o.amplitude != nil {
		terrain.SetAmplitude(*o.amplitude)
	}
	terrain.Generate()

	r := &Round{
		width:         width,
		height:        height,
		terrain:       terrain,
		fixedWind:     o.wind,
		freePlacement: true,
		rng:           rng,
		log:           o.logger.With().Str("component", "round").Logger(),
		ev:            NewRoundLog(),
	}

	numbers := rng.Perm(tankCount)
	for i, n := range numbers {
		cx := int(math.Round(sideMargin + spacing*float64(i)))
		t := NewTank(n+1, cx-TankWidth/2, tankResetTop)
		t.DropFrom(tankResetTop, 0)
		r.tanks = append(r.tanks, t)
	}
	for n := 1; n <= tankCount; n++ {
		r.players = append(r.players, &Player{Number: n, Money: startingMoney})
	}
	// The first completed placement advances the turn to tanks[0].
	r.current = len(r.tanks) - 1
	r.changeWind()

	r.log.Info().
		Int("width", width).Int("height", height).
		Int("tanks", tankCount).Int64("seed", seed).
		Msg("round created")
	r.ev.Add(0, 0, "round", "created", fmt.Sprintf("%dx%d tanks=%d seed=%d", width, height, tankCount, seed), float64(tankCount))
	return r, nil
}

// Update advances the active phase to now (time since the round was created)
// and returns the resulting state. Only one phase runs per call.
func (r *Round) Update(now time.Duration) RoundState {
	if now > r.now {
		r.now = now
	}
	switch r.state {
	case StateTanksThrowing:
		r.updateTanks()
	case StateFlyingOfMissile:
		r.updateMissile()
	case StateExploding:
		r.updateExplosions()
	case StateSubsidence:
		r.updateSubsidence()
	}
	return r.state
}

func (r *Round) updateTanks() {
	placed := true
	for _, t := range r.tanks {
		if t.Dead() {
			continue
		}
		if !t.Step(r.now, r.terrain).Placed {
			placed = false
		}
	}
	if !placed {
		return
	}

	if !r.freePlacement {
		for _, t := range r.tanks {
			if t.Dead() || t.LastFall() == 0 {
				continue
			}
			dmg := int(math.Round(float64(t.LastFall()) * fallDamagePerPixel))
			t.TakeDamage(dmg)
			r.ev.Add(r.now, t.PlayerNumber, "damage", "fall", fmt.Sprintf("fell %d rows, -%d", t.LastFall(), dmg), float64(dmg))
		}
	}
	r.freePlacement = false
	r.iteration++

	var destroyed []*Tank
	for _, t := range r.tanks {
		if !t.Dead() && t.Health() == 0 {
			destroyed = append(destroyed, t)
		}
	}
	if len(destroyed) > 0 {
		shooter := r.CurrentTank()
		for _, t := range destroyed {
			t.dead = true
			r.explosions = append(r.explosions, NewExplosion(t.Center(), tankBlastRadius, r.now))
			r.ev.Add(r.now, t.PlayerNumber, "tank", "destroyed", fmt.Sprintf("P%d destroyed", t.PlayerNumber), 0)
			r.log.Info().Int("player", t.PlayerNumber).Msg("tank destroyed")
			// Every kill pays the current player, their own tank included.
			if shooter != nil {
				p := r.player(shooter.PlayerNumber)
				p.Money += killBounty
				p.Kills++
				r.ev.Add(r.now, p.Number, "money", "bounty", fmt.Sprintf("+%d for P%d", killBounty, t.PlayerNumber), float64(p.Money))
			}
		}
		r.setState(StateExploding)
		return
	}

	if r.aliveCount() <= 1 {
		r.setState(StateFinish)
		if w, ok := r.Winner(); ok {
			r.ev.Add(r.now, w, "round", "winner", fmt.Sprintf("P%d wins", w), 0)
			r.log.Info().Int("player", w).Msg("round won")
		} else {
			r.ev.Add(r.now, 0, "round", "draw", "no tanks left", 0)
			r.log.Info().Msg("round drawn")
		}
		return
	}

	r.nextTurn()
	r.changeWind()
	r.setState(StateAiming)
}

func (r *Round) updateMissile() {
	pos, hit := r.projectile.Advance(r.now, r.width, r.height, r.hitTest)
	if !hit {
		return
	}
	center := Vec2{float64(pos.X), float64(pos.Y)}
	r.explosions = append(r.explosions, NewExplosion(center, missileBlastRadius, r.now))
	r.ev.Add(r.now, r.PlayerNumber(), "shot", "impact", fmt.Sprintf("(%d,%d)", pos.X, pos.Y), float64(pos.Y))
	r.log.Debug().Int("x", pos.X).Int("y", pos.Y).Msg("missile impact")
	r.projectile = nil
	r.setState(StateExploding)
}

// hitTest collides with filled terrain or any live tank's silhouette.
func (r *Round) hitTest(x, y int) bool {
	if r.terrain.Query(x, y) {
		return true
	}
	p := Vec2{float64(x) + 0.5, float64(y) + 0.5}
	for _, t := range r.tanks {
		if !t.Dead() && t.Overlaps(p) {
			return true
		}
	}
	return false
}

func (r *Round) updateExplosions() {
	alive := false
	for _, e := range r.explosions {
		e.Update(r.now, r.terrain)
		if e.Alive() {
			alive = true
		}
	}
	if alive {
		return
	}
	r.applyBlastDamage()
	r.explosions = nil
	r.terrain.BeginSubsidence(r.now)
	r.setState(StateSubsidence)
}

// applyBlastDamage charges every live tank the summed overlap of the batch.
func (r *Round) applyBlastDamage() {
	for _, t := range r.tanks {
		if t.Dead() {
			continue
		}
		total := 0
		for _, e := range r.explosions {
			total += e.OverlapPercent(t.Rect())
		}
		if total == 0 {
			continue
		}
		t.TakeDamage(total)
		r.ev.Add(r.now, t.PlayerNumber, "damage", "blast", fmt.Sprintf("-%d (health %d)", total, t.Health()), float64(total))
	}
}

func (r *Round) updateSubsidence() {
	if !r.terrain.StepSubsidence(r.now) {
		return
	}
	for _, t := range r.tanks {
		if !t.Dead() {
			t.Drop(r.now)
		}
	}
	r.setState(StateTanksThrowing)
}

// AdjustAngle turns the current gun by delta degrees while aiming.
func (r *Round) AdjustAngle(delta float64) {
	if t := r.aimingTank(); t != nil {
		t.SetAngle(t.Angle() + delta)
	}
}

// AdjustPower changes the current gun power by delta while aiming.
func (r *Round) AdjustPower(delta float64) {
	if t := r.aimingTank(); t != nil {
		t.SetPower(t.Power() + delta)
	}
}

// Fire launches the current tank's missile. It reports false outside the
// aiming phase.
func (r *Round) Fire() bool {
	t := r.aimingTank()
	if t == nil {
		return false
	}
	r.projectile = t.Fire(Vec2{r.wind, G}, r.now)
	r.ev.Add(r.now, t.PlayerNumber, "shot", "fire",
		fmt.Sprintf("angle=%.0f power=%.0f wind=%.1f", t.Angle(), t.Power(), r.wind), t.Power())
	r.log.Debug().
		Int("player", t.PlayerNumber).
		Float64("angle", t.Angle()).Float64("power", t.Power()).Float64("wind", r.wind).
		Msg("fire")
	r.setState(StateFlyingOfMissile)
	return true
}

// Regenerate replaces the landscape with one grown from seed and drops the
// surviving tanks onto it again. Placement damage is skipped as for a new
// round. It has no effect once the round is finished.
func (r *Round) Regenerate(seed int64) {
	if r.state == StateFinish {
		return
	}
	r.terrain.SetSeed(seed)
	r.terrain.Generate()
	r.projectile = nil
	r.explosions = nil
	for _, t := range r.tanks {
		if !t.Dead() {
			t.DropFrom(tankResetTop, r.now)
		}
	}
	r.freePlacement = true
	r.ev.Add(r.now, 0, "round", "regenerate", fmt.Sprintf("seed=%d", seed), 0)
	r.setState(StateTanksThrowing)
}

func (r *Round) aimingTank() *Tank {
	if r.state != StateAiming {
		return nil
	}
	return r.CurrentTank()
}

func (r *Round) setState(s RoundState) {
	if s == r.state {
		return
	}
	r.log.Debug().Stringer("from", r.state).Stringer("to", s).Dur("at", r.now).Msg("state change")
	r.ev.Add(r.now, r.PlayerNumber(), "state", "change", fmt.Sprintf("%s -> %s", r.state, s), float64(s))
	r.state = s
}

// nextTurn moves to the next live tank after the current one, wrapping.
func (r *Round) nextTurn() {
	for i := 1; i <= len(r.tanks); i++ {
		j := (r.current + i) % len(r.tanks)
		if !r.tanks[j].Dead() {
			r.current = j
			r.ev.Add(r.now, r.tanks[j].PlayerNumber, "turn", "begin", fmt.Sprintf("P%d to play", r.tanks[j].PlayerNumber), 0)
			return
		}
	}
}

// changeWind draws a new wind in [-maxWind, maxWind] rounded to 0.1.
func (r *Round) changeWind() {
	if r.fixedWind != nil {
		r.wind = *r.fixedWind
		return
	}
	w := (r.rng.Float64()*2 - 1) * maxWind
	r.wind = math.Round(w*10) / 10
}

func (r *Round) aliveCount() int {
	n := 0
	for _, t := range r.tanks {
		if !t.Dead() {
			n++
		}
	}
	return n
}

func (r *Round) player(number int) *Player {
	return r.players[number-1]
}

// CurrentTank is the tank whose turn it is.
func (r *Round) CurrentTank() *Tank {
	if r.current < 0 || r.current >= len(r.tanks) {
		return nil
	}
	return r.tanks[r.current]
}

// PlayerNumber is the current player's number, or 1 with no tanks.
func (r *Round) PlayerNumber() int {
	if t := r.CurrentTank(); t != nil {
		return t.PlayerNumber
	}
	return 1
}

func (r *Round) GunAngle() float64 {
	if t := r.CurrentTank(); t != nil {
		return t.Angle()
	}
	return 0
}

func (r *Round) GunPower() float64 {
	if t := r.CurrentTank(); t != nil {
		return t.Power()
	}
	return 0
}

func (r *Round) Health() int {
	if t := r.CurrentTank(); t != nil {
		return t.Health()
	}
	return 0
}

// WindPower is the horizontal acceleration applied to missiles this turn.
func (r *Round) WindPower() float64 { return r.wind }

// MissileSpeed is the in-flight missile's speed, or 0.
func (r *Round) MissileSpeed() float64 {
	if r.projectile == nil {
		return 0
	}
	return r.projectile.Velocity().Len()
}

func (r *Round) Terrain() *Terrain        { return r.terrain }
func (r *Round) Explosions() []*Explosion { return r.explosions }
func (r *Round) Tanks() []*Tank           { return r.tanks }
func (r *Round) Projectile() *Projectile  { return r.projectile }
func (r *Round) State() RoundState        { return r.state }
func (r *Round) Players() []*Player       { return r.players }
func (r *Round) Log() *RoundLog           { return r.ev }
func (r *Round) Now() time.Duration       { return r.now }
func (r *Round) Bounds() image.Rectangle  { return r.terrain.Bounds() }
func (r *Round) Iteration() int           { return r.iteration }

// Winner returns the last surviving player once the round is finished.
func (r *Round) Winner() (int, bool) {
	if r.state != StateFinish {
		return 0, false
	}
	for _, t := range r.tanks {
		if !t.Dead() {
			return t.PlayerNumber, true
		}
	}
	return 0, false
}
