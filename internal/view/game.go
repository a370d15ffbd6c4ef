// Package view runs a round inside an ebiten window.
package view

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Scorched-Earth/internal/game"
)

const (
	// Aim change per held frame.
	angleStep = 0.5
	powerStep = 0.5
)

// speeds are the selectable simulation speed multipliers.
var speeds = []float64{0, 0.5, 1, 2, 4}

// Sounds is the audio sink for round events.
type Sounds interface {
	PlayFire()
	PlayExplosion(radius float64)
	PlayThud()
}

// Options configures a Game.
type Options struct {
	Width  int
	Height int
	Tanks  int
	// Seed for the first round; 0 picks one from the clock.
	Seed   int64
	Speed  float64
	Log    zerolog.Logger
	Sounds Sounds
}

// Game adapts a game.Round to ebiten's Update/Draw loop.
type Game struct {
	opts  Options
	round *game.Round
	rng   *rand.Rand
	log   zerolog.Logger

	// now is the round clock; it advances by simSpeed × frame time.
	now      time.Duration
	simSpeed float64

	// Terrain raster, re-uploaded only where the terrain changed.
	terrainImg *ebiten.Image
	raster     []byte
	pixels     []byte

	events  *EventPanel
	cues    *cueTracker
	status  string
	statusT time.Duration

	width, height int
}

// New creates the window model and its first round.
func New(opts Options) (*Game, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		opts:     opts,
		rng:      rand.New(rand.NewSource(seed)), // #nosec G404 -- gameplay only
		log:      opts.Log.With().Str("component", "view").Logger(),
		simSpeed: opts.Speed,
		events:   NewEventPanel(),
		width:    opts.Width + panelWidth,
		height:   opts.Height,
	}
	if err := g.newRound(seed); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) newRound(seed int64) error {
	r, err := game.NewRound(g.opts.Width, g.opts.Height, g.opts.Tanks,
		game.WithSeed(seed), game.WithLogger(g.opts.Log))
	if err != nil {
		return fmt.Errorf("start round: %w", err)
	}
	g.round = r
	g.now = 0
	g.cues = newCueTracker(g.opts.Sounds)
	g.events.Clear()
	// Full upload on the next Draw.
	r.Terrain().MarkChanged()
	g.log.Info().Int64("seed", seed).Msg("new round")
	return nil
}

// Update advances the round clock and handles input.
func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}
	if g.simSpeed > 0 {
		g.now += time.Duration(g.simSpeed * float64(time.Second) / float64(ebiten.TPS()))
		g.round.Update(g.now)
	}

	for _, e := range g.cues.Consume(g.round.Log()) {
		g.events.Add(e)
	}
	return nil
}

// handleInput maps keys to round commands (edge-triggered except aiming).
func (g *Game) handleInput() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.round.AdjustAngle(-angleStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.round.AdjustAngle(angleStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.round.AdjustPower(powerStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.round.AdjustPower(-powerStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.round.Fire()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) {
		g.round.Regenerate(g.rng.Int63())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && g.round.State() == game.StateFinish {
		if err := g.newRound(g.rng.Int63()); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyLog()
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		g.simSpeed = slower(g.simSpeed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		g.simSpeed = faster(g.simSpeed)
	}
	return nil
}

// copyLog puts the round's event log on the system clipboard.
func (g *Game) copyLog() {
	if err := clipboard.WriteAll(g.round.Log().Format()); err != nil {
		g.log.Warn().Err(err).Msg("clipboard copy failed")
		g.setStatus("clipboard unavailable")
		return
	}
	g.setStatus(fmt.Sprintf("copied %d events", g.round.Log().Len()))
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusT = g.now
}

// Layout keeps the playfield at native resolution next to the event panel.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Playfield is the round's area in screen pixels.
func (g *Game) Playfield() image.Rectangle {
	return image.Rect(0, 0, g.opts.Width, g.opts.Height)
}

// slower returns the next lower speed step.
func slower(cur float64) float64 {
	for i := len(speeds) - 1; i >= 0; i-- {
		if speeds[i] < cur {
			return speeds[i]
		}
	}
	return speeds[0]
}

// faster returns the next higher speed step.
func faster(cur float64) float64 {
	for _, s := range speeds {
		if s > cur {
			return s
		}
	}
	return speeds[len(speeds)-1]
}

func speedLabel(s float64) string {
	switch {
	case s == 0:
		return "PAUSED"
	case s == float64(int(s)):
		return fmt.Sprintf("%dx", int(s))
	default:
		return fmt.Sprintf("%.1fx", s)
	}
}
