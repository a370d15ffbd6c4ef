// Package sound plays the round's sound effects through the system speaker.
package sound

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

const sampleRate = beep.SampleRate(44100)

const (
	fireDuration      = 180 * time.Millisecond
	explosionDuration = 900 * time.Millisecond
	thudDuration      = 120 * time.Millisecond
)

// Engine mixes effects into a single speaker stream. All Play methods are
// no-ops until Initialize succeeds, so the game runs fine without audio.
type Engine struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	log         zerolog.Logger
}

// NewEngine creates an engine at the given master volume (0..1).
func NewEngine(volume float64, log zerolog.Logger) *Engine {
	return &Engine{
		mixer:  &beep.Mixer{},
		volume: math.Max(0, math.Min(1, volume)),
		log:    log.With().Str("component", "sound").Logger(),
	}
}

// Initialize opens the speaker. Calling it again is a no-op.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(e.mixer)
	e.initialized = true
	e.log.Debug().Int("rate", int(sampleRate)).Msg("speaker ready")
	return nil
}

// Close silences everything and releases the speaker.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}
	speaker.Clear()
	e.mixer.Clear()
	speaker.Close()
	e.initialized = false
}

// PlayFire plays the short rising crack of a gun.
func (e *Engine) PlayFire() {
	e.play(FireSound())
}

// PlayExplosion plays a noise burst whose length grows with the blast radius.
func (e *Engine) PlayExplosion(radius float64) {
	e.play(ExplosionSound(radius))
}

// PlayThud plays the low knock of a tank touching down.
func (e *Engine) PlayThud() {
	e.play(ThudSound())
}

func (e *Engine) play(s beep.Streamer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized || s == nil {
		return
	}
	speaker.Lock()
	e.mixer.Add(withVolume(s, e.volume))
	speaker.Unlock()
}

// FireSound is a 180 ms downward sweep with a fast decay.
func FireSound() beep.Streamer {
	return beep.Take(sampleRate.N(fireDuration), &sweep{
		from:  900,
		to:    180,
		n:     sampleRate.N(fireDuration),
		level: 0.35,
	})
}

// ExplosionSound is decaying low-passed noise, longer for bigger blasts.
func ExplosionSound(radius float64) beep.Streamer {
	d := time.Duration(float64(explosionDuration) * math.Max(0.4, math.Min(2, radius/50)))
	n := sampleRate.N(d)
	return beep.Take(n, &noiseBurst{
		n:     n,
		level: 0.6,
		rng:   rand.New(rand.NewSource(int64(n))), // #nosec G404 -- audio texture
	})
}

// ThudSound is a short 70 Hz sine.
func ThudSound() beep.Streamer {
	sine, err := generators.SineTone(sampleRate, 70)
	if err != nil {
		return nil
	}
	return withVolume(beep.Take(sampleRate.N(thudDuration), sine), 0.5)
}

// withVolume scales s linearly; vol <= 0 silences it.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// sweep is a sine whose frequency slides linearly from `from` to `to` over n
// samples under an exponential decay.
type sweep struct {
	from, to float64
	n        int
	level    float64
	pos      int
	phase    float64
}

func (s *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		p := math.Min(1, float64(s.pos)/float64(s.n))
		freq := s.from + (s.to-s.from)*p
		s.phase += 2 * math.Pi * freq / float64(sampleRate)
		v := s.level * math.Exp(-4*p) * math.Sin(s.phase)
		samples[i][0], samples[i][1] = v, v
		s.pos++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// noiseBurst is white noise through a one-pole low-pass, decaying over n
// samples.
type noiseBurst struct {
	n     int
	level float64
	rng   *rand.Rand
	pos   int
	prev  float64
}

func (b *noiseBurst) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		p := math.Min(1, float64(b.pos)/float64(b.n))
		b.prev += 0.08 * (b.rng.Float64()*2 - 1 - b.prev)
		v := math.Max(-1, math.Min(1, b.level*math.Pow(1-p, 2)*b.prev*4))
		samples[i][0], samples[i][1] = v, v
		b.pos++
	}
	return len(samples), true
}

func (b *noiseBurst) Err() error { return nil }
