package game

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	perlin "github.com/aquilax/go-perlin"
)

// G is the gravitational acceleration shared by missiles, tanks and subsidence.
const G = 9.80665

const (
	noiseOctaves     = 4
	noiseAlpha       = 2.0 // amplitude divisor per octave
	noiseBeta        = 2.0 // frequency multiplier per octave
	noiseBaseFreqMul = 2.0 // base frequency is noiseBaseFreqMul / width

	// subsidenceTimeScale converts elapsed seconds into discrete gravity passes:
	// passes(t) = round(G · t² · subsidenceTimeScale).
	subsidenceTimeScale = 5.0
)

// ErrInvalidDimensions is returned for zero or unrepresentable playfield sizes.
var ErrInvalidDimensions = errors.New("invalid terrain dimensions")

// Terrain is the destructible ground: a row-major occupancy grid where a
// non-zero byte is a filled cell.
type Terrain struct {
	width  int
	height int
	cells  []uint8

	seed      int64
	amplitude float64
	dx        int

	// dirty covers every cell modified since the last TakeDirty.
	dirty image.Rectangle

	sub subsidence
}

// subsidence is the in-progress gravity settling state.
type subsidence struct {
	running bool
	start   time.Duration
	passes  int
	// [left, right) columns still worth scanning.
	left, right int
}

// NewTerrain allocates an empty width×height grid.
func NewTerrain(width, height int) (*Terrain, error) {
	if width <= 0 || height <= 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %dx%d (each side must be in 1..%d)",
			ErrInvalidDimensions, width, height, math.MaxInt32)
	}
	return &Terrain{
		width:     width,
		height:    height,
		cells:     make([]uint8, width*height),
		amplitude: float64(height) / 2,
	}, nil
}

func (t *Terrain) Width() int  { return t.width }
func (t *Terrain) Height() int { return t.height }

// Bounds returns the playfield rectangle.
func (t *Terrain) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.width, t.height)
}

// Seed returns the noise seed used by the next Generate.
func (t *Terrain) Seed() int64 { return t.seed }

// SetSeed changes the noise seed. Existing cells are untouched until Generate.
func (t *Terrain) SetSeed(seed int64) { t.seed = seed }

// Amplitude returns the vertical noise scale in pixels.
func (t *Terrain) Amplitude() float64 { return t.amplitude }

// SetAmplitude changes the vertical noise scale for the next Generate.
func (t *Terrain) SetAmplitude(a float64) { t.amplitude = a }

// Scroll returns the horizontal noise offset.
func (t *Terrain) Scroll() int { return t.dx }

// SetScroll changes the horizontal noise offset for the next Generate.
func (t *Terrain) SetScroll(dx int) { t.dx = dx }

// Generate overwrites every column with a fresh noise horizon: cells above the
// horizon row are emptied, cells from it down to the bottom are filled.
func (t *Terrain) Generate() {
	noise := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, t.seed)
	freq := noiseBaseFreqMul / float64(t.width)
	center := float64(t.height) / 2

	for x := 0; x < t.width; x++ {
		sx := float64(x+t.dx) * freq
		y := int(math.Round(center + noise.Noise1D(sx)*t.amplitude))
		y = max(0, min(y, t.height))
		for row := 0; row < t.height; row++ {
			var v uint8
			if row >= y {
				v = 1
			}
			t.cells[row*t.width+x] = v
		}
	}
	t.sub = subsidence{}
	t.markDirty(t.Bounds())
}

// Query reports whether (x, y) is filled. Out-of-bounds cells are empty.
func (t *Terrain) Query(x, y int) bool {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return false
	}
	return t.cells[y*t.width+x] != 0
}

// Span returns a mutable view of up to length cells of row y starting at x,
// clamped to the right edge. It returns nil when (x, y) is outside the grid or
// length is not positive. The span is reported dirty.
func (t *Terrain) Span(x, y, length int) []uint8 {
	if x < 0 || y < 0 || x >= t.width || y >= t.height || length <= 0 {
		return nil
	}
	length = min(length, t.width-x)
	t.markDirty(image.Rect(x, y, x+length, y+1))
	i := y*t.width + x
	return t.cells[i : i+length]
}

// ClearSpan empties a row segment (see Span) and returns how many filled
// cells it removed.
func (t *Terrain) ClearSpan(x, y, length int) int {
	cleared := 0
	span := t.Span(x, y, length)
	for i, c := range span {
		if c != 0 {
			cleared++
			span[i] = 0
		}
	}
	return cleared
}

// FilledIn counts filled cells of row y in [x, x+length). Cells outside the
// grid count as empty.
func (t *Terrain) FilledIn(x, y, length int) int {
	if y < 0 || y >= t.height {
		return 0
	}
	lo := max(x, 0)
	hi := min(x+length, t.width)
	n := 0
	row := t.cells[y*t.width : (y+1)*t.width]
	for i := lo; i < hi; i++ {
		if row[i] != 0 {
			n++
		}
	}
	return n
}

// Changed reports whether any cell was modified since the last TakeDirty.
func (t *Terrain) Changed() bool {
	return !t.dirty.Empty()
}

// MarkChanged flags the whole grid for re-rasterization.
func (t *Terrain) MarkChanged() {
	t.markDirty(t.Bounds())
}

// TakeDirty returns and resets the modified region.
func (t *Terrain) TakeDirty() (image.Rectangle, bool) {
	r := t.dirty
	t.dirty = image.Rectangle{}
	return r, !r.Empty()
}

func (t *Terrain) markDirty(r image.Rectangle) {
	t.dirty = t.dirty.Union(r.Intersect(t.Bounds()))
}

// Raster copies the occupancy grid (one byte per cell, row-major) into dst,
// growing it as needed, and returns the filled slice.
func (t *Terrain) Raster(dst []byte) []byte {
	if cap(dst) < len(t.cells) {
		dst = make([]byte, len(t.cells))
	}
	dst = dst[:len(t.cells)]
	copy(dst, t.cells)
	return dst
}

// Subsiding reports whether a gravity settling run is in progress.
func (t *Terrain) Subsiding() bool {
	return t.sub.running
}

// BeginSubsidence arms gravity settling at now. Re-arming a running
// subsidence has no effect.
func (t *Terrain) BeginSubsidence(now time.Duration) {
	if t.sub.running {
		return
	}
	t.sub = subsidence{
		running: true,
		start:   now,
		left:    0,
		right:   t.width,
	}
}

// StepSubsidence catches gravity up to now and reports true once the terrain
// is at rest. It is a no-op returning false when subsidence is not running.
//
// Each discrete pass moves every unsupported filled cell down exactly one row,
// so floating chunks fall row by row with accelerating speed.
func (t *Terrain) StepSubsidence(now time.Duration) bool {
	if !t.sub.running {
		return false
	}
	secs := (now - t.sub.start).Seconds()
	target := int(math.Round(G * secs * secs * subsidenceTimeScale))
	for t.sub.passes < target {
		t.sub.passes++
		if !t.gravityPass() {
			t.sub.running = false
			return true
		}
	}
	return false
}

// gravityPass runs one discrete settling pass bottom-to-top and reports
// whether anything moved.
func (t *Terrain) gravityPass() bool {
	w := t.width
	minX, maxX := t.sub.right, t.sub.left-1
	minY, maxY := t.height, -1
	for y := t.height - 1; y >= 1; y-- {
		below := t.cells[y*w : (y+1)*w]
		above := t.cells[(y-1)*w : y*w]
		for x := t.sub.left; x < t.sub.right; x++ {
			if below[x] != 0 || above[x] == 0 {
				continue
			}
			below[x], above[x] = above[x], 0
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y-1), max(maxY, y)
		}
	}
	if maxX < minX {
		return false
	}

	// Columns settle independently, so only columns that moved can move again.
	t.sub.left, t.sub.right = minX, maxX+1
	t.markDirty(image.Rect(minX, minY, maxX+1, maxY+1))
	return true
}
