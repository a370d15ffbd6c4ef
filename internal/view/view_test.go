package view

import (
	"image"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Garsondee/Scorched-Earth/internal/game"
)

type fakeSounds struct {
	fires      int
	explosions []float64
	thuds      int
}

func (f *fakeSounds) PlayFire()               { f.fires++ }
func (f *fakeSounds) PlayExplosion(r float64) { f.explosions = append(f.explosions, r) }
func (f *fakeSounds) PlayThud()               { f.thuds++ }

func TestSpeedSteps(t *testing.T) {
	if got := faster(1); got != 2 {
		t.Fatalf("faster(1) = %v, want 2", got)
	}
	if got := faster(4); got != 4 {
		t.Fatalf("faster(4) = %v, want 4 (top)", got)
	}
	if got := slower(1); got != 0.5 {
		t.Fatalf("slower(1) = %v, want 0.5", got)
	}
	if got := slower(0); got != 0 {
		t.Fatalf("slower(0) = %v, want 0", got)
	}
	if got := faster(0.75); got != 1 {
		t.Fatalf("faster(0.75) = %v, want 1", got)
	}
}

func TestSpeedLabel(t *testing.T) {
	cases := map[float64]string{0: "PAUSED", 0.5: "0.5x", 1: "1x", 4: "4x"}
	for in, want := range cases {
		if got := speedLabel(in); got != want {
			t.Errorf("speedLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTerrainPixels(t *testing.T) {
	// 4x3 grid with the bottom row filled and one extra cell at (1,1).
	raster := []byte{
		0, 0, 0, 0,
		0, 1, 0, 0,
		1, 1, 1, 1,
	}
	px := terrainPixels(raster, 4, image.Rect(1, 1, 3, 3), nil)
	if len(px) != 2*2*4 {
		t.Fatalf("len = %d, want 16", len(px))
	}
	filled := []bool{true, false, true, true}
	for i, f := range filled {
		a := px[i*4+3]
		if f && a != colGround.A {
			t.Errorf("pixel %d alpha = %d, want ground", i, a)
		}
		if !f && a != 0 {
			t.Errorf("pixel %d alpha = %d, want transparent", i, a)
		}
	}
}

func TestTerrainPixelsClipsAndReuses(t *testing.T) {
	raster := make([]byte, 10*10)
	buf := make([]byte, 0, 1024)
	px := terrainPixels(raster, 10, image.Rect(-5, 8, 20, 30), buf)
	// Clipped to x 0..10, y 8..10.
	if len(px) != 10*2*4 {
		t.Fatalf("len = %d, want 80", len(px))
	}
	if &px[0] != &buf[:1][0] {
		t.Fatal("expected the destination buffer to be reused")
	}
	if got := terrainPixels(raster, 0, image.Rect(0, 0, 5, 5), buf); len(got) != 0 {
		t.Fatalf("zero width gave %d bytes", len(got))
	}
}

func TestEventPanelRing(t *testing.T) {
	p := NewEventPanel()
	for i := 0; i < panelMaxEntries+5; i++ {
		p.Add(game.RoundLogEntry{Time: time.Duration(i) * time.Second, Key: "k"})
	}
	got := p.Recent()
	if len(got) != panelMaxEntries {
		t.Fatalf("len = %d, want %d", len(got), panelMaxEntries)
	}
	if got[0].Time != 5*time.Second {
		t.Fatalf("oldest = %v, want 5s", got[0].Time)
	}
	if last := got[len(got)-1].Time; last != time.Duration(panelMaxEntries+4)*time.Second {
		t.Fatalf("newest = %v", last)
	}
	p.Clear()
	if len(p.Recent()) != 0 {
		t.Fatal("Clear left entries behind")
	}
}

func TestEventLineTruncates(t *testing.T) {
	e := game.RoundLogEntry{Player: 3, Key: "fire", Value: "an extremely long value that cannot possibly fit in the panel"}
	line := eventLine(e)
	if len(line) > (panelWidth-16)/7 {
		t.Fatalf("line too long: %q", line)
	}
	if line[len(line)-1] != '~' {
		t.Fatalf("expected truncation marker, got %q", line)
	}
}

func TestEventLineTruncatesByRune(t *testing.T) {
	e := game.RoundLogEntry{Player: 1, Key: "note", Value: strings.Repeat("é", 60)}
	line := eventLine(e)
	if !utf8.ValidString(line) {
		t.Fatalf("truncation split a rune: %q", line)
	}
	if n := utf8.RuneCountInString(line); n != (panelWidth-16)/7 {
		t.Fatalf("line has %d runes, want %d", n, (panelWidth-16)/7)
	}
}

func TestCueTrackerPlaysEachEntryOnce(t *testing.T) {
	log := game.NewRoundLog()
	s := &fakeSounds{}
	c := newCueTracker(s)

	log.Add(0, 1, "shot", "fire", "", 0)
	log.Add(time.Second, 1, "shot", "impact", "(1,2)", 2)
	log.Add(time.Second, 2, "state", "change", "", 0)
	if got := c.Consume(log); len(got) != 3 {
		t.Fatalf("first consume returned %d entries, want 3", len(got))
	}
	if s.fires != 1 || len(s.explosions) != 1 || s.explosions[0] != missileBlast {
		t.Fatalf("sounds after first consume: %+v", s)
	}

	if got := c.Consume(log); len(got) != 0 {
		t.Fatalf("second consume returned %d entries, want 0", len(got))
	}

	log.Add(2*time.Second, 2, "tank", "destroyed", "", 0)
	log.Add(3*time.Second, 1, "damage", "fall", "", 5)
	c.Consume(log)
	if len(s.explosions) != 2 || s.explosions[1] != tankBlast || s.thuds != 1 {
		t.Fatalf("sounds after second batch: %+v", s)
	}
	if s.fires != 1 {
		t.Fatalf("fire replayed: %d", s.fires)
	}
}

func TestCueTrackerWithoutSounds(t *testing.T) {
	log := game.NewRoundLog()
	log.Add(0, 1, "shot", "fire", "", 0)
	c := newCueTracker(nil)
	if got := c.Consume(log); len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
}
