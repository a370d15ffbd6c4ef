package view

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Scorched-Earth/internal/game"
)

var (
	colSky     = color.RGBA{R: 24, G: 28, B: 48, A: 255}
	colGround  = color.RGBA{R: 150, G: 110, B: 60, A: 255}
	colText    = color.RGBA{R: 232, G: 224, B: 200, A: 255}
	colDimText = color.RGBA{R: 150, G: 140, B: 120, A: 255}
	colWreck   = color.RGBA{R: 60, G: 56, B: 52, A: 255}
	colMissile = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	playerColors = []color.RGBA{
		{R: 220, G: 60, B: 60, A: 255},
		{R: 70, G: 130, B: 230, A: 255},
		{R: 80, G: 200, B: 90, A: 255},
		{R: 230, G: 200, B: 60, A: 255},
		{R: 200, G: 90, B: 220, A: 255},
		{R: 60, G: 210, B: 210, A: 255},
		{R: 240, G: 140, B: 50, A: 255},
		{R: 200, G: 200, B: 200, A: 255},
	}

	hudFace = text.NewGoXFace(basicfont.Face7x13)
)

// statusLifetime is how long a status message stays in the HUD.
const statusLifetime = 3 * time.Second

func playerColor(n int) color.RGBA {
	if n < 1 {
		return colDimText
	}
	return playerColors[(n-1)%len(playerColors)]
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}

// Draw renders the playfield, HUD and event panel.
func (g *Game) Draw(screen *ebiten.Image) {
	field := g.Playfield()
	vector.FillRect(screen, 0, 0, float32(field.Dx()), float32(field.Dy()), colSky, false)

	g.drawTerrain(screen)
	for _, t := range g.round.Tanks() {
		drawTank(screen, t)
	}
	if p := g.round.Projectile(); p != nil {
		pos := p.Position()
		vector.FillCircle(screen, float32(pos.X), float32(pos.Y), 2, colMissile, true)
	}
	for _, e := range g.round.Explosions() {
		drawExplosion(screen, e)
	}

	g.drawHUD(screen)
	g.events.Draw(screen, field.Dx(), g.height, hudFace)
}

// drawTerrain re-uploads only the region the round changed since the
// previous frame.
func (g *Game) drawTerrain(screen *ebiten.Image) {
	terrain := g.round.Terrain()
	w, h := terrain.Width(), terrain.Height()
	if g.terrainImg == nil || g.terrainImg.Bounds().Dx() != w || g.terrainImg.Bounds().Dy() != h {
		g.terrainImg = ebiten.NewImage(w, h)
		terrain.MarkChanged()
	}
	if dirty, ok := terrain.TakeDirty(); ok {
		g.raster = terrain.Raster(g.raster)
		g.pixels = terrainPixels(g.raster, w, dirty, g.pixels)
		g.terrainImg.SubImage(dirty).(*ebiten.Image).WritePixels(g.pixels)
	}
	screen.DrawImage(g.terrainImg, nil)
}

// terrainPixels converts the occupancy cells inside r into RGBA pixels,
// ground for filled cells and transparent elsewhere. The raster is
// row-major with the given width; r is clipped to it.
func terrainPixels(raster []byte, width int, r image.Rectangle, dst []byte) []byte {
	if width <= 0 {
		return dst[:0]
	}
	r = r.Intersect(image.Rect(0, 0, width, len(raster)/width))
	n := r.Dx() * r.Dy() * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := raster[y*width : (y+1)*width]
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] != 0 {
				dst[i], dst[i+1], dst[i+2], dst[i+3] = colGround.R, colGround.G, colGround.B, colGround.A
			} else {
				dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
			}
			i += 4
		}
	}
	return dst
}

func drawTank(screen *ebiten.Image, t *game.Tank) {
	clr := playerColor(t.PlayerNumber)
	if t.Dead() {
		clr = colWreck
	}
	r := t.Rect()
	x, y := float32(r.Min.X), float32(r.Min.Y)

	// Hull, turret dome, then the barrel from the pivot.
	vector.FillRect(screen, x+2, y+8, game.TankWidth-4, game.TankHeight-8, clr, false)
	vector.FillCircle(screen, x+game.TankWidth/2, y+9, 8, clr, true)
	if t.Dead() {
		return
	}
	pivot, tip := t.GunPivot(), t.GunTip()
	vector.StrokeLine(screen, float32(pivot.X), float32(pivot.Y), float32(tip.X), float32(tip.Y), 3, clr, true)

	// Health bar.
	frac := float32(t.Health()) / game.MaxHealth
	vector.FillRect(screen, x, y-6, game.TankWidth, 3, color.RGBA{R: 40, G: 40, B: 40, A: 200}, false)
	vector.FillRect(screen, x, y-6, game.TankWidth*frac, 3, color.RGBA{R: 90, G: 220, B: 90, A: 255}, false)
}

func drawExplosion(screen *ebiten.Image, e *game.Explosion) {
	a := e.Opacity()
	if a <= 0 {
		return
	}
	c := e.Center
	clr := color.RGBA{R: uint8(255 * a), G: uint8(160 * a), B: uint8(40 * a), A: uint8(255 * a)}
	vector.FillCircle(screen, float32(c.X), float32(c.Y), float32(e.Radius()), clr, true)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	r := g.round
	lines := []string{
		fmt.Sprintf("Player %d   angle %+.1f   power %.1f   health %d",
			r.PlayerNumber(), r.GunAngle(), r.GunPower(), r.Health()),
		fmt.Sprintf("wind %+.1f   missile %.0f px/s   %s   %s",
			r.WindPower(), r.MissileSpeed(), r.State(), speedLabel(g.simSpeed)),
	}
	if r.State() == game.StateFinish {
		if w, ok := r.Winner(); ok {
			lines = append(lines, fmt.Sprintf("Player %d wins. R for a new round", w))
		} else {
			lines = append(lines, "Draw. R for a new round")
		}
	}
	if g.status != "" && g.now-g.statusT < statusLifetime {
		lines = append(lines, g.status)
	}

	const lineH = 15
	vector.FillRect(screen, 4, 4, 420, float32(len(lines)*lineH+6), color.RGBA{A: 150}, false)
	for i, l := range lines {
		clr := colText
		if i == 0 {
			clr = playerColor(r.PlayerNumber())
		}
		drawText(screen, hudFace, l, 10, 7+i*lineH, clr)
	}
}
