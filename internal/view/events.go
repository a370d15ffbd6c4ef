package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Scorched-Earth/internal/game"
)

const (
	panelWidth      = 280
	panelMaxEntries = 60
	panelLineHeight = 14
)

// EventPanel is a ring buffer of recent round events rendered beside the
// playfield.
type EventPanel struct {
	entries []game.RoundLogEntry
	head    int
	count   int
}

func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]game.RoundLogEntry, panelMaxEntries),
	}
}

// Add appends an entry, dropping the oldest when full.
func (p *EventPanel) Add(e game.RoundLogEntry) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % panelMaxEntries
	if p.count < panelMaxEntries {
		p.count++
	}
}

// Clear empties the panel.
func (p *EventPanel) Clear() {
	p.head, p.count = 0, 0
}

// Recent returns entries in chronological order (oldest first).
func (p *EventPanel) Recent() []game.RoundLogEntry {
	result := make([]game.RoundLogEntry, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + panelMaxEntries) % panelMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

// Draw renders the panel at panelX, newest entry at the bottom.
func (p *EventPanel) Draw(screen *ebiten.Image, panelX, panelH int, face text.Face) {
	vector.FillRect(screen, float32(panelX), 0, panelWidth, float32(panelH), color.RGBA{R: 14, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 90, G: 70, B: 40, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, panelWidth, 18, color.RGBA{R: 34, G: 26, B: 18, A: 255}, false)
	drawText(screen, face, "EVENTS", panelX+8, 3, colText)

	entries := p.Recent()
	maxVisible := (panelH - 26) / panelLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	const highlight = 3
	y := 24
	for i, e := range entries {
		clr := colDimText
		if i >= len(entries)-highlight {
			vector.FillRect(screen, float32(panelX+2), float32(y-1), panelWidth-4, panelLineHeight, color.RGBA{R: 40, G: 32, B: 22, A: 160}, false)
			clr = colText
		}
		if e.Player > 0 {
			vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 6, playerColor(e.Player), false)
		}
		drawText(screen, face, eventLine(e), panelX+12, y, clr)
		y += panelLineHeight
	}
}

// eventLine is the compact panel form of an entry.
func eventLine(e game.RoundLogEntry) string {
	who := "--"
	if e.Player > 0 {
		who = fmt.Sprintf("P%d", e.Player)
	}
	line := fmt.Sprintf("%5.1f %s %s %s", e.Time.Seconds(), who, e.Key, e.Value)
	const maxChars = (panelWidth - 16) / 7
	if runes := []rune(line); len(runes) > maxChars {
		line = string(runes[:maxChars-1]) + "~"
	}
	return line
}
