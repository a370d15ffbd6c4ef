package view

import (
	"github.com/Garsondee/Scorched-Earth/internal/game"
)

const (
	missileBlast = 50
	tankBlast    = 40
)

// cueTracker turns new round log entries into sound effects.
type cueTracker struct {
	sounds Sounds
	seen   int
}

func newCueTracker(s Sounds) *cueTracker {
	return &cueTracker{sounds: s}
}

// Consume plays the cues for entries added since the last call and returns
// those entries.
func (c *cueTracker) Consume(log *game.RoundLog) []game.RoundLogEntry {
	fresh := log.Since(c.seen)
	c.seen = log.Len()
	if c.sounds == nil {
		return fresh
	}
	for _, e := range fresh {
		switch {
		case e.Category == "shot" && e.Key == "fire":
			c.sounds.PlayFire()
		case e.Category == "shot" && e.Key == "impact":
			c.sounds.PlayExplosion(missileBlast)
		case e.Category == "tank" && e.Key == "destroyed":
			c.sounds.PlayExplosion(tankBlast)
		case e.Category == "damage" && e.Key == "fall":
			c.sounds.PlayThud()
		}
	}
	return fresh
}
