package game

import (
	"fmt"
	"strings"
	"time"
)

// RoundLogEntry is one recorded round event.
type RoundLogEntry struct {
	Time     time.Duration
	Player   int     // player number, 0 for round-wide events
	Category string  // round, state, turn, shot, damage, tank, money
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[  12.350s] P2   shot      impact           (412,233)
func (e RoundLogEntry) String() string {
	who := "--"
	if e.Player > 0 {
		who = fmt.Sprintf("P%d", e.Player)
	}
	return fmt.Sprintf("[%9.3fs] %-4s %-9s %-16s %s",
		e.Time.Seconds(), who, e.Category, e.Key, e.Value)
}

// RoundLog collects structured events for one round. It is unbounded and
// machine-readable; the on-screen event panel keeps its own short tail.
type RoundLog struct {
	entries []RoundLogEntry
}

func NewRoundLog() *RoundLog {
	return &RoundLog{}
}

// Add records a new entry.
func (rl *RoundLog) Add(at time.Duration, player int, category, key, value string, numVal float64) {
	rl.entries = append(rl.entries, RoundLogEntry{
		Time:     at,
		Player:   player,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Len is the number of recorded entries.
func (rl *RoundLog) Len() int { return len(rl.entries) }

// Entries returns all recorded entries.
func (rl *RoundLog) Entries() []RoundLogEntry {
	return rl.entries
}

// Since returns entries recorded after the first n, for consumers that poll
// for new events each frame.
func (rl *RoundLog) Since(n int) []RoundLogEntry {
	if n >= len(rl.entries) {
		return nil
	}
	return rl.entries[max(n, 0):]
}

// LogQuery selects round log entries. Zero fields match anything: Player 0
// matches every player (including round-wide events) and a zero To leaves the
// time window open-ended.
type LogQuery struct {
	Player   int
	Category string
	Key      string
	Contains string // substring of Value
	From, To time.Duration
}

func (q LogQuery) matches(e RoundLogEntry) bool {
	switch {
	case q.Player != 0 && e.Player != q.Player:
		return false
	case q.Category != "" && e.Category != q.Category:
		return false
	case q.Key != "" && e.Key != q.Key:
		return false
	case e.Time < q.From || (q.To > 0 && e.Time > q.To):
		return false
	}
	return q.Contains == "" || strings.Contains(e.Value, q.Contains)
}

// Select returns the matching entries in recording order.
func (rl *RoundLog) Select(q LogQuery) []RoundLogEntry {
	var out []RoundLogEntry
	for _, e := range rl.entries {
		if q.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Count is len(Select(q)) without the allocation.
func (rl *RoundLog) Count(q LogQuery) int {
	n := 0
	for _, e := range rl.entries {
		if q.matches(e) {
			n++
		}
	}
	return n
}

// Last returns the most recent matching entry.
func (rl *RoundLog) Last(q LogQuery) (RoundLogEntry, bool) {
	for i := len(rl.entries) - 1; i >= 0; i-- {
		if q.matches(rl.entries[i]) {
			return rl.entries[i], true
		}
	}
	return RoundLogEntry{}, false
}

// Any reports whether at least one entry matches.
func (rl *RoundLog) Any(q LogQuery) bool {
	_, ok := rl.Last(q)
	return ok
}

// Turns splits the log at every turn start. Entries before the first turn
// (creation, initial placement) form turn 0.
func (rl *RoundLog) Turns() [][]RoundLogEntry {
	turns := [][]RoundLogEntry{nil}
	for _, e := range rl.entries {
		if e.Category == "turn" && e.Key == "begin" {
			turns = append(turns, nil)
		}
		turns[len(turns)-1] = append(turns[len(turns)-1], e)
	}
	return turns
}

// Format renders the log one entry per line, with a blank line between turns.
func (rl *RoundLog) Format() string {
	var sb strings.Builder
	for i, turn := range rl.Turns() {
		if i > 0 && len(turn) > 0 {
			sb.WriteByte('\n')
		}
		for _, e := range turn {
			sb.WriteString(e.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Summary returns a short human-readable standing of every player.
func (rl *RoundLog) Summary(r *Round) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at %.2fs (%s) ---\n", r.Now().Seconds(), r.State())
	for _, t := range r.Tanks() {
		p := r.player(t.PlayerNumber)
		status := "alive"
		if t.Dead() {
			status = "dead"
		}
		shots := rl.Count(LogQuery{Player: t.PlayerNumber, Category: "shot", Key: "fire"})
		fmt.Fprintf(&sb, "P%d  %-5s  health=%3d  money=%5d  kills=%d  shots=%d\n",
			t.PlayerNumber, status, t.Health(), p.Money, p.Kills, shots)
	}
	fmt.Fprintf(&sb, "Turns: %d  Impacts: %d\n", len(rl.Turns())-1, rl.Count(LogQuery{Category: "shot", Key: "impact"}))
	return sb.String()
}
