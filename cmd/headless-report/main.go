package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/Garsondee/Scorched-Earth/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	shots       int
	impacts     int
	kills       int
	turns       int
	falls       int
	blastDamage int
	fallDamage  int

	firstImpact time.Duration
	firstKill   time.Duration
	duration    time.Duration

	finished  bool
	winner    int
	survivors int
	tanks     int

	shooters map[string]struct{}
}

func main() {
	var runs int
	var tanks int
	var width, height int
	var seedBase int64
	var seedStep int64
	var maxSeconds float64

	flag.IntVar(&runs, "runs", 5, "number of headless rounds")
	flag.IntVar(&tanks, "tanks", 2, "tanks per round")
	flag.IntVar(&width, "width", 1024, "playfield width")
	flag.IntVar(&height, "height", 640, "playfield height")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.Float64Var(&maxSeconds, "max-seconds", 600, "simulated time limit per round")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if maxSeconds <= 0 {
		fmt.Println("error: -max-seconds must be > 0")
		return
	}

	fmt.Printf("=== Headless Round Report ===\n")
	fmt.Printf("runs=%d tanks=%d size=%dx%d seed_base=%d seed_step=%d max_seconds=%.0f\n\n",
		runs, tanks, width, height, seedBase, seedStep, maxSeconds)

	limit := time.Duration(maxSeconds * float64(time.Second))
	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runRound(i+1, seed, tanks, width, height, limit)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// runRound plays one round with seeded random gunners until a winner
// emerges or the time limit passes.
func runRound(runIndex int, seed int64, tanks, width, height int, limit time.Duration) (runStats, error) {
	tr, err := game.NewTestRound(
		game.WithSize(width, height),
		game.WithTanks(tanks),
		game.WithRoundOptions(game.WithSeed(seed)),
	)
	if err != nil {
		return runStats{}, err
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- reproducible gunners

	for tr.Now() < limit && tr.Round.State() != game.StateFinish {
		if tr.Round.State() == game.StateAiming {
			angle, power := pickShot(rng, tr.Round)
			tr.Aim(angle, power)
			tr.Round.Fire()
		}
		tr.RunTicks(1)
	}
	return collectStats(runIndex, seed, tr), nil
}

// pickShot aims roughly toward the nearest living opponent.
func pickShot(rng *rand.Rand, r *game.Round) (float64, float64) {
	self := r.CurrentTank()
	dir := 1.0
	best := -1.0
	for _, t := range r.Tanks() {
		if t == self || t.Dead() {
			continue
		}
		d := t.Center().X - self.Center().X
		if best < 0 || abs(d) < best {
			best = abs(d)
			if d < 0 {
				dir = -1
			} else {
				dir = 1
			}
		}
	}
	angle := dir * (20 + rng.Float64()*55)
	power := 35 + rng.Float64()*65
	return angle, power
}

func collectStats(runIndex int, seed int64, tr *game.TestRound) runStats {
	log := tr.Round.Log()
	entries := log.Entries()
	shooters := map[string]struct{}{}
	blast, fall := 0, 0
	for _, e := range entries {
		switch {
		case e.Category == "shot" && e.Key == "fire":
			shooters[fmt.Sprintf("P%d", e.Player)] = struct{}{}
		case e.Category == "damage" && e.Key == "blast":
			blast += int(e.NumVal)
		case e.Category == "damage" && e.Key == "fall":
			fall += int(e.NumVal)
		}
	}

	rs := runStats{
		runIndex:    runIndex,
		seed:        seed,
		shots:       log.Count(game.LogQuery{Category: "shot", Key: "fire"}),
		impacts:     log.Count(game.LogQuery{Category: "shot", Key: "impact"}),
		kills:       log.Count(game.LogQuery{Category: "tank", Key: "destroyed"}),
		turns:       log.Count(game.LogQuery{Category: "turn", Key: "begin"}),
		falls:       log.Count(game.LogQuery{Category: "damage", Key: "fall"}),
		blastDamage: blast,
		fallDamage:  fall,
		firstImpact: firstTime(entries, "shot", "impact"),
		firstKill:   firstTime(entries, "tank", "destroyed"),
		duration:    tr.Now(),
		finished:    tr.Round.State() == game.StateFinish,
		tanks:       len(tr.Round.Tanks()),
		shooters:    shooters,
	}
	rs.winner, _ = tr.Round.Winner()
	for _, t := range tr.Round.Tanks() {
		if !t.Dead() {
			rs.survivors++
		}
	}
	return rs
}

func firstTime(entries []game.RoundLogEntry, category, key string) time.Duration {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Time
		}
	}
	return -1
}

// detectStalemate flags rounds that ran out of time with several tanks
// still standing, or that produced almost no hits.
func detectStalemate(rs runStats) (bool, string) {
	if rs.finished {
		return false, "finished"
	}
	var reasons []string
	if rs.survivors >= 2 {
		reasons = append(reasons, fmt.Sprintf("survivors=%d", rs.survivors))
	}
	if rs.shots > 0 && rs.kills == 0 {
		reasons = append(reasons, "no_kills")
	}
	if rs.shots > 0 && float64(rs.impacts)/float64(rs.shots) < 0.5 {
		reasons = append(reasons, "lost_missiles")
	}
	if len(reasons) == 0 {
		return false, "timeout"
	}
	return rs.survivors >= 2, strings.Join(reasons, ",")
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome: finished=%t winner=%s survivors=%d/%d duration=%.1fs\n",
		rs.finished, winnerString(rs.winner), rs.survivors, rs.tanks, rs.duration.Seconds())
	fmt.Printf("event_totals: turns=%d shots=%d impacts=%d kills=%d falls=%d\n",
		rs.turns, rs.shots, rs.impacts, rs.kills, rs.falls)
	fmt.Printf("damage: blast=%d fall=%d\n", rs.blastDamage, rs.fallDamage)
	fmt.Printf("phase_markers: first_impact=%s first_kill=%s\n",
		durationString(rs.firstImpact), durationString(rs.firstKill))
	fmt.Printf("shooters: %s\n", joinSet(rs.shooters))
	if stale, reason := detectStalemate(rs); stale {
		fmt.Printf("stalemate: %s\n", reason)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalShots := 0
	totalImpacts := 0
	totalKills := 0
	totalTurns := 0
	totalBlast := 0
	totalFall := 0
	finished := 0
	stalemates := 0

	durations := make([]float64, 0, len(all))
	firstKills := make([]float64, 0, len(all))
	wins := map[int]int{}

	for _, rs := range all {
		totalShots += rs.shots
		totalImpacts += rs.impacts
		totalKills += rs.kills
		totalTurns += rs.turns
		totalBlast += rs.blastDamage
		totalFall += rs.fallDamage
		durations = append(durations, rs.duration.Seconds())
		if rs.firstKill >= 0 {
			firstKills = append(firstKills, rs.firstKill.Seconds())
		}
		if rs.finished {
			finished++
			wins[rs.winner]++
		}
		if stale, _ := detectStalemate(rs); stale {
			stalemates++
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d finished=%d stalemates=%d\n", len(all), finished, stalemates)
	fmt.Printf("avg_per_run: turns=%.1f shots=%.1f impacts=%.1f kills=%.1f blast_damage=%.1f fall_damage=%.1f\n",
		avg(totalTurns, len(all)), avg(totalShots, len(all)), avg(totalImpacts, len(all)),
		avg(totalKills, len(all)), avg(totalBlast, len(all)), avg(totalFall, len(all)))
	fmt.Printf("avg_seconds: duration=%s first_kill=%s\n", avgString(durations), avgString(firstKills))
	fmt.Printf("wins: %s\n", winsString(wins))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgString(vals []float64) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", sum/float64(len(vals)))
}

func durationString(d time.Duration) string {
	if d < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func winnerString(p int) string {
	if p <= 0 {
		return "none"
	}
	return fmt.Sprintf("P%d", p)
}

func winsString(wins map[int]int) string {
	if len(wins) == 0 {
		return "none"
	}
	players := make([]int, 0, len(wins))
	for p := range wins {
		players = append(players, p)
	}
	sort.Ints(players)
	parts := make([]string, 0, len(players))
	for _, p := range players {
		parts = append(parts, fmt.Sprintf("%s=%d", winnerString(p), wins[p]))
	}
	return strings.Join(parts, " ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
