// Package engine implements PADDLA's deterministic tick-based physics
// simulator (spec §4.4): ball spawning, motion, collisions, scoring, and
// cleanup, driven by the input-seeded RNG in internal/rng. A tick is a
// pure function of its inputs — it never blocks, never suspends, and two
// independent runs given the same (gameSeedHex, numBalls, inputLog)
// produce bit-identical results.
package engine

import (
	"math"

	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/model"
	"github.com/paddla/game-core/internal/rng"
)

// BumperTarget is the player's commanded position for one tick.
type BumperTarget struct {
	X float64
	Y float64
}

// CreateInitialState builds a fresh GameState bound to gameSeedHex, ready
// to spawn up to numBalls balls over the course of play.
func CreateInitialState(gameSeedHex string, numBalls int) *model.GameState {
	return &model.GameState{
		RNG: rng.New(gameSeedHex),
		Bumper: model.Bumper{
			X: config.Bumper.StartX, Y: config.Bumper.StartY,
			TargetX: config.Bumper.StartX, TargetY: config.Bumper.StartY,
		},
		Balls:       nil,
		NumBalls:    numBalls,
		NextBallID:  1,
		Progressive: 1,
	}
}

// Tick advances state by exactly one simulation step and returns the
// events observed, in emission order (spec §4.4). The phase ordering
// below is part of the contract: the RNG advances per event, so
// reordering phases changes outcomes.
func Tick(s *model.GameState, target *BumperTarget) []Event {
	var events []Event

	// 1. Guard.
	if s.Finished {
		return events
	}

	// 2. Advance tick.
	s.TickCount++
	if s.SpawnCooldown > 0 {
		s.SpawnCooldown--
	}

	// 3. Apply input.
	if target != nil {
		s.Bumper.TargetX = clampVal(target.X, config.Bumper.MinX, config.Bumper.MaxX)
		s.Bumper.TargetY = clampVal(target.Y, config.Bumper.MinY, config.Bumper.MaxY)
	}

	// 4. Move bumper.
	moveBumper(&s.Bumper)

	// 5. Bind RNG context.
	s.RNG.SetTickContext(s.TickCount, s.Bumper.X, s.Bumper.Y)

	// 6. Append input record.
	s.InputLog = append(s.InputLog, model.InputRecord{
		Tick: s.TickCount, TargetX: s.Bumper.TargetX, TargetY: s.Bumper.TargetY,
	})

	// 7. Spawn.
	if ev, spawned := trySpawn(s); spawned {
		events = append(events, ev)
	}

	// 8. Update balls: integrate motion, wall bounce, countdown decay.
	events = append(events, updateBalls(s)...)

	// 9. Bumper collision.
	events = append(events, bumperCollisions(s)...)

	// 10. Center recharge.
	events = append(events, centerRecharge(s)...)

	// 11. Goals (+ explosive chain).
	events = append(events, processGoals(s)...)

	// 12. Ball-ball collisions.
	events = append(events, ballCollisions(s)...)

	// 13. Timeout tally.
	events = append(events, tallyTimeouts(s)...)

	// 14. Compact.
	compact(s)

	// 15. Auto-collect.
	events = append(events, autoCollect(s)...)

	// 16. End.
	if s.BallsSpawned == s.NumBalls && len(s.Balls) == 0 {
		s.Finished = true
		events = append(events, newEvent(EventGameEnd, map[string]any{"totalWin": s.TotalWin}))
	}

	return events
}

// moveBumper steps the bumper toward its target at MAX_SPEED, or snaps to
// it when within one step (spec §4.4 step 4).
func moveBumper(b *model.Bumper) {
	vx := b.TargetX - b.X
	vy := b.TargetY - b.Y
	length := math.Hypot(vx, vy)
	if length > config.Bumper.MaxSpeed {
		scale := config.Bumper.MaxSpeed / length
		b.X = fpRound(b.X + vx*scale)
		b.Y = fpRound(b.Y + vy*scale)
		return
	}
	b.X = fpRound(b.TargetX)
	b.Y = fpRound(b.TargetY)
}
