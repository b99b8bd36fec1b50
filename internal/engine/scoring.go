package engine

import (
	"fmt"

	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/model"
)

// bumpProgressive increments the progressive multiplier, capped (spec
// §4.4 steps 11/15: "progressive increments capped").
func bumpProgressive(s *model.GameState) {
	if s.Progressive < config.ProgressiveCap {
		s.Progressive++
	}
}

func prizeFor(b *model.Ball, progressive int) int64 {
	return int64(b.Value) * int64(b.Multiplier) * int64(progressive)
}

// processGoals scores every ball that reaches either goal mouth, including
// the explosive chain reaction (spec §4.4 step 11).
func processGoals(s *model.GameState) []Event {
	var events []Event

	for i, ball := range s.Balls {
		if !ball.Alive {
			continue
		}
		distLeft := dist(ball.X, ball.Y, 0, 0)
		distRight := dist(ball.X, ball.Y, config.Field, 0)
		hitLeft := distLeft < config.GoalR
		hitRight := distRight < config.GoalR
		if !hitLeft && !hitRight {
			continue
		}

		side := "right"
		if hitLeft {
			side = "left"
		}

		prize := prizeFor(ball, s.Progressive)
		s.TotalWin += prize
		ball.Alive = false

		if ball.Kind == model.KindGolden {
			s.TimeoutCount = 0
		}
		bumpProgressive(s)

		events = append(events, newEvent(EventGoal, map[string]any{
			"id": ball.ID, "side": side, "prize": prize,
		}))

		if ball.Kind == model.KindExplosive {
			s.TimeoutCount = 0
			for j, victim := range s.Balls {
				if j == i || !victim.Alive {
					continue
				}
				if victim.Y >= config.Field/2 {
					continue
				}
				vPrize := prizeFor(victim, s.Progressive)
				s.TotalWin += vPrize
				bumpProgressive(s)
				victim.Alive = false
				events = append(events, newEvent(EventExploded, map[string]any{
					"id": victim.ID, "prize": vPrize,
				}))
			}
		}
	}

	return events
}

// ballCollisions resolves every pair of overlapping live balls (spec
// §4.4 step 12).
func ballCollisions(s *model.GameState) []Event {
	var events []Event
	balls := s.Balls

	for i := 0; i < len(balls); i++ {
		b1 := balls[i]
		if !b1.Alive {
			continue
		}
		for j := i + 1; j < len(balls); j++ {
			b2 := balls[j]
			if !b2.Alive {
				continue
			}
			d := dist(b1.X, b1.Y, b2.X, b2.Y)
			if !(d < 2*config.BallR) {
				continue
			}

			s1 := b1.Kind != model.KindNormal
			s2 := b2.Kind != model.KindNormal

			switch {
			case s1 && s2:
				resolveSpecialPair(s, i, j, b1, b2, d)
			case s1 != s2:
				resolveMixedPair(s, b1, b2, s1, &events)
			case b1.Value == b2.Value:
				resolveEqualPair(s, i, j, b1, b2, &events)
			default:
				resolveUnequalPair(s, b1, b2, &events)
			}
		}
	}

	return events
}

func resolveSpecialPair(s *model.GameState, i, j int, b1, b2 *model.Ball, d float64) {
	nx, ny := outwardUnit(b1.X, b1.Y, b2.X, b2.Y)
	overlap := 2*config.BallR - d
	b1.X = fpRound(b1.X - nx*overlap/2)
	b1.Y = fpRound(b1.Y - ny*overlap/2)
	b2.X = fpRound(b2.X + nx*overlap/2)
	b2.Y = fpRound(b2.Y + ny*overlap/2)

	b1.DX, b1.DY = fpRound(-nx*config.Speed), fpRound(-ny*config.Speed)
	b2.DX, b2.DY = fpRound(nx*config.Speed), fpRound(ny*config.Speed)

	r1 := s.RNG.NextDouble(fmt.Sprintf("coll_%d_%d_1", i, j))
	b1.DX, b1.DY = jitterVelocity(b1.DX, b1.DY, r1)
	r2 := s.RNG.NextDouble(fmt.Sprintf("coll_%d_%d_2", i, j))
	b2.DX, b2.DY = jitterVelocity(b2.DX, b2.DY, r2)
}

func resolveMixedPair(s *model.GameState, b1, b2 *model.Ball, firstIsSpecial bool, events *[]Event) {
	winner, loser := b1, b2
	if !firstIsSpecial {
		winner, loser = b2, b1
	}
	loser.Alive = false
	s.TotalWin += 1

	*events = append(*events, newEvent(EventCollision, map[string]any{
		"winner": winner.ID, "loser": loser.ID,
	}))
}

func resolveEqualPair(s *model.GameState, i, j int, b1, b2 *model.Ball, events *[]Event) {
	prize := int64(b1.Value) * 2
	s.TotalWin += prize

	r := s.RNG.NextDouble(fmt.Sprintf("double_%d_%d", i, j))
	winner, loser := b1, b2
	if r >= 0.5 {
		winner, loser = b2, b1
	}
	loser.Alive = false

	*events = append(*events, newEvent(EventCollision, map[string]any{
		"winner": winner.ID, "loser": loser.ID, "prize": prize,
	}))
}

func resolveUnequalPair(s *model.GameState, b1, b2 *model.Ball, events *[]Event) {
	winner, loser := b1, b2
	if b2.Value > b1.Value {
		winner, loser = b2, b1
	}
	loser.Alive = false
	s.TotalWin += 1

	nx, ny := outwardUnit(loser.X, loser.Y, winner.X, winner.Y)
	winner.DX = fpRound(nx * config.Speed)
	winner.DY = fpRound(ny * config.Speed)

	r := s.RNG.NextDouble(fmt.Sprintf("win_%d", winner.ID))
	winner.DX, winner.DY = jitterVelocity(winner.DX, winner.DY, r)

	*events = append(*events, newEvent(EventCollision, map[string]any{
		"winner": winner.ID, "loser": loser.ID,
	}))
}

// tallyTimeouts counts balls that died from value decay this tick and
// resets the progressive multiplier once TIMEOUT_LIMIT such deaths have
// accumulated (spec §4.4 step 13). The count is cleared only by a golden
// or explosive goal or by that reset; other goals leave it as it is.
func tallyTimeouts(s *model.GameState) []Event {
	var events []Event

	for _, b := range s.Balls {
		if !b.DiedFromTimeout {
			continue
		}
		s.TimeoutCount++
		if s.TimeoutCount >= config.TimeoutLimit {
			s.Progressive = 1
			s.TimeoutCount = 0
			events = append(events, newEvent(EventProgressiveReset, nil))
		}
		b.DiedFromTimeout = false
	}

	return events
}

// compact drops every dead ball, preserving insertion order (spec §4.4
// step 14).
func compact(s *model.GameState) {
	live := s.Balls[:0]
	for _, b := range s.Balls {
		if b.Alive {
			live = append(live, b)
		}
	}
	s.Balls = live
}

// autoCollect scores every remaining ball when none of them are normal
// (spec §4.4 step 15).
func autoCollect(s *model.GameState) []Event {
	if len(s.Balls) == 0 {
		return nil
	}
	for _, b := range s.Balls {
		if b.Kind == model.KindNormal {
			return nil
		}
	}

	var events []Event
	for _, b := range s.Balls {
		prize := prizeFor(b, s.Progressive)
		s.TotalWin += prize
		bumpProgressive(s)
		events = append(events, newEvent(EventAutoCollect, map[string]any{
			"id": b.ID, "prize": prize,
		}))
	}
	s.Balls = nil
	return events
}
