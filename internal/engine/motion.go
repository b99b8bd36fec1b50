package engine

import (
	"fmt"

	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/model"
)

// updateBalls integrates every live ball's position, resolves wall
// reflection, applies normal-ball value decay, and jitters post-bounce
// velocity (spec §4.4 step 8).
func updateBalls(s *model.GameState) []Event {
	var events []Event

	for _, b := range s.Balls {
		if !b.Alive {
			continue
		}
		b.TicksSinceCountdown++

		b.X = fpRound(b.X + b.DX)
		b.Y = fpRound(b.Y + b.DY)

		hitWall := false
		lo, hi := config.BallR, config.Field-config.BallR
		if b.X < lo {
			b.X = lo
			b.DX = -b.DX
			hitWall = true
		} else if b.X > hi {
			b.X = hi
			b.DX = -b.DX
			hitWall = true
		}
		if b.Y < lo {
			b.Y = lo
			b.DY = -b.DY
			hitWall = true
		} else if b.Y > hi {
			b.Y = hi
			b.DY = -b.DY
			hitWall = true
		}
		b.X = fpRound(b.X)
		b.Y = fpRound(b.Y)
		if hitWall {
			b.DX = fpRound(b.DX)
			b.DY = fpRound(b.DY)
		}

		if b.Kind == model.KindNormal && b.TicksSinceCountdown >= config.Countdown && b.Value > 0 {
			b.Value--
			b.TicksSinceCountdown = 0
			if b.Value <= 0 {
				b.Alive = false
				b.DiedFromTimeout = true
				events = append(events, newEvent(EventTimeout, map[string]any{"id": b.ID}))
			}
		}

		if b.Alive && hitWall {
			r := s.RNG.NextDouble(fmt.Sprintf("wall_%d", b.ID))
			b.DX, b.DY = jitterVelocity(b.DX, b.DY, r)
		}
	}

	return events
}
