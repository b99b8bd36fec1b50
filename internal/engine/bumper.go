package engine

import (
	"fmt"

	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/model"
)

// bumperCollisions reflects any ball that touches the bumper's disc off
// it and jitters the result (spec §4.4 step 9).
func bumperCollisions(s *model.GameState) []Event {
	var events []Event
	b := &s.Bumper

	for _, ball := range s.Balls {
		if !ball.Alive {
			continue
		}
		d := dist(ball.X, ball.Y, b.X, b.Y)
		if !(d < config.BallR+config.Bumper.Radius && d > 0) {
			continue
		}

		nx, ny := (ball.X-b.X)/d, (ball.Y-b.Y)/d
		dot := ball.DX*nx + ball.DY*ny
		ball.DX = fpRound(ball.DX - 2*dot*nx)
		ball.DY = fpRound(ball.DY - 2*dot*ny)

		rad := config.BallR + config.Bumper.Radius
		ball.X = fpRound(b.X + nx*rad)
		ball.Y = fpRound(b.Y + ny*rad)

		r := s.RNG.NextDouble(fmt.Sprintf("bumper_%d", ball.ID))
		ball.DX, ball.DY = jitterVelocity(ball.DX, ball.DY, r)

		events = append(events, newEvent(EventBumperHit, map[string]any{"id": ball.ID}))
	}

	return events
}

// centerRecharge redirects any ball inside the center disc outward and,
// for normal balls whose value has decayed, resets it to full (spec §4.4
// step 10).
func centerRecharge(s *model.GameState) []Event {
	var events []Event

	for _, ball := range s.Balls {
		if !ball.Alive {
			continue
		}
		d := dist(ball.X, ball.Y, config.CenterX, config.CenterY)
		if !(d < config.CenterR+config.BallR) {
			continue
		}

		nx, ny := outwardUnit(config.CenterX, config.CenterY, ball.X, ball.Y)
		ball.DX = fpRound(nx * config.Speed)
		ball.DY = fpRound(ny * config.Speed)

		r := s.RNG.NextDouble(fmt.Sprintf("center_%d", ball.ID))
		ball.DX, ball.DY = jitterVelocity(ball.DX, ball.DY, r)

		if ball.Kind == model.KindNormal && ball.Value < 9 {
			ball.Value = 9
			ball.TicksSinceCountdown = 0
			events = append(events, newEvent(EventRecharge, map[string]any{"id": ball.ID}))
		}
	}

	return events
}
