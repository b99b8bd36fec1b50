package engine

import (
	"math"

	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/model"
)

// trySpawn draws a new ball when the spawn conditions in spec §4.4 step 7
// are met. It returns the spawn event and whether a ball was spawned.
func trySpawn(s *model.GameState) (Event, bool) {
	if s.TickCount%config.SpawnInterval != 0 {
		return Event{}, false
	}
	if len(s.Balls) >= config.MaxOnField {
		return Event{}, false
	}
	if s.SpawnCooldown > 0 {
		return Event{}, false
	}
	if s.BallsSpawned >= s.NumBalls {
		return Event{}, false
	}

	rx := s.RNG.NextDouble("spawn_x")
	rAngle := s.RNG.NextDouble("spawn_angle")
	rType := s.RNG.NextDouble("spawn_type")

	x := fpRound(0.5 + rx*8)
	y := fpRound(config.Field - 0.3)

	angle := (220 + rAngle*100) * math.Pi / 180
	dx := fpRound(math.Cos(angle) * config.Speed)
	dy := fpRound(math.Sin(angle) * config.Speed)

	kind := model.KindNormal
	multiplier := 1
	switch {
	case rType < config.GoldenChance:
		kind = model.KindGolden
		multiplier = 3
	case rType < config.GoldenChance+config.ExplosiveChance:
		kind = model.KindExplosive
		multiplier = 1
	}

	ball := model.NewBall(s.NextBallID, x, y, dx, dy, kind, multiplier)
	s.NextBallID++
	s.Balls = append(s.Balls, ball)
	s.BallsSpawned++
	s.SpawnCooldown = config.SpawnCooldown

	return newEvent(EventSpawn, map[string]any{
		"id": ball.ID, "x": x, "y": y, "kind": kind.String(),
	}), true
}
