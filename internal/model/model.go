// Package model defines the physics records PADDLA's engine mutates every
// tick: balls, the bumper, and the per-game state that ties them together
// (spec §3). Field tags follow the teacher's pkg/models convention —
// lowerCamelCase wire names over Go-idiomatic struct fields.
package model

import "github.com/paddla/game-core/internal/rng"

// BallKind distinguishes the three ball flavors the engine spawns.
type BallKind int

const (
	KindNormal BallKind = iota
	KindGolden
	KindExplosive
)

func (k BallKind) String() string {
	switch k {
	case KindGolden:
		return "golden"
	case KindExplosive:
		return "explosive"
	default:
		return "normal"
	}
}

// Ball is one live projectile on the field.
type Ball struct {
	ID                  int      `json:"id"`
	X                   float64  `json:"x"`
	Y                   float64  `json:"y"`
	DX                  float64  `json:"dx"`
	DY                  float64  `json:"dy"`
	Value               int      `json:"value"`
	TicksSinceCountdown int      `json:"ticksSinceCountdown"`
	Kind                BallKind `json:"-"`
	KindName            string   `json:"kind"`
	Multiplier          int      `json:"multiplier"`
	Alive               bool     `json:"alive"`

	// DiedFromTimeout is a transient flag, set when a normal ball's value
	// decays to zero, and consumed within the same tick that observes it
	// (spec §3 — it must never survive to the next tick).
	DiedFromTimeout bool `json:"-"`
}

// NewBall constructs a ball in its spawned state (spec §4.4 step 7).
func NewBall(id int, x, y, dx, dy float64, kind BallKind, multiplier int) *Ball {
	return &Ball{
		ID:         id,
		X:          x,
		Y:          y,
		DX:         dx,
		DY:         dy,
		Value:      9,
		Kind:       kind,
		KindName:   kind.String(),
		Multiplier: multiplier,
		Alive:      true,
	}
}

// Bumper is the single player-controlled paddle.
type Bumper struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// InputRecord is one entry in a game's append-only input log.
type InputRecord struct {
	Tick    int     `json:"tick"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// GameState is the complete mutable state of one game (spec §3).
type GameState struct {
	RNG *rng.RNG `json:"-"`

	Bumper Bumper `json:"bumper"`
	Balls  []*Ball `json:"balls"`

	TickCount     int   `json:"tickCount"`
	BallsSpawned  int   `json:"ballsSpawned"`
	NumBalls      int   `json:"numBalls"`
	SpawnCooldown int   `json:"spawnCooldown"`
	Progressive   int   `json:"progressive"`
	TimeoutCount  int   `json:"timeoutCount"`
	TotalWin      int64 `json:"totalWin"`
	NextBallID    int   `json:"-"`
	Finished      bool  `json:"finished"`

	InputLog []InputRecord `json:"inputLog"`
}
