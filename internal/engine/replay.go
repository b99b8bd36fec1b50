package engine

import (
	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/model"
)

// Replay deterministically re-executes a game from (gameSeedHex, numBalls,
// inputLog) to recompute its final state for audit (spec §4.6). At each
// tick it consumes the next input record whose tick equals the upcoming
// tick count; records that fell behind (stale duplicates) are skipped,
// and once the log is exhausted the bumper's last commanded target is
// carried forward until the game finishes or the tick bound is hit —
// this repo's explicit resolution of the spec's open question on
// under-length input logs (spec §9).
//
// The loop is bounded by numBalls*MAX_TICKS_PER_BALL ticks (spec §5),
// which caps replay cost regardless of an adversarial input log.
func Replay(gameSeedHex string, numBalls int, inputLog []model.InputRecord) *model.GameState {
	state := CreateInitialState(gameSeedHex, numBalls)
	maxTicks := numBalls * config.MaxTicksPerBall

	idx := 0
	for !state.Finished && state.TickCount < maxTicks {
		nextTick := state.TickCount + 1

		for idx < len(inputLog) && inputLog[idx].Tick < nextTick {
			idx++
		}

		var target *BumperTarget
		if idx < len(inputLog) && inputLog[idx].Tick == nextTick {
			target = &BumperTarget{X: inputLog[idx].TargetX, Y: inputLog[idx].TargetY}
			idx++
		}

		Tick(state, target)
	}

	return state
}
