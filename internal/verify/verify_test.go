package verify

import (
	"testing"

	"github.com/paddla/game-core/internal/engine"
	"github.com/paddla/game-core/internal/model"
)

const (
	testServerSeed = "myserverseed"
	testClientSeed = "myclientseed"
	testGameID     = "game-1"
	testCommitment = "e546ebee69015173fc98695696c98a11330658074c4c5db3206197834f6a579d"
	testGameSeed   = "545e22e28c18060868001679a5d66c1d45123db1766ef22031cd0119da28d854"
)

func playGame(numBalls int) (*model.GameState, []model.InputRecord) {
	state := engine.CreateInitialState(testGameSeed, numBalls)
	var inputLog []model.InputRecord
	maxTicks := numBalls * 600
	for !state.Finished && state.TickCount < maxTicks {
		target := &engine.BumperTarget{X: 4.5, Y: 2.0}
		engine.Tick(state, target)
		inputLog = append(inputLog, model.InputRecord{Tick: state.TickCount, TargetX: target.X, TargetY: target.Y})
	}
	return state, inputLog
}

func baseRequest(numBalls int) (Request, int64) {
	state, inputLog := playGame(numBalls)
	req := Request{
		ServerSeed:          testServerSeed,
		ClientSeed:          testClientSeed,
		GameID:              testGameID,
		ExpectedCommitment:  testCommitment,
		ExpectedGameSeedHex: testGameSeed,
		NumBalls:            numBalls,
		InputLog:            inputLog,
		ClaimedTotalWin:     state.TotalWin,
	}
	return req, state.TotalWin
}

func TestVerifyValidChainPasses(t *testing.T) {
	req, totalWin := baseRequest(5)

	result := Verify(req)

	if !result.Valid {
		t.Fatalf("expected valid result, got invalid with reason %q", result.Reason)
	}
	if result.TotalWin != totalWin {
		t.Fatalf("expected totalWin %d, got %d", totalWin, result.TotalWin)
	}
}

func TestVerifyFlippedTotalWinIsReplayMismatch(t *testing.T) {
	req, totalWin := baseRequest(5)
	req.ClaimedTotalWin = totalWin ^ 1

	result := Verify(req)

	if result.Valid {
		t.Fatalf("expected invalid result for flipped totalWin")
	}
	if result.Reason != ReasonReplayMismatch {
		t.Fatalf("expected ReplayMismatch, got %q", result.Reason)
	}
}

func TestVerifyFlippedServerSeedIsCommitmentMismatch(t *testing.T) {
	req, _ := baseRequest(5)
	req.ServerSeed = "myserverseeX"

	result := Verify(req)

	if result.Valid {
		t.Fatalf("expected invalid result for flipped server seed")
	}
	if result.Reason != ReasonCommitmentMismatch {
		t.Fatalf("expected CommitmentMismatch, got %q", result.Reason)
	}
}

func TestVerifyWrongExpectedGameSeedIsSeedMismatch(t *testing.T) {
	req, _ := baseRequest(5)
	req.ExpectedGameSeedHex = "0000000000000000000000000000000000000000000000000000000000000000"

	result := Verify(req)

	if result.Valid {
		t.Fatalf("expected invalid result for mismatched game seed")
	}
	if result.Reason != ReasonSeedMismatch {
		t.Fatalf("expected SeedMismatch, got %q", result.Reason)
	}
}
