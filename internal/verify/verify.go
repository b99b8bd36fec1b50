// Package verify implements PADDLA's standalone audit primitive (spec
// §4.7): given a revealed server seed and a client's recorded play, prove
// or refute the whole commit-reveal chain in one call. It runs
// identically whether invoked by the server or by a client auditing the
// server after the fact — it imports nothing from internal/protocol and
// depends only on internal/cryptoutil, internal/engine and internal/model.
//
// Grounded on the pack's zeroplay-io-backgammon_provably_fair verifier:
// the same "decode, recompute, compare" shape, generalized from a dice
// hash-chain to PADDLA's tick replay.
package verify

import (
	"github.com/paddla/game-core/internal/cryptoutil"
	"github.com/paddla/game-core/internal/engine"
	"github.com/paddla/game-core/internal/model"
)

// Reason names why a verification failed.
type Reason string

const (
	ReasonCommitmentMismatch Reason = "CommitmentMismatch"
	ReasonSeedMismatch       Reason = "SeedMismatch"
	ReasonReplayMismatch     Reason = "ReplayMismatch"
)

// Request bundles everything needed to audit one game.
type Request struct {
	ServerSeed          string
	ClientSeed          string
	GameID              string
	ExpectedCommitment  string
	ExpectedGameSeedHex string
	NumBalls            int
	InputLog            []model.InputRecord
	ClaimedTotalWin     int64
}

// Result is the outcome of Verify.
type Result struct {
	Valid    bool   `json:"valid"`
	Reason   Reason `json:"reason,omitempty"`
	TotalWin int64  `json:"totalWin,omitempty"`
}

// Verify checks the three links of the commit-reveal chain in order,
// stopping at the first that fails (spec §4.7):
//  1. SHA256(serverSeed) == expectedCommitment
//  2. HMAC-SHA256(serverSeed, clientSeed+":"+gameId) == expectedGameSeedHex
//  3. Replay(expectedGameSeedHex, numBalls, inputLog).totalWin == claimedTotalWin
func Verify(req Request) Result {
	if cryptoutil.SHA256Hex([]byte(req.ServerSeed)) != req.ExpectedCommitment {
		return Result{Valid: false, Reason: ReasonCommitmentMismatch}
	}

	gameSeedHex := cryptoutil.HMACSHA256Hex([]byte(req.ServerSeed), []byte(req.ClientSeed+":"+req.GameID))
	if gameSeedHex != req.ExpectedGameSeedHex {
		return Result{Valid: false, Reason: ReasonSeedMismatch}
	}

	state := engine.Replay(req.ExpectedGameSeedHex, req.NumBalls, req.InputLog)
	if state.TotalWin != req.ClaimedTotalWin {
		return Result{Valid: false, Reason: ReasonReplayMismatch, TotalWin: state.TotalWin}
	}

	return Result{Valid: true, TotalWin: state.TotalWin}
}
