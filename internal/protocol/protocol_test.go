package protocol

import (
	"testing"
	"time"

	"github.com/paddla/game-core/internal/model"
)

func newTestRegistry(t *testing.T) (*Registry, *CommitmentSlot) {
	t.Helper()
	slot, err := NewCommitmentSlot(time.Hour)
	if err != nil {
		t.Fatalf("NewCommitmentSlot: %v", err)
	}
	return NewRegistry(slot, 5*time.Minute, nil), slot
}

func TestStartGameRejectsBadInput(t *testing.T) {
	reg, _ := newTestRegistry(t)

	cases := []struct {
		name       string
		clientSeed string
		numBalls   int
	}{
		{"empty client seed", "", 5},
		{"zero balls", "abc", 0},
		{"too many balls", "abc", 100000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := reg.StartGame(tc.clientSeed, tc.numBalls, ""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestStartGameAcceptsLiveCommitment(t *testing.T) {
	reg, slot := newTestRegistry(t)

	res, err := reg.StartGame("client-seed", 3, slot.Current().Value)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if res.GameID == "" || res.GameSeedHex == "" {
		t.Fatalf("expected populated gameId and gameSeedHex, got %+v", res)
	}
	if res.Commitment != slot.Current().Value {
		t.Fatalf("commitment mismatch: got %s want %s", res.Commitment, slot.Current().Value)
	}
}

func TestStartGameRejectsUnknownCommitment(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if _, err := reg.StartGame("client-seed", 3, "not-a-real-commitment"); err == nil {
		t.Fatalf("expected an error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != KindProtocolError {
		t.Fatalf("expected KindProtocolError, got %v", err)
	}
}

func TestCommitmentRotationHonorsGracePeriod(t *testing.T) {
	slot, err := NewCommitmentSlot(time.Hour)
	if err != nil {
		t.Fatalf("NewCommitmentSlot: %v", err)
	}
	reg := NewRegistry(slot, 5*time.Minute, nil)

	old := slot.Current().Value
	if _, err := reg.StartGame("client-seed", 2, old); err != nil {
		t.Fatalf("StartGame against live commitment: %v", err)
	}

	if err := slot.Rotate(time.Minute); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if slot.Current().Value == old {
		t.Fatalf("expected commitment to change after rotation")
	}

	// Still within grace period: starting against the retired commitment
	// must still succeed.
	if _, err := reg.StartGame("client-seed-2", 2, old); err != nil {
		t.Fatalf("StartGame against retired commitment within grace period: %v", err)
	}
}

func TestFinishGameIsIdempotent(t *testing.T) {
	reg, slot := newTestRegistry(t)

	start, err := reg.StartGame("client-seed", 2, slot.Current().Value)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	log := []model.InputRecord{{Tick: 1, TargetX: 5, TargetY: 2}}

	first, err := reg.FinishGame(start.GameID, log, 0)
	if err != nil {
		t.Fatalf("FinishGame: %v", err)
	}

	second, err := reg.FinishGame(start.GameID, log, 999999)
	if err != nil {
		t.Fatalf("FinishGame (second call): %v", err)
	}

	if first.ServerTotalWin != second.ServerTotalWin || first.Matched != second.Matched {
		t.Fatalf("expected idempotent verdict, got %+v then %+v", first, second)
	}
}

func TestFinishGameUnknownID(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if _, err := reg.FinishGame("does-not-exist", nil, 0); err == nil {
		t.Fatalf("expected NotFound error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestRegistrySweepEvictsOnlyExpiredFinished(t *testing.T) {
	reg, slot := newTestRegistry(t)
	reg.graceTTL = 0 // everything finished is immediately eligible

	start, err := reg.StartGame("client-seed", 1, slot.Current().Value)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if evicted := reg.Sweep(); len(evicted) != 0 {
		t.Fatalf("in-flight game must not be swept")
	}

	if _, err := reg.FinishGame(start.GameID, nil, 0); err != nil {
		t.Fatalf("FinishGame: %v", err)
	}

	time.Sleep(time.Millisecond)
	evicted := reg.Sweep()
	if len(evicted) != 1 || evicted[0] != start.GameID {
		t.Fatalf("expected [%s] swept, got %v", start.GameID, evicted)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected registry empty after sweep, got %d entries", reg.Len())
	}
}
