package protocol

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paddla/game-core/internal/config"
	"github.com/paddla/game-core/internal/cryptoutil"
	"github.com/paddla/game-core/internal/engine"
	"github.com/paddla/game-core/internal/model"
)

// AuditRecorder persists the outcome of a finished game for later review.
// internal/store implements this against Postgres; a nil recorder is a
// valid no-op, matching the teacher's "degrade gracefully without a
// database" posture (cmd/engine/main.go).
type AuditRecorder interface {
	RecordAudit(a ReplayAudit)
}

// ReplayAudit is one row of the production-vs-claim comparison the
// teacher's internal/shadow.ShadowRunner made for heuristic output; here
// it compares the server's authoritative replay against the client's
// claimed total (spec §4.6).
type ReplayAudit struct {
	GameID         string
	FinishedAt     time.Time
	ServerTotalWin int64
	ClientTotalWin int64
	Matched        bool
}

type gameEntry struct {
	mu sync.Mutex

	gameID      string
	clientSeed  string
	serverSeed  string
	commitment  string
	gameSeedHex string
	numBalls    int
	createdAt   time.Time

	finished       bool
	finishedAt     time.Time
	serverTotalWin int64
	clientTotalWin int64
	matched        bool
}

// Registry tracks every in-flight and recently finished game, keyed by
// gameId. It plays the role the teacher's AlertManager plays for alert
// history: one coarse-grained map guarded by its own mutex, with each
// entry additionally locked while it transitions from in-flight to
// finished so a racing duplicate Finish call never double-counts a prize.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*gameEntry

	slot     *CommitmentSlot
	graceTTL time.Duration
	recorder AuditRecorder
}

// NewRegistry builds an empty registry bound to a commitment slot.
// graceTTL controls how long a finished entry is kept around before
// internal/sweep evicts it (spec §4.6 "finished games are retained for a
// bounded grace period to allow late audits").
func NewRegistry(slot *CommitmentSlot, graceTTL time.Duration, recorder AuditRecorder) *Registry {
	return &Registry{
		games:    make(map[string]*gameEntry),
		slot:     slot,
		graceTTL: graceTTL,
		recorder: recorder,
	}
}

// StartResult is returned by StartGame.
type StartResult struct {
	GameID      string
	Commitment  string
	GameSeedHex string
	NumBalls    int
}

// StartGame opens a new game: it resolves the client-presented commitment
// back to the server seed that issued it, derives the game seed, and
// registers the game so a later FinishGame call can replay it (spec
// §4.5).
func (r *Registry) StartGame(clientSeed string, numBalls int, presentedCommitment string) (*StartResult, error) {
	if clientSeed == "" {
		return nil, newError(KindProtocolError, "clientSeed must not be empty")
	}
	if numBalls < 1 || numBalls > config.MaxNumBalls {
		return nil, newError(KindProtocolError, "numBalls must be between 1 and %d", config.MaxNumBalls)
	}

	serverSeed, commitment, ok := r.slot.Resolve(presentedCommitment)
	if !ok {
		return nil, newError(KindProtocolError, "commitment %q is neither current nor within its grace period", presentedCommitment)
	}

	gameID := uuid.NewString()
	gameSeedHex := cryptoutil.HMACSHA256Hex([]byte(serverSeed), []byte(clientSeed+":"+gameID))

	entry := &gameEntry{
		gameID:      gameID,
		clientSeed:  clientSeed,
		serverSeed:  serverSeed,
		commitment:  commitment,
		gameSeedHex: gameSeedHex,
		numBalls:    numBalls,
		createdAt:   time.Now(),
	}

	r.mu.Lock()
	r.games[gameID] = entry
	r.mu.Unlock()

	return &StartResult{
		GameID:      gameID,
		Commitment:  commitment,
		GameSeedHex: gameSeedHex,
		NumBalls:    numBalls,
	}, nil
}

// FinishResult is returned by FinishGame.
type FinishResult struct {
	GameID         string
	Matched        bool
	ServerTotalWin int64
	ClientTotalWin int64
	ServerSeed     string
	GameSeedHex    string
}

func (r *Registry) lookup(gameID string) (*gameEntry, error) {
	r.mu.RLock()
	entry, found := r.games[gameID]
	r.mu.RUnlock()
	if !found {
		return nil, newError(KindNotFound, "no game with id %q", gameID)
	}
	return entry, nil
}

// FinishGame replays the game from its seed and the client's reported
// input log, compares the server's authoritative total against the
// client's claim, and reveals the server seed for independent audit (spec
// §4.6). A second call for the same gameId is idempotent: it returns the
// first verdict rather than replaying again, the same way the teacher's
// shadow comparisons are computed once per transaction and cached.
func (r *Registry) FinishGame(gameID string, inputLog []model.InputRecord, clientTotalWin int64) (*FinishResult, error) {
	entry, err := r.lookup(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.finished {
		return &FinishResult{
			GameID:         entry.gameID,
			Matched:        entry.matched,
			ServerTotalWin: entry.serverTotalWin,
			ClientTotalWin: entry.clientTotalWin,
			ServerSeed:     entry.serverSeed,
			GameSeedHex:    entry.gameSeedHex,
		}, nil
	}

	state := engine.Replay(entry.gameSeedHex, entry.numBalls, inputLog)
	matched := state.TotalWin == clientTotalWin

	entry.finished = true
	entry.finishedAt = time.Now()
	entry.serverTotalWin = state.TotalWin
	entry.clientTotalWin = clientTotalWin
	entry.matched = matched

	if r.recorder != nil {
		r.recorder.RecordAudit(ReplayAudit{
			GameID:         gameID,
			FinishedAt:     entry.finishedAt,
			ServerTotalWin: state.TotalWin,
			ClientTotalWin: clientTotalWin,
			Matched:        matched,
		})
	}

	return &FinishResult{
		GameID:         gameID,
		Matched:        matched,
		ServerTotalWin: state.TotalWin,
		ClientTotalWin: clientTotalWin,
		ServerSeed:     entry.serverSeed,
		GameSeedHex:    entry.gameSeedHex,
	}, nil
}

// StatusResult is returned by Status.
type StatusResult struct {
	GameID    string
	NumBalls  int
	CreatedAt time.Time
	Finished  bool
	Matched   bool
}

// Status reports a game's lifecycle state without revealing its seed.
func (r *Registry) Status(gameID string) (*StatusResult, error) {
	entry, err := r.lookup(gameID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return &StatusResult{
		GameID:    entry.gameID,
		NumBalls:  entry.numBalls,
		CreatedAt: entry.createdAt,
		Finished:  entry.finished,
		Matched:   entry.matched,
	}, nil
}

// Sweep evicts finished games whose grace period has elapsed. It returns
// the gameIds removed, so a caller (internal/sweep) can also drop any
// side-state it keeps per game. Modeled on the teacher's
// mempool.Poller's periodic housekeeping tick (internal/mempool/poller.go).
func (r *Registry) Sweep() []string {
	cutoff := time.Now().Add(-r.graceTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, entry := range r.games {
		entry.mu.Lock()
		expired := entry.finished && entry.finishedAt.Before(cutoff)
		entry.mu.Unlock()
		if expired {
			delete(r.games, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Len reports how many games the registry currently tracks, in-flight or
// finished-but-not-yet-swept.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
