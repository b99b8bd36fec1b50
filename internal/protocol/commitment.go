package protocol

import (
	"sync"
	"time"

	"github.com/paddla/game-core/internal/cryptoutil"
)

// CommitmentSlot holds the live server seed and its published commitment,
// plus the previous pair for a short grace period after rotation so games
// that started against the old commitment can still be started/finished
// (spec §4.5). Modeled on the teacher's AlertManager mutex-guarded state
// (internal/heuristics/alert_system.go): one RWMutex protects both the
// current and the retained-previous slot.
type CommitmentSlot struct {
	mu sync.RWMutex

	serverSeed     string
	commitment     string
	rotatedAt      time.Time
	rotationPeriod time.Duration

	prevServerSeed string
	prevCommitment string
	prevExpiresAt  time.Time
	hasPrev        bool
}

// NewCommitmentSlot creates a slot with a freshly generated server seed and
// starts its rotation clock.
func NewCommitmentSlot(rotationPeriod time.Duration) (*CommitmentSlot, error) {
	seed, err := cryptoutil.RandomHex(32)
	if err != nil {
		return nil, err
	}
	return &CommitmentSlot{
		serverSeed:     seed,
		commitment:     cryptoutil.SHA256Hex([]byte(seed)),
		rotatedAt:      time.Now(),
		rotationPeriod: rotationPeriod,
	}, nil
}

// Commitment is the published SHA256(serverSeed), plus when it was
// published and when it is due to rotate next.
type Commitment struct {
	Value     string
	IssuedAt  time.Time
	RotatesAt time.Time
}

// Current returns the commitment currently being published.
func (c *CommitmentSlot) Current() Commitment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Commitment{
		Value:     c.commitment,
		IssuedAt:  c.rotatedAt,
		RotatesAt: c.rotatedAt.Add(c.rotationPeriod),
	}
}

// DueForRotation reports whether the rotation period has elapsed.
func (c *CommitmentSlot) DueForRotation() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().After(c.rotatedAt.Add(c.rotationPeriod))
}

// Rotate publishes a fresh commitment, retaining the outgoing one for
// graceTTL so in-flight games started against it remain startable/
// finishable (spec §4.5 "commitment rotation must not invalidate games
// already in flight").
func (c *CommitmentSlot) Rotate(graceTTL time.Duration) error {
	seed, err := cryptoutil.RandomHex(32)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.prevServerSeed = c.serverSeed
	c.prevCommitment = c.commitment
	c.prevExpiresAt = time.Now().Add(graceTTL)
	c.hasPrev = true

	c.serverSeed = seed
	c.commitment = cryptoutil.SHA256Hex([]byte(seed))
	c.rotatedAt = time.Now()
	return nil
}

// Resolve maps a client-presented commitment back to the server seed that
// produced it, accepting the live commitment or the still-unexpired
// previous one. The zero-value commitment resolves to the live pair,
// matching a client that starts a game without having fetched the
// published commitment first.
func (c *CommitmentSlot) Resolve(commitment string) (serverSeed, resolvedCommitment string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if commitment == "" || commitment == c.commitment {
		return c.serverSeed, c.commitment, true
	}
	if c.hasPrev && commitment == c.prevCommitment && time.Now().Before(c.prevExpiresAt) {
		return c.prevServerSeed, c.prevCommitment, true
	}
	return "", "", false
}

// ExpirePrevious drops the retained previous pair once its grace period
// has elapsed. Safe to call opportunistically; internal/sweep also calls
// it on a timer.
func (c *CommitmentSlot) ExpirePrevious() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasPrev && time.Now().After(c.prevExpiresAt) {
		c.hasPrev = false
		c.prevServerSeed = ""
		c.prevCommitment = ""
	}
}
